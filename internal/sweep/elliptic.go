package sweep

import "github.com/AndreyAkinshin/paramsweep/internal/settings"

// EllipticQuadSpace is the mapped quadrilateral regression space: polynomial
// degree 1..9, map parameter y 0.1..1.0, map model 1..3, Chebyshev degree 1
// for both smoothers and a square mesh resolution nx = ny in steps of 6 up to
// the degree-dependent bound derived from budget.
func EllipticQuadSpace(budget float64) Space {
	return Space{Axes: []Axis{
		{
			Name:  "degree",
			Keys:  []string{"POLYNOMIAL DEGREE"},
			Kind:  settings.KindInt,
			Range: Range{Start: 1, Stop: 10, Step: 1},
		},
		{
			Name:  "map_param_y",
			Keys:  []string{"BOX COORDINATE MAP PARAMETER Y"},
			Kind:  settings.KindFloat,
			Range: Range{Start: 0.1, Stop: 1.1, Step: 0.1},
		},
		{
			Name:  "map_model",
			Keys:  []string{"BOX COORDINATE MAP MODEL"},
			Kind:  settings.KindInt,
			Range: Range{Start: 1, Stop: 4, Step: 1},
		},
		{
			Name:   "cheby_degree",
			Keys:   []string{"MULTIGRID CHEBYSHEV DEGREE", "PARALMOND CHEBYSHEV DEGREE"},
			Kind:   settings.KindInt,
			Values: []float64{1},
		},
		{
			Name:  "nx",
			Keys:  []string{"BOX NX", "BOX NY"},
			Kind:  settings.KindInt,
			Range: Range{Start: 6, Stop: DefaultMaxResolution, Step: 6},
			Bound: &Bound{
				DependsOn: "degree",
				Budget:    budget,
				Min:       DefaultMinResolution,
				Max:       DefaultMaxResolution,
			},
		},
	}}
}
