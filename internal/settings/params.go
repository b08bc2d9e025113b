package settings

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Environment carries the paths and device selection shared by every case
// of a sweep.
type Environment struct {
	SolverDir      string // Root of the solver sources; data and map files live below it
	Binary         string // Solver executable
	WorkDir        string // Directory the solver runs in and writes artifacts to
	ThreadModel    string // Device/thread model, e.g. CUDA, HIP, OpenCL, Serial
	PlatformNumber int
	DeviceNumber   int
}

// Default environment values.
const (
	DefaultThreadModel    = "CUDA"
	DefaultPlatformNumber = 0
	DefaultDeviceNumber   = 1
)

// DefaultEnvironment returns an environment with the default device
// selection and the current directory for every path.
func DefaultEnvironment() Environment {
	return Environment{
		SolverDir:      ".",
		WorkDir:        ".",
		ThreadModel:    DefaultThreadModel,
		PlatformNumber: DefaultPlatformNumber,
		DeviceNumber:   DefaultDeviceNumber,
	}
}

// Params is the full set of solver parameters for the mapped elliptic
// solver. Every field corresponds to exactly one settings key.
type Params struct {
	Format               string
	DataFile             string
	MeshFile             string
	Dimension            int
	ElementType          int
	NX, NY, NZ           int
	DimX, DimY, DimZ     float64
	BoundaryFlag         int
	MapFile              string
	MapParamY            float64
	MapModel             int
	Degree               int
	ThreadModel          string
	PlatformNumber       int
	DeviceNumber         int
	Discretization       string
	LinearSolver         string
	Preconditioner       string
	MultigridSmoother    string
	MultigridChebyDegree int
	ParAlmondCycle       string
	ParAlmondStrength    string
	ParAlmondAggregation string
	ParAlmondSmoother    string
	ParAlmondChebyDegree int
	OutputToFile         bool
	Verbose              bool
}

// DefaultParams returns the documented defaults, resolving file paths
// against env.SolverDir and the device selection from env.
func DefaultParams(env Environment) Params {
	threadModel := env.ThreadModel
	if threadModel == "" {
		threadModel = DefaultThreadModel
	}
	return Params{
		Format:               "2.0",
		DataFile:             filepath.Join(env.SolverDir, "data", "ellipticSine2D.h"),
		MeshFile:             "BOX",
		Dimension:            2,
		ElementType:          4,
		NX:                   10,
		NY:                   10,
		NZ:                   10,
		DimX:                 1,
		DimY:                 1,
		DimZ:                 1,
		BoundaryFlag:         1,
		MapFile:              filepath.Join(env.SolverDir, "data", "kershaw2D.okl"),
		MapParamY:            1.0,
		MapModel:             1,
		Degree:               4,
		ThreadModel:          threadModel,
		PlatformNumber:       env.PlatformNumber,
		DeviceNumber:         env.DeviceNumber,
		Discretization:       "CONTINUOUS",
		LinearSolver:         "PCG",
		Preconditioner:       "MULTIGRID",
		MultigridSmoother:    "CHEBYSHEV",
		MultigridChebyDegree: 1,
		ParAlmondCycle:       "VCYCLE",
		ParAlmondStrength:    "SYMMETRIC",
		ParAlmondAggregation: "UNSMOOTHED",
		ParAlmondSmoother:    "CHEBYSHEV",
		ParAlmondChebyDegree: 1,
		OutputToFile:         false,
		Verbose:              true,
	}
}

// field binds a settings key to one Params field.
type field struct {
	key  string
	kind Kind
	get  func(p *Params) Value
	set  func(p *Params, v any) error
}

func stringField(key string, ptr func(p *Params) *string) field {
	return field{
		key:  key,
		kind: KindString,
		get:  func(p *Params) Value { return StringValue(*ptr(p)) },
		set: func(p *Params, v any) error {
			s, err := toString(v)
			if err != nil {
				return err
			}
			*ptr(p) = s
			return nil
		},
	}
}

func intField(key string, ptr func(p *Params) *int) field {
	return field{
		key:  key,
		kind: KindInt,
		get:  func(p *Params) Value { return IntValue(*ptr(p)) },
		set: func(p *Params, v any) error {
			i, err := toInt(v)
			if err != nil {
				return err
			}
			*ptr(p) = i
			return nil
		},
	}
}

func floatField(key string, ptr func(p *Params) *float64) field {
	return field{
		key:  key,
		kind: KindFloat,
		get:  func(p *Params) Value { return FloatValue(*ptr(p)) },
		set: func(p *Params, v any) error {
			f, err := toFloat(v)
			if err != nil {
				return err
			}
			*ptr(p) = f
			return nil
		},
	}
}

func boolField(key string, ptr func(p *Params) *bool) field {
	return field{
		key:  key,
		kind: KindString,
		get:  func(p *Params) Value { return BoolValue(*ptr(p)) },
		set: func(p *Params, v any) error {
			b, err := toBool(v)
			if err != nil {
				return err
			}
			*ptr(p) = b
			return nil
		},
	}
}

// fields is the static key table. Its order is the order settings appear
// in every built configuration.
var fields = []field{
	stringField("FORMAT", func(p *Params) *string { return &p.Format }),
	stringField("DATA FILE", func(p *Params) *string { return &p.DataFile }),
	stringField("MESH FILE", func(p *Params) *string { return &p.MeshFile }),
	intField("MESH DIMENSION", func(p *Params) *int { return &p.Dimension }),
	intField("ELEMENT TYPE", func(p *Params) *int { return &p.ElementType }),
	intField("BOX NX", func(p *Params) *int { return &p.NX }),
	intField("BOX NY", func(p *Params) *int { return &p.NY }),
	intField("BOX NZ", func(p *Params) *int { return &p.NZ }),
	floatField("BOX DIMX", func(p *Params) *float64 { return &p.DimX }),
	floatField("BOX DIMY", func(p *Params) *float64 { return &p.DimY }),
	floatField("BOX DIMZ", func(p *Params) *float64 { return &p.DimZ }),
	intField("BOX BOUNDARY FLAG", func(p *Params) *int { return &p.BoundaryFlag }),
	stringField("BOX COORDINATE MAP FILE", func(p *Params) *string { return &p.MapFile }),
	floatField("BOX COORDINATE MAP PARAMETER Y", func(p *Params) *float64 { return &p.MapParamY }),
	intField("BOX COORDINATE MAP MODEL", func(p *Params) *int { return &p.MapModel }),
	intField("POLYNOMIAL DEGREE", func(p *Params) *int { return &p.Degree }),
	stringField("THREAD MODEL", func(p *Params) *string { return &p.ThreadModel }),
	intField("PLATFORM NUMBER", func(p *Params) *int { return &p.PlatformNumber }),
	intField("DEVICE NUMBER", func(p *Params) *int { return &p.DeviceNumber }),
	stringField("DISCRETIZATION", func(p *Params) *string { return &p.Discretization }),
	stringField("LINEAR SOLVER", func(p *Params) *string { return &p.LinearSolver }),
	stringField("PRECONDITIONER", func(p *Params) *string { return &p.Preconditioner }),
	stringField("MULTIGRID SMOOTHER", func(p *Params) *string { return &p.MultigridSmoother }),
	intField("MULTIGRID CHEBYSHEV DEGREE", func(p *Params) *int { return &p.MultigridChebyDegree }),
	stringField("PARALMOND CYCLE", func(p *Params) *string { return &p.ParAlmondCycle }),
	stringField("PARALMOND STRENGTH", func(p *Params) *string { return &p.ParAlmondStrength }),
	stringField("PARALMOND AGGREGATION", func(p *Params) *string { return &p.ParAlmondAggregation }),
	stringField("PARALMOND SMOOTHER", func(p *Params) *string { return &p.ParAlmondSmoother }),
	intField("PARALMOND CHEBYSHEV DEGREE", func(p *Params) *int { return &p.ParAlmondChebyDegree }),
	boolField("OUTPUT TO FILE", func(p *Params) *bool { return &p.OutputToFile }),
	boolField("VERBOSE", func(p *Params) *bool { return &p.Verbose }),
}

var fieldIndex = func() map[string]int {
	m := make(map[string]int, len(fields))
	for i, f := range fields {
		m[f.key] = i
	}
	return m
}()

// RequiredKeys returns every recognized settings key in table order.
func RequiredKeys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// IsKnownKey reports whether key is a recognized settings key.
func IsKnownKey(key string) bool {
	_, ok := fieldIndex[key]
	return ok
}

// KeyKind returns the value kind of a recognized key.
func KeyKind(key string) (Kind, bool) {
	i, ok := fieldIndex[key]
	if !ok {
		return 0, false
	}
	return fields[i].kind, true
}

// Get returns the current value of the field bound to key.
func (p *Params) Get(key string) (Value, bool) {
	i, ok := fieldIndex[key]
	if !ok {
		return Value{}, false
	}
	return fields[i].get(p), true
}

// Set overrides the field bound to key. v may be a string, bool, any Go
// integer type or a float; floats are accepted for integer keys only when
// integral, which is what JSON and YAML decoding produce.
func (p *Params) Set(key string, v any) error {
	i, ok := fieldIndex[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	if err := fields[i].set(p, v); err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

// Apply sets every override, in sorted key order so that error reporting
// is deterministic.
func (p *Params) Apply(overrides map[string]any) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := p.Set(k, overrides[k]); err != nil {
			return err
		}
	}
	return nil
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case Value:
		return x.String(), nil
	case bool:
		return BoolValue(x).String(), nil
	case int, int64, float64:
		return fmt.Sprint(x), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case int32:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("expected integer, got %v", x)
		}
		return int(x), nil
	case Value:
		if i, ok := x.Int(); ok {
			return i, nil
		}
		if f, ok := x.Float(); ok {
			return toInt(f)
		}
		return 0, fmt.Errorf("expected integer, got %s value", x.Kind())
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", x)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case Value:
		if f, ok := x.Float(); ok {
			return f, nil
		}
		return 0, fmt.Errorf("expected number, got %s value", x.Kind())
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToUpper(strings.TrimSpace(x)) {
		case "TRUE":
			return true, nil
		case "FALSE":
			return false, nil
		}
		return false, fmt.Errorf("expected TRUE or FALSE, got %q", x)
	case Value:
		return toBool(x.String())
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
