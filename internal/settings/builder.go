package settings

// Build materializes p into a configuration holding every recognized key
// exactly once, in key-table order. It has no side effects.
func Build(name string, reference float64, p Params) *Configuration {
	cfg := &Configuration{
		Name:      name,
		Reference: reference,
		settings:  make([]Setting, 0, len(fields)),
		index:     make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		cfg.Set(f.key, f.get(&p))
	}
	return cfg
}

// BuildWith starts from the defaults for env, applies overrides and builds
// the configuration. It is the single entry point for callers that only
// know a partial set of parameters.
func BuildWith(env Environment, name string, reference float64, overrides map[string]any) (*Configuration, error) {
	p := DefaultParams(env)
	if err := p.Apply(overrides); err != nil {
		return nil, err
	}
	return Build(name, reference, p), nil
}
