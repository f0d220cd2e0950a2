package ai

// GenerateOptions holds resolved per-call generation settings.
type GenerateOptions struct {
	// Temperature is the sampling temperature. Zero means deterministic.
	Temperature float64

	// JSONMode requests structured JSON output from services that support it.
	JSONMode bool
}

// GenerateOption configures a single Generate call.
type GenerateOption func(*GenerateOptions)

// WithTemperature sets the sampling temperature for one call.
func WithTemperature(temperature float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temperature
	}
}

// WithJSONMode asks the service for JSON output. Callers must still treat
// the response as potentially malformed.
func WithJSONMode() GenerateOption {
	return func(o *GenerateOptions) {
		o.JSONMode = true
	}
}

// ResolveGenerateOptions applies opts over the zero defaults.
func ResolveGenerateOptions(opts ...GenerateOption) GenerateOptions {
	var resolved GenerateOptions
	for _, opt := range opts {
		opt(&resolved)
	}
	return resolved
}
