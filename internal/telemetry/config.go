package telemetry

// Config holds configuration for the tracer
type Config struct {
	ServiceName    string
	ServiceVersion string

	// Environment is the deployment environment (development, production)
	Environment string

	// Enabled selects a real SDK provider; otherwise spans are noops
	Enabled bool

	// Endpoint is the OTLP/HTTP collector, as host:port or a full URL.
	// When empty, spans are sampled but not exported.
	Endpoint string

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	SampleRate float64
}

// DefaultConfig returns a configuration with tracing disabled
func DefaultConfig() Config {
	return Config{
		ServiceName:    "ordinex",
		ServiceVersion: "dev",
		Environment:    "development",
		SampleRate:     1.0,
	}
}
