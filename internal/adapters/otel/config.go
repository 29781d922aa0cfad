package otel

// Config holds OTLP metrics exporter configuration.
type Config struct {
	Endpoint string
	Enabled  bool
	Insecure bool
	// ServiceVersion is reported as service.version on the resource.
	ServiceVersion string
}
