package adapter

const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 8192
)

// CallOptions holds per-call settings.
type CallOptions struct {
	JSON      bool
	MaxTokens int
}

// CallOption configures a single model call.
type CallOption func(*CallOptions)

// WithJSON asks the provider for a JSON-only response where it supports it.
func WithJSON() CallOption {
	return func(o *CallOptions) {
		o.JSON = true
	}
}

// WithMaxTokens caps the response length.
func WithMaxTokens(n int) CallOption {
	return func(o *CallOptions) {
		if n > 0 {
			o.MaxTokens = n
		}
	}
}

func resolveOptions(opts []CallOption) CallOptions {
	o := CallOptions{MaxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
