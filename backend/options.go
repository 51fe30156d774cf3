package backend

import (
	"log/slog"
	"net/http"
)

type (
	// ClientOption represents a single option for the client.
	ClientOption interface{ client(*ClientOptions) }

	// ClientOptions are the resolved options for the client.
	ClientOptions struct {
		HTTPClient *http.Client
		UserAgent  string
		Logger     *slog.Logger
	}

	// WithUserAgent sets the User-Agent header sent on every request.
	WithUserAgent string

	// This option is not used directly; see WithHTTPClient below.
	withHTTPClient struct{ *http.Client }

	// This option is not used directly; see WithLogger below.
	withLogger struct{ *slog.Logger }
)

// Apply resolves the provided list of options.
func (o *ClientOptions) Apply(opts []ClientOption, rest ...ClientOption) {
	for _, opt := range opts {
		if opt != nil {
			opt.client(o)
		}
	}
	for _, opt := range rest {
		if opt != nil {
			opt.client(o)
		}
	}
}

func (o *ClientOptions) client(opt *ClientOptions) {
	if o != nil {
		*opt = *o
	}
}

func (o WithUserAgent) client(opt *ClientOptions) {
	opt.UserAgent = string(o)
}

// WithHTTPClient specifies the underlying HTTP client to use for requests.
func WithHTTPClient(client *http.Client) ClientOption {
	return withHTTPClient{client}
}

func (o withHTTPClient) client(opt *ClientOptions) {
	opt.HTTPClient = o.Client
}

// WithLogger enables logging with the provided slog logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return withLogger{logger}
}

func (o withLogger) client(opt *ClientOptions) {
	opt.Logger = o.Logger
}
