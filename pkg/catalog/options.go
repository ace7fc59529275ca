package catalog

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Options contains the configuration for a catalog client.
type Options struct {
	Logger     *zerolog.Logger
	HTTPClient *http.Client
}

// Option applies a configuration option to a catalog client.
type Option func(options *Options) error

// Apply applies the option functions to the current set of options.
func (o *Options) Apply(options ...Option) (*Options, error) {
	for _, option := range options {
		if err := option(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// GetDefaultOptions returns the default options for a catalog client.
func GetDefaultOptions() *Options {
	logger := zerolog.Nop()

	return &Options{
		Logger: &logger,
		HTTPClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

// WithLogger allows to use a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(options *Options) error {
		options.Logger = logger
		return nil
	}
}

// WithHTTPClient allows to use a custom HTTP client,
// for example to disable the request timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(options *Options) error {
		options.HTTPClient = client
		return nil
	}
}
