package engine

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options contains the configuration for an engine.
type Options struct {
	Logger  *zerolog.Logger
	Catalog Catalog
	Stdout  io.Writer
	Stderr  io.Writer
}

// Option applies a configuration option
// for the execution of an operation.
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

// GetDefaultOptions returns the default options
// for all operations of this library.
func GetDefaultOptions() *Options {
	logger := log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})

	return &Options{
		Logger: &logger,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// WithLogger allows to use a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(options *Options) error {
		options.Logger = logger
		return nil
	}
}

// WithCatalog allows to install modules from a module catalog.
func WithCatalog(catalog Catalog) Option {
	return func(options *Options) error {
		options.Catalog = catalog
		return nil
	}
}

// WithOutput allows to redirect the output of launched modules and
// remote runs, for example into a buffer during tests.
func WithOutput(stdout io.Writer) Option {
	return func(options *Options) error {
		options.Stdout = stdout
		return nil
	}
}

// WithErrorOutput allows to redirect the error output of launched
// modules.
func WithErrorOutput(stderr io.Writer) Option {
	return func(options *Options) error {
		options.Stderr = stderr
		return nil
	}
}
