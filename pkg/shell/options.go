package shell

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options contains the configuration for an interactive shell.
type Options struct {
	Logger  *zerolog.Logger
	In      io.Reader
	Out     io.Writer
	Timeout time.Duration
}

// Option applies a configuration option to a shell.
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

// GetDefaultOptions returns the default options for a shell attached
// to the terminal.
func GetDefaultOptions() *Options {
	logger := log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})

	return &Options{
		Logger:  &logger,
		In:      os.Stdin,
		Out:     os.Stdout,
		Timeout: time.Second * 5,
	}
}

// WithLogger allows to use a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(options *Options) error {
		options.Logger = logger
		return nil
	}
}

// WithInput allows to read commands from a custom reader, for
// example a script during tests.
func WithInput(in io.Reader) Option {
	return func(options *Options) error {
		options.In = in
		return nil
	}
}

// WithOutput allows to redirect the shell output.
func WithOutput(out io.Writer) Option {
	return func(options *Options) error {
		options.Out = out
		return nil
	}
}

// WithTimeout allows to set a custom connection timeout for the
// connect command.
func WithTimeout(timeout time.Duration) Option {
	return func(options *Options) error {
		options.Timeout = timeout
		return nil
	}
}
