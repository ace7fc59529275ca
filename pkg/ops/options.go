// Package ops contains the high-level operations behind the command
// line interface. Every operation loads the configuration, assembles
// the engine and tears everything down again when it is done.
package ops

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mavedirra/nmb/pkg/engine"
)

// Program is used to configure the name of the configuration file.
const Program = "nmb"

// Options contains the configuration for an operation.
type Options struct {
	ConfigPath string
	Overrides  engine.Config
	Logger     *zerolog.Logger
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
		ConfigPath: Program + ".yml",
		Logger:     &logger,
	}
}

// WithConfigPath overrides the default configuration path.
func WithConfigPath(configPath string) Option {
	return func(options *Options) error {
		options.ConfigPath = configPath
		return nil
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(options *Options) error {
		options.Logger = logger
		return nil
	}
}

// WithCatalog overrides the catalog URL from the configuration file.
func WithCatalog(url string) Option {
	return func(options *Options) error {
		options.Overrides.Catalog = url
		return nil
	}
}

// WithStorage overrides the storage directory from the configuration
// file.
func WithStorage(dir string) Option {
	return func(options *Options) error {
		options.Overrides.Storage = dir
		return nil
	}
}

// WithLogLevel overrides the log level from the configuration file.
func WithLogLevel(level string) Option {
	return func(options *Options) error {
		options.Overrides.LogLevel = level
		return nil
	}
}

// loadConfig loads the configuration file, applies the command line
// overrides and adjusts the logger verbosity.
func (o *Options) loadConfig() (*engine.Config, error) {
	config, err := engine.LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, err
	}

	if err := config.Merge(&o.Overrides); err != nil {
		return nil, err
	}

	if err := config.Verify(); err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	leveled := o.Logger.Level(level)
	o.Logger = &leveled

	return config, nil
}
