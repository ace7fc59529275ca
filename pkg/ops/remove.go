package ops

import (
	"github.com/mavedirra/nmb/pkg/engine"
	"github.com/mavedirra/nmb/pkg/store"
)

// Remove deletes the named modules from the workspace.
func Remove(names []string, options ...Option) error {
	// Fetch the options for this operation.
	opts, err := GetDefaultOptions().Apply(options...)
	if err != nil {
		return err
	}

	// Load the configuration file.
	config, err := opts.loadConfig()
	if err != nil {
		return err
	}

	workspace, err := store.Open(config.Storage)
	if err != nil {
		return err
	}
	defer workspace.Close()

	eng, err := engine.New(workspace, engine.WithLogger(opts.Logger))
	if err != nil {
		return err
	}
	defer eng.Close()

	for _, name := range names {
		if err := eng.Remove(name); err != nil {
			return err
		}
	}

	return nil
}
