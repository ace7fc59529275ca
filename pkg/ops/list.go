package ops

import (
	"fmt"

	"github.com/mavedirra/nmb/pkg/store"
)

// List prints the names of all installed modules, one per line.
func List(options ...Option) error {
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

	names, err := workspace.ListModules()
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Println(name)
	}

	return nil
}
