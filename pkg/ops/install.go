package ops

import (
	"context"

	"github.com/mavedirra/nmb/pkg/catalog"
	"github.com/mavedirra/nmb/pkg/engine"
	"github.com/mavedirra/nmb/pkg/store"
)

// Install fetches the named modules from the catalog, stores them in
// the workspace and installs their dependencies.
func Install(names []string, options ...Option) error {
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

	cat, err := catalog.NewClient(config.Catalog, catalog.WithLogger(opts.Logger))
	if err != nil {
		return err
	}

	eng, err := engine.New(workspace,
		engine.WithLogger(opts.Logger),
		engine.WithCatalog(cat),
	)
	if err != nil {
		return err
	}
	defer eng.Close()

	for _, name := range names {
		if err := eng.Install(context.Background(), name); err != nil {
			return err
		}
	}

	return nil
}
