package ops

import (
	"context"
	"fmt"

	"github.com/mavedirra/nmb/pkg/catalog"
)

// Catalog prints the names of all modules the catalog offers, one per
// line. The workspace is not touched, so this works while another
// shell owns it.
func Catalog(options ...Option) error {
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

	client, err := catalog.NewClient(config.Catalog, catalog.WithLogger(opts.Logger))
	if err != nil {
		return err
	}

	names, err := client.List(context.Background())
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Println(name)
	}

	return nil
}
