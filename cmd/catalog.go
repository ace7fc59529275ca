package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mavedirra/nmb/pkg/ops"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List modules the catalog offers",
	Long: `Query the catalog and print the names of all modules it
offers. The workspace is not opened, so this also works
while a shell is running.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ops.Catalog(operationOptions()...)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
