package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mavedirra/nmb/pkg/ops"
)

var installCmd = &cobra.Command{
	Use:   "install <module>...",
	Short: "Install modules from the catalog",
	Long: `Fetch one or more modules from the catalog, store them
in the workspace and install the dependencies they
declare.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ops.Install(args, operationOptions()...)
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
