package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mavedirra/nmb/pkg/ops"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed modules",
	Long:  `Print the names of all modules in the workspace.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ops.List(operationOptions()...)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
