package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mavedirra/nmb/pkg/ops"
)

var removeCmd = &cobra.Command{
	Use:   "remove <module>...",
	Short: "Remove installed modules",
	Long: `Delete one or more modules from the workspace. Log files
written by earlier launches are kept.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ops.Remove(args, operationOptions()...)
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
