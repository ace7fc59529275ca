package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mavedirra/nmb/pkg/ops"
)

var version = "dev"
var help bool

var configPath string
var catalogURL string
var storageDir string
var logLevel string

var rootCmd = &cobra.Command{
	Use:   "nmb",
	Short: "A fetch-and-run shell for script modules",
	Long: `  _   _  __  __  ____
 | \ | ||  \/  || __ )
 |  \| || |\/| ||  _ \
 | |\  || |  | || |_) |
 |_| \_||_|  |_||____/

An interactive shell that fetches executable script
modules from a remote catalog and launches them on
the local host or on a remote host over SSH.

Running the command without a subcommand starts the
interactive shell.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if help {
			cmd.Help()
			os.Exit(0)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return ops.Shell(operationOptions()...)
	},
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&help, "help", "h", false, "display help for command")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&catalogURL, "catalog", "", "URL of the module catalog")
	rootCmd.PersistentFlags().StringVar(&storageDir, "storage", "", "path to the module workspace")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn or error")
}

// operationOptions assembles the options that every operation shares
// from the persistent flags.
func operationOptions() []ops.Option {
	logger := log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})

	options := []ops.Option{
		ops.WithLogger(&logger),
	}

	if configPath != "" {
		options = append(options, ops.WithConfigPath(configPath))
	}
	if catalogURL != "" {
		options = append(options, ops.WithCatalog(catalogURL))
	}
	if storageDir != "" {
		options = append(options, ops.WithStorage(storageDir))
	}
	if logLevel != "" {
		options = append(options, ops.WithLogLevel(logLevel))
	}

	return options
}

// Execute starts the invocation of the command line interface.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
