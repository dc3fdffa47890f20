// Package main is the operator command line for the Savings Circle backend.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "circlectl",
		Short:         "circlectl - operate a Savings Circle deployment",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.loadConfig()
		},
	}
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", os.Getenv("CONFIG_FILE"), "path to a TOML config file")

	// Add subcommands
	rootCmd.AddCommand(migrateCmd(app))
	rootCmd.AddCommand(sweepCmd(app))
	rootCmd.AddCommand(tokenCmd(app))
	rootCmd.AddCommand(feeCmd(app))
	rootCmd.AddCommand(emailsCmd(app))

	return rootCmd
}
