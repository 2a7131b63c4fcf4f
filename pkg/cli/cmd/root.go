package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command with version info and subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "distreg",
		Short:        "distreg is a CLI tool for interacting with OCI image registries",
		Long:         "distreg is a CLI tool for interacting with OCI image registries",
		RunE:         handleRootRunE,
		SilenceUsage: true,
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	opts, err := NewGlobalOptions(cmd)
	if err != nil {
		// Flag registration only fails on programming errors.
		panic(err)
	}

	cmd.AddCommand(NewParseCmd())
	cmd.AddCommand(NewRawCmd(opts))
	cmd.AddCommand(NewDownloadCmd(opts))

	return cmd
}

// Execute runs the provided root command and handles errors.
func Execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// handleRootRunE handles the root command.
func handleRootRunE(cmd *cobra.Command, _ []string) error {
	// The err can safely be ignored, as it can never fail at runtime.
	_ = cmd.Help()

	return nil
}
