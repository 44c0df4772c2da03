package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/smsledger/internal/buildinfo"
	"github.com/cleared-dev/smsledger/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "smsledger",
		Short:   "Turn bank SMS notifications into categorized transactions",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.FileName, "path to smsledger.yaml")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newParseCommand(&configPath))
	rootCmd.AddCommand(newScanCommand(&configPath))

	return rootCmd
}
