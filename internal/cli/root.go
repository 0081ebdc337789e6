// Package cli provides the command-line interface for postdigest.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "postdigest",
	Short: "Curate scraped posts into a newsletter",
	Long: "postdigest fetches scraped social-media posts, summarizes them with a language model, " +
		"lets an operator curate them by publisher and compiles the selection into a newsletter.",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "postdigest %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newsletterCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
