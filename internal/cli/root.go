package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "abadmin",
	Version: version,
	Short: "Administration dashboard for A/B tests",
	Long: `abadmin manages organizations, their members and roles, and the A/B tests
they run.

Run "abadmin serve" for the web dashboard, or use the subcommands below for
operator tasks against the same database.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
