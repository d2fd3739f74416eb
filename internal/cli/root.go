package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "txrunner",
	Short: "Demo runner for a retrying database transaction orchestrator",
	Long: `txrunner drives a small set of example operations through
txcore.TransactionManager against a PostgreSQL database: a retry state
machine that classifies failures, backs off, reconnects on a stale session,
and raises a distinct error when a commit's outcome cannot be known.

Exit Codes:
  0  - Success
  1  - Any error (run failed, invalid arguments or flags, invalid
       configuration)`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}
