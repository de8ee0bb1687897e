package commands

import (
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:         "menu",
	Short:       "Open the interactive menu",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{startupBackup: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu()
	},
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noStore: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		printf("tally %s (commit %s, built %s)\n", version, commit, date)
	},
}
