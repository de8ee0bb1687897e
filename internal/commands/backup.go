package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var restoreYesFlag bool

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "List, take and restore timesheet backups",
	Long: `A copy of the timesheet is written to the backup directory before every
change and on every start. Backups older than backup_retention are removed
on start.`,
}

var backupListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List backups, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backups := current.store.Backups()
		list, err := backups.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			printf("No backups in %s\n", backups.Dir)
			return nil
		}
		printf("%-4s %-19s %8s  %s\n", "#", "TAKEN", "SIZE", "REASON")
		for i, info := range list {
			printf("%-4d %-19s %8s  %s\n", i+1, info.ModTime.In(current.loc).Format("2006-01-02 15:04:05"), formatSize(info.Size), info.Reason)
		}
		printf("\n%d backups in %s\n", len(list), backups.Dir)
		return nil
	},
}

var backupNowCmd = &cobra.Command{
	Use:   "now [reason]",
	Short: "Take a backup now",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason := "manual"
		if len(args) == 1 {
			reason = args[0]
		}
		path, err := current.store.Backups().Snapshot(reason)
		if err != nil {
			return err
		}
		if path == "" {
			printf("Nothing to back up yet.\n")
			return nil
		}
		printf("💾 Backed up to %s\n", path)
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <name|number>",
	Short: "Replace the timesheet with a backup",
	Long: `Replace the timesheet with a backup, by file name or by its number in
'tally backup ls'. The current timesheet is backed up first.

Examples:
  tally backup restore 1
  tally backup restore timesheet.db_purge-20240304-093015`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := current.store.Backups().Lookup(args[0])
		if err != nil {
			return err
		}
		question := fmt.Sprintf("Replace the timesheet with %s (%s, %s)?", info.Name, info.Reason, info.ModTime.In(current.loc).Format("2006-01-02 15:04:05"))
		if !restoreYesFlag && !confirm(question) {
			printf("Restore cancelled\n")
			return nil
		}
		restored, err := current.store.Restore(info.Name)
		if err != nil {
			return err
		}
		if _, err := current.ctl.Refresh(); err != nil {
			return err
		}
		printf("♻️  Restored %s\n", restored.Name)
		return nil
	},
}

var backupSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove backups older than the retention window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := current.store.Backups().Sweep()
		if err != nil {
			return err
		}
		for _, path := range removed {
			printf("removed %s\n", filepath.Base(path))
		}
		printf("Removed %d backups older than %s\n", len(removed), current.cfg.BackupRetention)
		return nil
	},
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fM", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fK", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%dB", n)
}

func init() {
	backupRestoreCmd.Flags().BoolVarP(&restoreYesFlag, "yes", "y", false, "skip confirmation prompt")

	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupNowCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupSweepCmd)
}
