package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/apperr"
)

var purgeYesFlag bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the timesheet",
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv [file]",
	Short: "Write every closed session as CSV",
	Long: `Write every closed session as a CSV row:

  Id,Job Name,Hours Worked,Date,Week Ending

The file defaults to export_file from the config; use "-" for standard output.

Examples:
  tally export csv
  tally export csv march.csv
  tally export csv - > timesheet.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := current.cfg.ExportFile
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return apperr.Invalid("file", path, "value is empty")
		}

		if path == "-" {
			_, err := current.ctl.Export(deps.Stdout)
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		n, err := current.ctl.Export(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		printf("📄 Exported %d rows to %s\n", n, path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a timesheet",
}

var importCSVCmd = &cobra.Command{
	Use:   "csv <file>",
	Short: "Read rows written by 'tally export csv'",
	Long: `Read a CSV file in the export format and add each row as a closed session
of exactly the given hours on the given date. Jobs are matched by code and
name and created when missing. A malformed row rejects the whole file.

Use "-" to read standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = deps.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return apperr.Invalid("file", args[0], "cannot be opened")
			}
			defer f.Close()
			r = f
		}
		n, err := current.ctl.Import(r)
		if err != nil {
			return err
		}
		printf("📥 Imported %d rows from %s\n", n, args[0])
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every job and session",
	Long: `Delete every job and every session from the timesheet. A backup is taken
first and can be brought back with 'tally backup restore'. A confirmation
prompt will be shown unless --yes is specified.

Example:
  tally purge
  tally purge --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !purgeYesFlag && !confirm("Delete every job and session?") {
			printf("Purge cancelled\n")
			return nil
		}
		if err := current.store.Purge(); err != nil {
			return err
		}
		if _, err := current.ctl.Refresh(); err != nil {
			return err
		}
		printf("🗑️  Timesheet purged. The purge backup in 'tally backup ls' brings it back.\n")
		return nil
	},
}

func init() {
	purgeCmd.Flags().BoolVarP(&purgeYesFlag, "yes", "y", false, "skip confirmation prompt")

	exportCmd.AddCommand(exportCSVCmd)
	importCmd.AddCommand(importCSVCmd)
}
