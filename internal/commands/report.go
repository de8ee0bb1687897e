package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/hours"
	"github.com/balkashynov/tally/internal/parser"
	"github.com/balkashynov/tally/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a daily or weekly timesheet",
}

var reportDailyCmd = &cobra.Command{
	Use:   "daily [date]",
	Short: "Hours per job for one day",
	Long: `Show the hours billed to each job on one day (today by default).
Sessions count on the day they were clocked in; open sessions are left out.

Examples:
  tally report daily
  tally report daily yesterday
  tally report daily 2024-03-04`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := reportDay(args)
		if err != nil {
			return err
		}
		r, err := current.ctl.Daily(day)
		if err != nil {
			return err
		}
		printf("%s\n", report.Render(r))
		return nil
	},
}

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly [date]",
	Short: "Hours per job for one week",
	Long: `Show the hours billed to each job in the week (Monday to Sunday) holding the
given day, today by default. The week is named by its week-ending Saturday.

Examples:
  tally report weekly
  tally report weekly 2024-03-04`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := reportDay(args)
		if err != nil {
			return err
		}
		r, err := current.ctl.Weekly(day)
		if err != nil {
			return err
		}
		printf("%s\n", report.Render(r))
		return nil
	},
}

var calcCmd = &cobra.Command{
	Use:   "calc <start> <end>",
	Short: "Calculate the time worked between two clock times",
	Long: `Calculate the hours between two wall-clock times, rounded to a tenth of an
hour. An end before the start is taken as the next day.

Examples:
  tally calc 9:00 17:30
  tally calc "9 am" "5:30 pm"
  tally calc 22:00 01:15`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		today := hours.Day(deps.Now())
		start, err := parser.ParseClock(args[0], today)
		if err != nil {
			return err
		}
		end, err := parser.ParseClock(args[1], today)
		if err != nil {
			return err
		}
		printf("Total time worked from %s to %s: %s hours\n", start.Format("15:04"), end.Format("15:04"), hours.Span(start, end))
		return nil
	},
	Annotations: map[string]string{noStore: "true"},
}

// reportDay reads the optional date argument, today when absent.
func reportDay(args []string) (time.Time, error) {
	text := "today"
	if len(args) == 1 {
		text = args[0]
	}
	return parser.ParseDate(text, current.ctl.Now())
}

func init() {
	reportCmd.AddCommand(reportDailyCmd)
	reportCmd.AddCommand(reportWeeklyCmd)
}
