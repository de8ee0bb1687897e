package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/apperr"
	"github.com/balkashynov/tally/internal/hours"
	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/parser"
)

var (
	sessionDateFlag string
	sessionWeekFlag bool
	sessionAllFlag  bool
	sessionJobFlag  string

	sessionEditDate string
	sessionEditIn   string
	sessionEditOut  string
	sessionYesFlag  bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and correct clock sessions",
}

var sessionListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List sessions",
	Long: `List clock sessions for a day (today by default), a week, or the whole timesheet.

Examples:
  tally session ls                      # Today
  tally session ls --date yesterday
  tally session ls --week --date 2024-03-04
  tally session ls --all --job WEB`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := listedSessions()
		if err != nil {
			return err
		}
		if sessionJobFlag != "" {
			jobs, err := current.ctl.Candidates(sessionJobFlag)
			if err != nil {
				return err
			}
			sessions = onlyJobs(sessions, jobs)
		}
		if len(sessions) == 0 {
			printf("No sessions found.\n")
			return nil
		}

		index, err := current.store.JobIndex()
		if err != nil {
			return err
		}
		printSessions(sessions, index)
		printf("%s\n", strings.Repeat("-", 84))
		printf("Total: %s hours\n", hours.Sum(sessions))
		return nil
	},
}

var sessionEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Correct the times of a closed session",
	Long: `Correct the clock-in and clock-out times of a closed session. Times are read
on the session's clock-in day unless --date is given; a clock-out earlier
than the clock-in is taken as the next day. The hours are rounded again.

Examples:
  tally session edit 42 --out 17:30
  tally session edit 42 --date 2024-03-04 --in 9:00 --out 12:15`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSessionID(args[0])
		if err != nil {
			return err
		}
		session, err := current.store.GetSession(id)
		if err != nil {
			return err
		}
		if session.Open() {
			return &apperr.ConflictError{Op: "edit session", Reason: fmt.Sprintf("session #%d is still open, clock out first", id)}
		}

		day := hours.Day(session.ClockIn.In(current.loc))
		if sessionEditDate != "" {
			day, err = parser.ParseDate(sessionEditDate, current.ctl.Now())
			if err != nil {
				return err
			}
		}
		clockIn, err := clockOn(day, session.ClockIn, sessionEditIn)
		if err != nil {
			return err
		}
		clockOut, err := clockOn(day, *session.ClockOut, sessionEditOut)
		if err != nil {
			return err
		}
		if clockOut.Before(clockIn) {
			clockOut = clockOut.AddDate(0, 0, 1)
		}

		edited, err := current.store.EditSession(id, clockIn, clockOut)
		if err != nil {
			return err
		}
		printf("✅ Session #%d now %s %s-%s: %s hours\n", edited.ID,
			edited.ClockIn.In(current.loc).Format("2006-01-02"),
			edited.ClockIn.In(current.loc).Format("15:04"),
			edited.ClockOut.In(current.loc).Format("15:04"),
			edited.Rounded)
		return nil
	},
}

var sessionRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSessionID(args[0])
		if err != nil {
			return err
		}
		session, err := current.store.GetSession(id)
		if err != nil {
			return err
		}
		if session.Open() {
			return &apperr.ConflictError{Op: "delete session", Reason: fmt.Sprintf("session #%d is open, use 'tally recover discard'", id)}
		}
		if !sessionYesFlag && !confirm(fmt.Sprintf("Delete session #%d from %s?", id, session.ClockIn.In(current.loc).Format("2006-01-02 15:04"))) {
			printf("Delete cancelled\n")
			return nil
		}
		if err := current.store.DiscardSession(id); err != nil {
			return err
		}
		printf("🗑️  Deleted session #%d\n", id)
		return nil
	},
}

func listedSessions() ([]models.Session, error) {
	if sessionAllFlag {
		return current.store.AllSessions()
	}
	day, err := parser.ParseDate(sessionDateFlag, current.ctl.Now())
	if err != nil {
		return nil, err
	}
	from, to := day, day.AddDate(0, 0, 1)
	if sessionWeekFlag {
		from, to = hours.WeekRange(hours.WeekBucket(day))
		to = to.AddDate(0, 0, 1)
	}
	return current.store.SessionsInRange(from, to)
}

func onlyJobs(sessions []models.Session, jobs []models.Job) []models.Session {
	keep := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		keep[j.JobID] = true
	}
	var out []models.Session
	for _, s := range sessions {
		if keep[s.JobID] {
			out = append(out, s)
		}
	}
	return out
}

func printSessions(sessions []models.Session, jobs map[string]models.Job) {
	printf("%-6s %-10s %-5s %-5s %6s %-10s %s\n", "ID", "DATE", "IN", "OUT", "HOURS", "CODE", "SUB-TASK")
	printf("%s\n", strings.Repeat("-", 84))
	for _, s := range sessions {
		in := s.ClockIn.In(current.loc)
		out, rounded := "open", "-"
		if s.ClockOut != nil {
			out = s.ClockOut.In(current.loc).Format("15:04")
			rounded = s.Rounded.String()
		}
		code := "?"
		if j, ok := jobs[s.JobID]; ok {
			code = j.Code
		}

		var marks []string
		if s.Edited {
			marks = append(marks, "edited")
		}
		if s.Imported {
			marks = append(marks, "imported")
		}
		subTask := s.SubTask
		if len(marks) > 0 {
			subTask = strings.TrimSpace(subTask + " (" + strings.Join(marks, ", ") + ")")
		}

		printf("%-6d %-10s %-5s %-5s %6s %-10s %s\n", s.ID, in.Format("2006-01-02"), in.Format("15:04"), out, rounded, code, subTask)
	}
}

func parseSessionID(s string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Invalid("session id", s, "use the number shown by 'tally session ls'")
	}
	return uint(id), nil
}

// clockOn places an "hh:mm" time on day, or moves was onto day when text
// is empty.
func clockOn(day, was time.Time, text string) (time.Time, error) {
	if text != "" {
		return parser.ParseClock(text, day)
	}
	was = was.In(day.Location())
	y, m, d := day.Date()
	return time.Date(y, m, d, was.Hour(), was.Minute(), was.Second(), 0, day.Location()), nil
}

func init() {
	sessionListCmd.Flags().StringVar(&sessionDateFlag, "date", "today", "day to list: today, yesterday, yyyy-mm-dd or dd/mm/yyyy")
	sessionListCmd.Flags().BoolVar(&sessionWeekFlag, "week", false, "list the whole week containing --date")
	sessionListCmd.Flags().BoolVar(&sessionAllFlag, "all", false, "list the whole timesheet")
	sessionListCmd.Flags().StringVar(&sessionJobFlag, "job", "", "only sessions of jobs with this code")

	sessionEditCmd.Flags().StringVar(&sessionEditDate, "date", "", "move the session to this day")
	sessionEditCmd.Flags().StringVar(&sessionEditIn, "in", "", "new clock-in time, e.g. 9:00")
	sessionEditCmd.Flags().StringVar(&sessionEditOut, "out", "", "new clock-out time, e.g. 17:30")

	sessionRemoveCmd.Flags().BoolVarP(&sessionYesFlag, "yes", "y", false, "skip confirmation prompt")

	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionEditCmd)
	sessionCmd.AddCommand(sessionRemoveCmd)
}
