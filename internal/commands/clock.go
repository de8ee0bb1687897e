package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/apperr"
	"github.com/balkashynov/tally/internal/controller"
	"github.com/balkashynov/tally/internal/hours"
	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/parser"
	"github.com/balkashynov/tally/internal/tui"
)

var (
	startJobID  string
	startNoUI   bool
	resumeJobID string
	resumeNoUI  bool
)

var startCmd = &cobra.Command{
	Use:   "start <code> [sub-task...]",
	Short: "Clock in on a job",
	Long: `Clock in on a job. Opens the live timer by default, use --no-ui for a simple clock in.

When the job was already worked on today and no sub-task is given, the
earlier sub-task is carried over.

Examples:
  tally start WEB                  # Clock in on WEB with the timer
  tally start WEB landing page     # Clock in with a sub-task
  tally start WEB --no-ui          # Clock in without the timer
  tally start WEB --job-id 3f2a    # Pick one of several jobs sharing a code`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := resolveJob(args[0], startJobID)
		if err != nil {
			return err
		}
		subTask := parser.CollapseSpace(strings.Join(args[1:], " "))

		decision, err := current.ctl.Prepare(job.JobID)
		if err != nil {
			return err
		}
		if subTask == "" && decision.Offer() {
			subTask = decision.Last.SubTask
		}

		st, err := current.ctl.ClockIn(job.JobID, subTask)
		if err != nil {
			return err
		}
		printf("⏱️  Clocked in on %s at %s\n", job.Label(), st.Session.ClockIn.In(current.loc).Format("15:04"))
		if subTask != "" {
			printf("Sub-task: %s\n", subTask)
		}
		if decision.Offer() && !decision.SameSubTask(subTask) {
			printf("Earlier today: %s\n", decision.Last.SubTask)
		}

		if startNoUI {
			return nil
		}
		return watch()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Clock out of the open session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return clockOut()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what you are clocked in on",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		today, err := current.ctl.Daily(current.ctl.Now())
		if err != nil {
			return err
		}

		st := current.ctl.State()
		if st.State == controller.Idle {
			printf("Not clocked in. Today so far: %s hours.\n", today.Total)
			return nil
		}

		elapsed := current.ctl.Elapsed()
		printf("⏱️  Clocked in on %s (session #%d)\n", st.Job.Label(), st.Session.ID)
		if st.Session.SubTask != "" {
			printf("Sub-task: %s\n", st.Session.SubTask)
		}
		printf("Since: %s\n", st.Session.ClockIn.In(current.loc).Format("Mon 2006-01-02 15:04"))
		printf("Elapsed: %s (%s hours)\n", formatDuration(elapsed), hours.Round(elapsed))
		printf("Today so far: %s hours closed\n", today.Total)
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume [code]",
	Short: "Clock in again on the last job worked on",
	Long: `Clock in again, carrying over the sub-task of the job's most recent session.
Without a code, resumes the most recent session in the timesheet.

Examples:
  tally resume          # Pick up where you left off
  tally resume WEB      # Resume the last WEB sub-task`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var jobID string
		if len(args) == 1 {
			job, err := resolveJob(args[0], resumeJobID)
			if err != nil {
				return err
			}
			jobID = job.JobID
		} else {
			sessions, err := current.store.AllSessions()
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				return &apperr.NotFoundError{Kind: "previous session"}
			}
			jobID = sessions[len(sessions)-1].JobID
		}

		st, err := current.ctl.Resume(jobID)
		if err != nil {
			return err
		}
		printf("⏱️  Resumed %s at %s\n", st.Job.Label(), st.Session.ClockIn.In(current.loc).Format("15:04"))
		if st.Session.SubTask != "" {
			printf("Sub-task: %s\n", st.Session.SubTask)
		}
		if resumeNoUI {
			return nil
		}
		return watch()
	},
}

var recoverCmd = &cobra.Command{
	Use:   "recover <close-now|close-at|keep|discard> [hh:mm]",
	Short: "Deal with a session left open",
	Long: `Resolve a session that was left open, e.g. after a crash or a forgotten stop.

  close-now          Clock out now
  close-at <hh:mm>   Clock out at an estimated end time on the clock-in day
                     (a time before the clock-in is taken as the next day)
  keep               Leave it running
  discard            Delete the session

Examples:
  tally recover close-at 17:30
  tally recover discard`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		choice, err := controller.ParseRecovery(strings.ToLower(args[0]))
		if err != nil {
			return err
		}
		at := ""
		if choice == controller.RecoverCloseAt {
			if len(args) < 2 {
				return apperr.Invalid("end time", "", "close-at needs a time such as 17:30")
			}
			at = args[1]
		}

		before := current.ctl.State()
		st, err := current.ctl.Recover(choice, at)
		if err != nil {
			return err
		}
		switch choice {
		case controller.RecoverKeep:
			printf("Session #%d on %s keeps running.\n", before.Session.ID, before.Job.Label())
		case controller.RecoverDiscard:
			printf("🗑️  Discarded session #%d on %s.\n", before.Session.ID, before.Job.Label())
		default:
			printClosed(before.Job, st.LastClosed)
		}
		return nil
	},
}

// watch shows the live timer until the operator leaves it, clocking out when
// they asked to.
func watch() error {
	if !deps.Interactive {
		return nil
	}
	stop, err := tui.RunTimer(current.ctl)
	if err != nil {
		return err
	}
	if stop {
		return clockOut()
	}
	st := current.ctl.State()
	printf("Still on the clock for %s. Use 'tally stop' to clock out.\n", st.Job.Label())
	return nil
}

func clockOut() error {
	job := current.ctl.State().Job
	st, err := current.ctl.ClockOut()
	if err != nil {
		return err
	}
	printClosed(job, st.LastClosed)
	return nil
}

func printClosed(job *models.Job, s *models.Session) {
	label := "?"
	if job != nil {
		label = job.Label()
	}
	printf("⏹️  Clocked out of %s: %s hours (%s-%s)\n", label, s.Rounded,
		s.ClockIn.In(current.loc).Format("15:04"), s.ClockOut.In(current.loc).Format("15:04"))
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d >= time.Hour {
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

func init() {
	startCmd.Flags().StringVar(&startJobID, "job-id", "", "job id (or its prefix) when several jobs share the code")
	startCmd.Flags().BoolVar(&startNoUI, "no-ui", false, "clock in without the interactive timer")
	resumeCmd.Flags().StringVar(&resumeJobID, "job-id", "", "job id (or its prefix) when several jobs share the code")
	resumeCmd.Flags().BoolVar(&resumeNoUI, "no-ui", false, "resume without the interactive timer")
}
