package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/apperr"
	"github.com/balkashynov/tally/internal/db"
	"github.com/balkashynov/tally/internal/hours"
	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/parser"
)

var (
	jobCodeFlag  string
	jobRateFlag  string
	jobIDFlag    string
	jobYesFlag   bool
	jobEditJobID string
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage the billable jobs",
}

var jobAddCmd = &cobra.Command{
	Use:   "add <name...>",
	Short: "Add a job",
	Long: `Add a job with a code, a name and an hourly rate.

Smart syntax:
  @CODE         Job code (letters, digits, '-', '_' or '.')
  $85.50        Hourly rate
  rate:85.50    Hourly rate

Examples:
  tally job add "Website redesign @WEB $85.50"
  tally job add Website redesign --code WEB --rate 85.50

Adding a code that is already in use is allowed; you will be warned.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line := strings.Join(args, " ")
		if jobCodeFlag != "" {
			line += " @" + jobCodeFlag
		}
		spec, err := parser.ParseJobSpec(line)
		if err != nil {
			return err
		}
		if jobRateFlag != "" {
			cents, err := parser.ParseRate(jobRateFlag)
			if err != nil {
				return err
			}
			spec.RateCents = cents
		}

		job, warning, err := current.store.CreateJob(db.CreateJobRequest{Code: spec.Code, Name: spec.Name, RateCents: spec.RateCents})
		if err != nil {
			return err
		}
		if warning != nil {
			_, _ = fmt.Fprintln(deps.Stderr, apperr.Operator(warning))
		}
		printf("✅ Added job %s at $%s/h (id %s)\n", job.Label(), parser.FormatRate(job.RateCents), shortID(job.JobID))
		return nil
	},
}

var jobListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List jobs",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := current.store.ListJobs()
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			printf("No jobs found. Use 'tally job add \"Name @CODE $rate\"' to create your first job.\n")
			return nil
		}
		sessions, err := current.store.AllSessions()
		if err != nil {
			return err
		}
		printJobs(jobs, sessions)
		return nil
	},
}

var jobFindCmd = &cobra.Command{
	Use:   "find <code>",
	Short: "Show every job using a code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := current.ctl.Candidates(args[0])
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			return &apperr.NotFoundError{Kind: "job", ID: strings.ToUpper(args[0])}
		}
		sessions, err := current.store.AllSessions()
		if err != nil {
			return err
		}
		printJobs(jobs, sessions)
		return nil
	},
}

var jobEditCmd = &cobra.Command{
	Use:   "edit <code> <name|code|rate> <value...>",
	Short: "Change a job's name, code or rate",
	Long: `Change one field of a job.

Examples:
  tally job edit WEB rate 95
  tally job edit WEB name Website rebuild
  tally job edit WEB code SITE`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := resolveJob(args[0], jobEditJobID)
		if err != nil {
			return err
		}
		edited, err := current.store.EditJob(job.JobID, strings.ToLower(args[1]), strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		printf("✅ Updated %s at $%s/h\n", edited.Label(), parser.FormatRate(edited.RateCents))
		return nil
	},
}

var jobRemoveCmd = &cobra.Command{
	Use:     "rm <code>",
	Aliases: []string{"delete"},
	Short:   "Delete a job",
	Long: `Delete a job. Its sessions stay in the timesheet and keep showing up in
reports and exports. A job with the open session cannot be deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := resolveJob(args[0], jobIDFlag)
		if err != nil {
			return err
		}
		if !jobYesFlag && !confirm(fmt.Sprintf("Delete job %s (id %s)?", job.Label(), shortID(job.JobID))) {
			printf("Delete cancelled\n")
			return nil
		}
		if err := current.store.DeleteJob(job.JobID); err != nil {
			return err
		}
		printf("🗑️  Deleted job %s\n", job.Label())
		return nil
	},
}

// resolveJob turns a typed code into one job. A code shared by several
// jobs needs jobID, a full id or a prefix of one, to choose between them.
func resolveJob(code, jobID string) (*models.Job, error) {
	candidates, err := current.ctl.Candidates(code)
	if err != nil {
		return nil, err
	}
	if jobID != "" {
		for i := range candidates {
			if strings.HasPrefix(candidates[i].JobID, strings.ToLower(jobID)) {
				return &candidates[i], nil
			}
		}
		return nil, &apperr.NotFoundError{Kind: "job", ID: strings.ToUpper(code) + " " + jobID}
	}

	switch len(candidates) {
	case 0:
		return nil, &apperr.NotFoundError{Kind: "job", ID: strings.ToUpper(strings.TrimSpace(code))}
	case 1:
		return &candidates[0], nil
	}
	printf("Code %s is used by %d jobs:\n", candidates[0].Code, len(candidates))
	for _, j := range candidates {
		printf("  %s  %s\n", shortID(j.JobID), j.Name)
	}
	return nil, apperr.Invalid("code", candidates[0].Code, "matches more than one job, choose one with --job-id")
}

func printJobs(jobs []models.Job, sessions []models.Session) {
	printf("%-8s %-10s %-32s %10s %8s %s\n", "ID", "CODE", "NAME", "RATE", "HOURS", "CREATED")
	printf("%s\n", strings.Repeat("-", 84))
	for _, j := range jobs {
		name := j.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		printf("%-8s %-10s %-32s %10s %8s %s\n",
			shortID(j.JobID),
			j.Code,
			name,
			parser.FormatRate(j.RateCents),
			hours.JobTotal(j.JobID, sessions),
			j.CreatedAt.In(current.loc).Format("2006-01-02"))
	}
}

func shortID(id string) string {
	return id[:min(8, len(id))]
}

// confirm asks a yes/no question on deps.Stdin.
func confirm(question string) bool {
	printf("%s [y/N]: ", question)
	reader := bufio.NewReader(deps.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	jobAddCmd.Flags().StringVarP(&jobCodeFlag, "code", "c", "", "job code, instead of @CODE in the name")
	jobAddCmd.Flags().StringVarP(&jobRateFlag, "rate", "r", "", "hourly rate, e.g. 85.50")
	jobEditCmd.Flags().StringVar(&jobEditJobID, "job-id", "", "job id (or its prefix) when several jobs share the code")
	jobRemoveCmd.Flags().StringVar(&jobIDFlag, "job-id", "", "job id (or its prefix) when several jobs share the code")
	jobRemoveCmd.Flags().BoolVarP(&jobYesFlag, "yes", "y", false, "skip confirmation prompt")

	jobCmd.AddCommand(jobAddCmd)
	jobCmd.AddCommand(jobListCmd)
	jobCmd.AddCommand(jobFindCmd)
	jobCmd.AddCommand(jobEditCmd)
	jobCmd.AddCommand(jobRemoveCmd)
}
