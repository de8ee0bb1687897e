package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/apperr"
	"github.com/balkashynov/tally/internal/backup"
	"github.com/balkashynov/tally/internal/config"
	"github.com/balkashynov/tally/internal/controller"
	"github.com/balkashynov/tally/internal/db"
	"github.com/balkashynov/tally/internal/hours"
	"github.com/balkashynov/tally/internal/logging"
	"github.com/balkashynov/tally/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configFlag  string
	dataDirFlag string
)

const (
	// noStore marks commands that run without opening the timesheet.
	noStore = "no-store"
	// startupBackup marks commands that snapshot the timesheet as they open it.
	startupBackup = "startup-backup"
)

// app is everything one invocation works on.
type app struct {
	cfg     config.Config
	loc     *time.Location
	log     *slog.Logger
	logFile io.Closer
	store   *db.Store
	ctl     *controller.Controller
}

// current is opened by the root command's pre-run hook and closed by Execute.
var current *app

// started is set once a command got past argument and flag parsing.
var started bool

type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

type startupError struct{ error }

func (e startupError) Unwrap() error { return e.error }

func isUsageError(err error) bool {
	var u usageError
	return errors.As(err, &u) || !started
}

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "A timesheet clock for billable jobs",
	Long: `tally clocks you in and out of billable jobs and turns the sessions into
daily and weekly timesheets rounded to a tenth of an hour.

Run without a command to open the interactive menu.

Examples:
  tally job add "Website redesign @WEB $85.50"
  tally start WEB landing page
  tally stop
  tally report weekly`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		started = true
		if cmd.Annotations[noStore] == "true" {
			return nil
		}
		a, err := openApp(cmd.Annotations[startupBackup] == "true")
		if err != nil {
			return startupError{err}
		}
		current = a
		warnForgotten()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu()
	},
	Annotations: map[string]string{startupBackup: "true"},
}

// loadConfig reads the config file named by --config, or the default one,
// and applies --data-dir on top.
func loadConfig() (config.Config, error) {
	path := configFlag
	if path == "" {
		p, err := deps.ConfigPath()
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to determine config file location: %w", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.SetDataDir(dataDirFlag); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// openApp loads the configuration, opens the log, sweeps the backups
// (snapshotting first when snapshot is set), then opens the store and the
// controller.
func openApp(snapshot bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	retention, err := cfg.Retention()
	if err != nil {
		return nil, err
	}

	log, logFile, err := logging.New(cfg.LogFile, level)
	if err != nil {
		return nil, err
	}
	now := func() time.Time { return deps.Now().In(loc) }

	backups := backup.NewManager(cfg.StorePath(), cfg.BackupDir, retention)
	backups.Now = now
	if snapshot {
		if _, err := backups.Snapshot("startup"); err != nil {
			log.Warn("startup backup failed", "err", err)
		}
	}
	if removed, err := backups.Sweep(); err != nil {
		log.Warn("backup sweep failed", "err", err)
	} else if len(removed) > 0 {
		log.Info("old backups removed", "count", len(removed))
	}

	store, err := db.Open(cfg.StorePath(), db.Options{Backups: backups, Logger: log, Now: now})
	if err != nil {
		logging.Failure(log, "open store", err, "path", cfg.StorePath())
		_ = logFile.Close()
		return nil, err
	}
	ctl, err := controller.New(store, log, now)
	if err != nil {
		_ = store.Close()
		_ = logFile.Close()
		return nil, err
	}

	log.Debug("started", "version", version, "store", cfg.StorePath())
	return &app{cfg: cfg, loc: loc, log: log, logFile: logFile, store: store, ctl: ctl}, nil
}

func closeApp() {
	if current == nil {
		return
	}
	if err := current.store.Close(); err != nil {
		current.log.Warn("closing store failed", "err", err)
	}
	_ = current.logFile.Close()
	current = nil
}

// warnForgotten nags about a session left open since an earlier day. Each
// invocation is a new process, so a session opened today is expected.
func warnForgotten() {
	dangling := current.ctl.Dangling()
	if dangling == nil {
		return
	}
	clockIn := dangling.ClockIn.In(current.loc)
	if hours.SameDay(clockIn, current.ctl.Now()) {
		return
	}
	_, _ = fmt.Fprintf(deps.Stderr, "Warning: session #%d has been open since %s.\n", dangling.ID, clockIn.Format("Mon 2006-01-02 15:04"))
	_, _ = fmt.Fprintln(deps.Stderr, "         Use 'tally recover' to close, keep or discard it.")
}

func runMenu() error {
	if !deps.Interactive {
		return &apperr.ConflictError{Op: "menu", Reason: "not running in a terminal"}
	}
	return tui.RunMenu(tui.Deps{
		Store:      current.store,
		Controller: current.ctl,
		ExportFile: current.cfg.ExportFile,
	})
}

func printf(format string, a ...any) {
	_, _ = fmt.Fprintf(deps.Stdout, format, a...)
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command and prints any failure as one line.
func Execute() error {
	started = false
	cmd, err := rootCmd.ExecuteC()
	if err != nil && current != nil {
		logging.Failure(current.log, cmd.CommandPath(), err)
	}
	closeApp()
	if err == nil {
		return nil
	}

	var startup startupError
	switch {
	case isUsageError(err):
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		_, _ = fmt.Fprintf(deps.Stderr, "Run '%s --help' for usage.\n", cmd.CommandPath())
	case errors.As(err, &startup):
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", startup.error)
	default:
		_, _ = fmt.Fprintln(deps.Stderr, apperr.Operator(err))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default is $XDG_CONFIG_HOME/tally/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "directory holding the timesheet, log and backups")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(versionCmd)
}
