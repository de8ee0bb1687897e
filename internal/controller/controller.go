// Package controller drives clocking in and out as a two-state machine:
// Idle, or JobOpen while a session is running. All state lives in one
// AppState value owned by the Controller.
package controller

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/balkashynov/tally/internal/apperr"
	"github.com/balkashynov/tally/internal/db"
	"github.com/balkashynov/tally/internal/logging"
	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/parser"
)

// State is the controller's position in the state machine.
type State int

const (
	Idle State = iota
	JobOpen
)

func (s State) String() string {
	if s == JobOpen {
		return "job open"
	}
	return "idle"
}

// Command is a discrete operator action.
type Command string

const (
	CmdClockIn  Command = "clock in"
	CmdClockOut Command = "clock out"
	CmdRecover  Command = "recover"
	CmdRefresh  Command = "refresh"
)

// transitions lists the commands each state accepts.
var transitions = map[State]map[Command]bool{
	Idle:    {CmdClockIn: true, CmdRefresh: true},
	JobOpen: {CmdClockOut: true, CmdRecover: true, CmdRefresh: true},
}

// Recovery is the operator's answer to a session left open by an earlier run.
type Recovery string

const (
	RecoverCloseNow Recovery = "close-now"
	RecoverCloseAt  Recovery = "close-at"
	RecoverKeep     Recovery = "keep"
	RecoverDiscard  Recovery = "discard"
)

// ParseRecovery accepts the recovery names plus their first letters.
func ParseRecovery(s string) (Recovery, error) {
	switch s {
	case "close-now", "now", "n":
		return RecoverCloseNow, nil
	case "close-at", "at", "a":
		return RecoverCloseAt, nil
	case "keep", "k":
		return RecoverKeep, nil
	case "discard", "d":
		return RecoverDiscard, nil
	}
	return "", apperr.Invalid("recovery", s, "use close-now, close-at, keep or discard")
}

// Ledger is what the controller needs from the store.
type Ledger interface {
	GetJob(jobID string) (*models.Job, error)
	FindByCode(code string) ([]models.Job, error)
	ActiveSession() (*models.Session, error)
	OpenSession(jobID, subTask string, at time.Time) (*models.Session, error)
	CloseSession(id uint, at time.Time) (*models.Session, error)
	DiscardSession(id uint) error
	ResumeOrNew(jobID string, now time.Time) (db.ResumeDecision, error)
	Resume(jobID string, at time.Time) (*models.Session, error)
	SessionsInRange(from, to time.Time) ([]models.Session, error)
	AllSessions() ([]models.Session, error)
	JobIndex() (map[string]models.Job, error)
	ImportEntries(entries []db.ImportEntry) (int, error)
}

// AppState is everything the interface needs to render "what am I doing".
type AppState struct {
	State   State
	Session *models.Session // the open session while JobOpen
	Job     *models.Job     // its job
	// Dangling is set when the open session was found at startup and the
	// operator has not decided what to do with it yet.
	Dangling bool
	// LastClosed is the session most recently clocked out or recovered.
	LastClosed *models.Session
}

// Controller owns the AppState and applies commands to it.
type Controller struct {
	ledger Ledger
	log    *slog.Logger
	now    func() time.Time
	state  AppState
}

// New loads the current ledger state. An open session found here is
// reported by Dangling until Recover is called.
func New(ledger Ledger, log *slog.Logger, now func() time.Time) (*Controller, error) {
	if log == nil {
		log = logging.Discard()
	}
	if now == nil {
		now = time.Now
	}
	c := &Controller{ledger: ledger, log: log, now: now}
	if _, err := c.Refresh(); err != nil {
		return nil, err
	}
	if c.state.State == JobOpen {
		c.state.Dangling = true
		c.log.Warn("open session found at startup", "session", c.state.Session.ID, "job_id", c.state.Session.JobID)
	}
	return c, nil
}

// State returns a copy of the current state.
func (c *Controller) State() AppState {
	return c.state
}

// Dangling returns the session left open by an earlier run, or nil.
func (c *Controller) Dangling() *models.Session {
	if !c.state.Dangling {
		return nil
	}
	return c.state.Session
}

func (c *Controller) fail(cmd Command, err error) (AppState, error) {
	c.logFailure(string(cmd), err)
	return c.state, err
}

func (c *Controller) logFailure(op string, err error, attrs ...any) {
	logging.Failure(c.log, op, err, append([]any{"state", c.state.State.String()}, attrs...)...)
}

func (c *Controller) guard(cmd Command) error {
	if transitions[c.state.State][cmd] {
		return nil
	}
	switch {
	case cmd == CmdClockIn:
		return &apperr.ConflictError{Op: string(cmd), Reason: fmt.Sprintf("already working on %s, clock out first", c.jobLabel())}
	case cmd == CmdClockOut:
		return &apperr.NotFoundError{Kind: "open session"}
	case cmd == CmdRecover:
		return &apperr.ConflictError{Op: string(cmd), Reason: "there is no open session to recover"}
	}
	return &apperr.ConflictError{Op: string(cmd), Reason: "not allowed while " + c.state.State.String()}
}

func (c *Controller) jobLabel() string {
	if c.state.Job != nil {
		return c.state.Job.Label()
	}
	return "another job"
}

// Refresh reloads the open session from the ledger.
func (c *Controller) Refresh() (AppState, error) {
	active, err := c.ledger.ActiveSession()
	if err != nil {
		return c.fail(CmdRefresh, err)
	}
	if active == nil {
		c.state.State, c.state.Session, c.state.Job, c.state.Dangling = Idle, nil, nil, false
		return c.state, nil
	}
	if c.state.Session == nil || c.state.Session.ID != active.ID {
		c.state.Dangling = false
	}
	c.state.State, c.state.Session, c.state.Job = JobOpen, active, c.lookupJob(active.JobID)
	return c.state, nil
}

// lookupJob tolerates jobs that were deleted after the session was opened.
func (c *Controller) lookupJob(jobID string) *models.Job {
	job, err := c.ledger.GetJob(jobID)
	if err != nil {
		return &models.Job{JobID: jobID, Code: "?", Name: "deleted job"}
	}
	return job
}

// Candidates resolves a typed code to the jobs using it, most recent first.
// More than one result means the operator has to choose.
func (c *Controller) Candidates(code string) ([]models.Job, error) {
	jobs, err := c.ledger.FindByCode(code)
	if err != nil {
		c.logFailure("find job", err, "code", code)
		return nil, err
	}
	return jobs, nil
}

// Prepare tells the interface whether clocking in on jobID continues the
// job's work from earlier today.
func (c *Controller) Prepare(jobID string) (db.ResumeDecision, error) {
	d, err := c.ledger.ResumeOrNew(jobID, c.now())
	if err != nil {
		c.logFailure("prepare clock in", err, "job_id", jobID)
	}
	return d, err
}

// ClockIn opens a session on jobID. Idle -> JobOpen.
func (c *Controller) ClockIn(jobID, subTask string) (AppState, error) {
	if err := c.guard(CmdClockIn); err != nil {
		return c.fail(CmdClockIn, err)
	}
	return c.opened(jobID)(c.ledger.OpenSession(jobID, subTask, c.now()))
}

// Resume clocks in on jobID again, carrying the sub-task of the job's most
// recent session. Idle -> JobOpen.
func (c *Controller) Resume(jobID string) (AppState, error) {
	if err := c.guard(CmdClockIn); err != nil {
		return c.fail(CmdClockIn, err)
	}
	return c.opened(jobID)(c.ledger.Resume(jobID, c.now()))
}

func (c *Controller) opened(jobID string) func(*models.Session, error) (AppState, error) {
	return func(session *models.Session, err error) (AppState, error) {
		if err != nil {
			// Another process may have clocked in; pick that up.
			if apperr.IsConflict(err) {
				_, _ = c.Refresh()
			}
			return c.fail(CmdClockIn, err)
		}
		c.state = AppState{State: JobOpen, Session: session, Job: c.lookupJob(jobID), LastClosed: c.state.LastClosed}
		return c.state, nil
	}
}

// ClockOut closes the open session now. JobOpen -> Idle.
func (c *Controller) ClockOut() (AppState, error) {
	return c.closeAt(CmdClockOut, c.now())
}

func (c *Controller) closeAt(cmd Command, at time.Time) (AppState, error) {
	if err := c.guard(cmd); err != nil {
		return c.fail(cmd, err)
	}
	closed, err := c.ledger.CloseSession(c.state.Session.ID, at)
	if err != nil {
		if apperr.IsNotFound(err) || apperr.IsConflict(err) {
			_, _ = c.Refresh()
		}
		return c.fail(cmd, err)
	}
	c.state = AppState{State: Idle, LastClosed: closed}
	return c.state, nil
}

// Recover resolves a dangling session. at is an "hh:mm" style clock time,
// read only for RecoverCloseAt, on the session's clock-in day; an earlier
// time than the clock-in is taken to be on the following day.
func (c *Controller) Recover(choice Recovery, at string) (AppState, error) {
	if err := c.guard(CmdRecover); err != nil {
		return c.fail(CmdRecover, err)
	}
	if !c.state.Dangling {
		return c.fail(CmdRecover, &apperr.ConflictError{Op: string(CmdRecover), Reason: "the open session is not left over from an earlier run"})
	}
	session := c.state.Session

	switch choice {
	case RecoverKeep:
		c.state.Dangling = false
		c.log.Info("dangling session kept", "session", session.ID)
		return c.state, nil

	case RecoverCloseNow:
		return c.closeAt(CmdRecover, c.now())

	case RecoverCloseAt:
		end, err := c.estimatedEnd(session, at)
		if err != nil {
			return c.fail(CmdRecover, err)
		}
		return c.closeAt(CmdRecover, end)

	case RecoverDiscard:
		if err := c.ledger.DiscardSession(session.ID); err != nil {
			return c.fail(CmdRecover, err)
		}
		c.log.Info("dangling session discarded", "session", session.ID)
		c.state = AppState{State: Idle, LastClosed: c.state.LastClosed}
		return c.state, nil
	}
	return c.fail(CmdRecover, apperr.Invalid("recovery", string(choice), "use close-now, close-at, keep or discard"))
}

func (c *Controller) estimatedEnd(session *models.Session, at string) (time.Time, error) {
	now := c.now()
	clockIn := session.ClockIn.In(now.Location())
	end, err := parser.ParseClock(at, clockIn)
	if err != nil {
		return time.Time{}, err
	}
	if end.Before(clockIn) {
		end = end.AddDate(0, 0, 1)
	}
	if end.After(now) {
		return time.Time{}, apperr.Invalid("end time", at, "is in the future")
	}
	return end, nil
}

// Now reads the controller's clock.
func (c *Controller) Now() time.Time {
	return c.now()
}

// Elapsed is how long the open session has been running.
func (c *Controller) Elapsed() time.Duration {
	if c.state.Session == nil {
		return 0
	}
	return c.state.Session.Elapsed(c.now())
}
