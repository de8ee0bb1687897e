package db

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/tally/internal/apperr"
	"github.com/balkashynov/tally/internal/hours"
	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/parser"
)

// ResumeReason explains a ResumeDecision.
type ResumeReason int

const (
	// NoHistory: the job has never been worked on.
	NoHistory ResumeReason = iota
	// SameDay: the last session was clocked in today; offer to continue its sub-task.
	SameDay
	// NewDay: the last session was on an earlier day; start fresh.
	NewDay
)

func (r ResumeReason) String() string {
	switch r {
	case SameDay:
		return "same day"
	case NewDay:
		return "new day"
	default:
		return "no history"
	}
}

// ResumeDecision is the outcome of ResumeOrNew.
type ResumeDecision struct {
	Last   *models.Session
	Reason ResumeReason
}

// Offer reports whether the caller should offer to continue Last's sub-task.
func (d ResumeDecision) Offer() bool {
	return d.Reason == SameDay && d.Last != nil
}

// SameSubTask reports whether subTask continues the last session's work.
// A different sub-task needs the operator's confirmation.
func (d ResumeDecision) SameSubTask(subTask string) bool {
	return d.Last != nil && d.Last.SubTask == subTask
}

// ImportEntry is one timesheet row to be rebuilt as a closed session.
type ImportEntry struct {
	Code  string
	Name  string
	Date  time.Time
	Hours hours.Tenths
}

func sessionNotFound(id uint) error {
	return &apperr.NotFoundError{Kind: "session", ID: "#" + strconv.FormatUint(uint64(id), 10)}
}

// OpenSession clocks in on jobID. Only one session may be open at a time,
// across all jobs. A zero at means now.
func (s *Store) OpenSession(jobID, subTask string, at time.Time) (*models.Session, error) {
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()
	job, err := s.GetJob(jobID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoneOpen(s.DB); err != nil {
		return nil, err
	}

	if err := s.snapshot("clock-in-" + job.Code); err != nil {
		return nil, err
	}

	session := models.Session{
		JobID:   jobID,
		SubTask: parser.CollapseSpace(subTask),
		ClockIn: at,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.ensureNoneOpen(tx); err != nil {
			return err
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("clocked in", "session", session.ID, "job_id", jobID, "code", job.Code)
	return &session, nil
}

func (s *Store) ensureNoneOpen(tx *gorm.DB) error {
	var open models.Session
	err := tx.Where("clock_out IS NULL").First(&open).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return &apperr.ConflictError{
		Op:     "clock in",
		Reason: fmt.Sprintf("session #%d is already open since %s, clock out first", open.ID, open.ClockIn.Format("2006-01-02 15:04")),
	}
}

// CloseSession clocks out session id at the given time (zero means now),
// storing the rounded hours together with the clock-out time.
func (s *Store) CloseSession(id uint, at time.Time) (*models.Session, error) {
	if at.IsZero() {
		at = s.now()
	}
	session, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}
	if !session.Open() {
		return nil, &apperr.ConflictError{Op: "clock out", Reason: fmt.Sprintf("session #%d is already closed", id)}
	}
	if at.Before(session.ClockIn) {
		return nil, apperr.Invalid("clock-out", at.Format("2006-01-02 15:04"), "is before the clock-in time "+session.ClockIn.Format("2006-01-02 15:04"))
	}

	if err := s.snapshot("clock-out"); err != nil {
		return nil, err
	}

	at = at.UTC()
	rounded := hours.Round(at.Sub(session.ClockIn))
	res := s.DB.Model(&models.Session{}).
		Where("id = ? AND clock_out IS NULL", id).
		Updates(map[string]any{"clock_out": at, "rounded": rounded})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &apperr.ConflictError{Op: "clock out", Reason: fmt.Sprintf("session #%d is already closed", id)}
	}

	session.ClockOut = &at
	session.Rounded = &rounded
	s.log.Info("clocked out", "session", id, "job_id", session.JobID, "hours", rounded.String())
	return session, nil
}

// CloseActive closes whichever session is open.
func (s *Store) CloseActive(at time.Time) (*models.Session, error) {
	active, err := s.ActiveSession()
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, &apperr.NotFoundError{Kind: "open session"}
	}
	return s.CloseSession(active.ID, at)
}

// ActiveSession returns the currently open session, if any
func (s *Store) ActiveSession() (*models.Session, error) {
	var session models.Session
	err := s.DB.Where("clock_out IS NULL").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // No active session is not an error
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession retrieves a session by id
func (s *Store) GetSession(id uint) (*models.Session, error) {
	var session models.Session
	err := s.DB.First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, sessionNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// LastSession returns the most recent session of a job, or nil.
func (s *Store) LastSession(jobID string) (*models.Session, error) {
	var session models.Session
	err := s.DB.Where("job_id = ?", jobID).
		Order("clock_in DESC").
		Order("id DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ResumeOrNew decides whether clocking in on jobID at now continues the
// job's last session (same calendar day) or starts a new day.
func (s *Store) ResumeOrNew(jobID string, now time.Time) (ResumeDecision, error) {
	if _, err := s.GetJob(jobID); err != nil {
		return ResumeDecision{}, err
	}
	last, err := s.LastSession(jobID)
	if err != nil {
		return ResumeDecision{}, err
	}
	if last == nil {
		return ResumeDecision{Reason: NoHistory}, nil
	}
	if hours.SameDay(last.ClockIn.In(now.Location()), now) {
		return ResumeDecision{Last: last, Reason: SameDay}, nil
	}
	return ResumeDecision{Last: last, Reason: NewDay}, nil
}

// Resume opens a new session on jobID carrying the sub-task of its most
// recent session.
func (s *Store) Resume(jobID string, at time.Time) (*models.Session, error) {
	last, err := s.LastSession(jobID)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, &apperr.NotFoundError{Kind: "previous session for job", ID: jobID}
	}
	return s.OpenSession(jobID, last.SubTask, at)
}

// EditSession changes the times of a closed session, re-deriving its
// rounded hours and marking it edited.
func (s *Store) EditSession(id uint, clockIn, clockOut time.Time) (*models.Session, error) {
	session, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}
	if session.Open() {
		return nil, &apperr.ConflictError{Op: "edit session", Reason: fmt.Sprintf("session #%d is still open, clock out first", id)}
	}
	if clockOut.Before(clockIn) {
		return nil, apperr.Invalid("clock-out", clockOut.Format("2006-01-02 15:04"), "is before the clock-in time "+clockIn.Format("2006-01-02 15:04"))
	}

	if err := s.snapshot("edit-session"); err != nil {
		return nil, err
	}

	rounded := hours.Round(clockOut.Sub(clockIn))
	err = s.DB.Model(session).Updates(map[string]any{
		"clock_in":  clockIn.UTC(),
		"clock_out": clockOut.UTC(),
		"rounded":   rounded,
		"edited":    true,
	}).Error
	if err != nil {
		return nil, err
	}

	s.log.Info("session edited", "session", id, "hours", rounded.String())
	return s.GetSession(id)
}

// DiscardSession deletes a session outright.
func (s *Store) DiscardSession(id uint) error {
	session, err := s.GetSession(id)
	if err != nil {
		return err
	}
	if err := s.snapshot("discard-session"); err != nil {
		return err
	}
	if err := s.DB.Delete(session).Error; err != nil {
		return err
	}
	s.log.Info("session discarded", "session", id, "job_id", session.JobID)
	return nil
}

// SessionsInRange returns sessions clocked in within [from, to), oldest first.
// Times are stored in UTC so the comparison holds across timezone changes.
func (s *Store) SessionsInRange(from, to time.Time) ([]models.Session, error) {
	var sessions []models.Session
	err := s.DB.Where("clock_in >= ? AND clock_in < ?", from.UTC(), to.UTC()).
		Order("clock_in ASC").
		Order("id ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// AllSessions returns the whole ledger in insertion order.
func (s *Store) AllSessions() ([]models.Session, error) {
	var sessions []models.Session
	if err := s.DB.Order("id ASC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// JobSessions returns a job's sessions in insertion order.
func (s *Store) JobSessions(jobID string) ([]models.Session, error) {
	var sessions []models.Session
	if err := s.DB.Where("job_id = ?", jobID).Order("id ASC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ImportEntries rebuilds timesheet rows as closed, imported sessions that
// clock in at midnight of the row's date and last exactly its hours. Jobs
// are matched by code and name and created when missing.
func (s *Store) ImportEntries(entries []ImportEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	if err := s.snapshot("import"); err != nil {
		return 0, err
	}

	created := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		jobs := map[string]string{}
		for i, e := range entries {
			code, err := parser.NormalizeCode(e.Code)
			if err != nil {
				return fmt.Errorf("entry %d: %w", i+1, err)
			}
			name, err := parser.NormalizeName(e.Name)
			if err != nil {
				return fmt.Errorf("entry %d: %w", i+1, err)
			}
			if e.Hours < 0 {
				return fmt.Errorf("entry %d: %w", i+1, apperr.Invalid("hours", e.Hours.String(), "must not be negative"))
			}

			key := code + "\x00" + name
			jobID, ok := jobs[key]
			if !ok {
				jobID, err = resolveJob(tx, code, name)
				if err != nil {
					return err
				}
				jobs[key] = jobID
			}

			clockIn := hours.Day(e.Date).UTC()
			clockOut := clockIn.Add(time.Duration(e.Hours) * 6 * time.Minute)
			rounded := e.Hours
			session := models.Session{
				JobID:    jobID,
				ClockIn:  clockIn,
				ClockOut: &clockOut,
				Rounded:  &rounded,
				Imported: true,
			}
			if err := tx.Create(&session).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("entries imported", "count", created)
	return created, nil
}

func resolveJob(tx *gorm.DB, code, name string) (string, error) {
	var job models.Job
	err := tx.Where("code = ? AND name = ?", code, name).
		Order("created_at DESC").
		Order("id DESC").
		First(&job).Error
	if err == nil {
		return job.JobID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	job = models.Job{JobID: newJobID(), Code: code, Name: name}
	if err := tx.Create(&job).Error; err != nil {
		return "", err
	}
	return job.JobID, nil
}
