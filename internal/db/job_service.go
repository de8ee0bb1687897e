package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balkashynov/tally/internal/apperr"
	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/parser"
)

// CreateJobRequest holds the data needed to create a new job
type CreateJobRequest struct {
	Code      string
	Name      string
	RateCents int64
}

// Job fields accepted by EditJob.
const (
	FieldName = "name"
	FieldCode = "code"
	FieldRate = "rate"
)

// CreateJob registers a new job. Codes are not unique: when other live jobs
// already use the code the job is still created and a DuplicateCodeWarning
// is returned alongside it.
func (s *Store) CreateJob(req CreateJobRequest) (*models.Job, *apperr.DuplicateCodeWarning, error) {
	code, err := parser.NormalizeCode(req.Code)
	if err != nil {
		return nil, nil, err
	}
	name, err := parser.NormalizeName(req.Name)
	if err != nil {
		return nil, nil, err
	}
	if req.RateCents < 0 {
		return nil, nil, apperr.Invalid("rate", parser.FormatRate(req.RateCents), "must not be negative")
	}

	var existing int64
	if err := s.DB.Model(&models.Job{}).Where("code = ?", code).Count(&existing).Error; err != nil {
		return nil, nil, err
	}

	if err := s.snapshot("add-job-" + code); err != nil {
		return nil, nil, err
	}

	job := models.Job{
		JobID:     newJobID(),
		Code:      code,
		Name:      name,
		RateCents: req.RateCents,
	}
	if err := s.DB.Create(&job).Error; err != nil {
		return nil, nil, err
	}

	var warning *apperr.DuplicateCodeWarning
	if existing > 0 {
		warning = &apperr.DuplicateCodeWarning{Code: code, Existing: int(existing)}
		s.log.Warn("duplicate job code", "op", "create_job", "code", code, "existing", existing, "job_id", job.JobID)
	}
	s.log.Info("job created", "job_id", job.JobID, "code", code)
	return &job, warning, nil
}

// FindByCode returns every live job using code, most recently created first.
// No match is not an error.
func (s *Store) FindByCode(code string) ([]models.Job, error) {
	code, err := parser.NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	var jobs []models.Job
	err = s.DB.Where("code = ?", code).
		Order("created_at DESC").
		Order("id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob retrieves a live job by its stable id
func (s *Store) GetJob(jobID string) (*models.Job, error) {
	var job models.Job
	err := s.DB.Where("job_id = ?", jobID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperr.NotFoundError{Kind: "job", ID: jobID}
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns live jobs ordered by code, oldest first within a code.
func (s *Store) ListJobs() ([]models.Job, error) {
	var jobs []models.Job
	if err := s.DB.Order("code ASC").Order("created_at ASC").Order("id ASC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// JobIndex maps job id to job for every job ever created, deleted ones
// included, so historical sessions can still be labelled.
func (s *Store) JobIndex() (map[string]models.Job, error) {
	var jobs []models.Job
	if err := s.DB.Unscoped().Find(&jobs).Error; err != nil {
		return nil, err
	}
	index := make(map[string]models.Job, len(jobs))
	for _, j := range jobs {
		index[j.JobID] = j
	}
	return index, nil
}

// EditJob changes one field of a job. field is name, code or rate
// ("hourly_rate" is accepted too); rate values are currency strings.
func (s *Store) EditJob(jobID, field, value string) (*models.Job, error) {
	job, err := s.GetJob(jobID)
	if err != nil {
		return nil, err
	}

	var column string
	var newValue any
	switch strings.ToLower(strings.TrimSpace(field)) {
	case FieldName:
		name, err := parser.NormalizeName(value)
		if err != nil {
			return nil, err
		}
		column, newValue = "name", name
	case FieldCode:
		code, err := parser.NormalizeCode(value)
		if err != nil {
			return nil, err
		}
		column, newValue = "code", code
	case FieldRate, "hourly_rate":
		cents, err := parser.ParseRate(value)
		if err != nil {
			return nil, err
		}
		column, newValue = "rate_cents", cents
	default:
		return nil, apperr.Invalid("field", field, "use name, code or rate")
	}

	if err := s.snapshot("edit-job-" + job.Code); err != nil {
		return nil, err
	}
	if err := s.DB.Model(job).Update(column, newValue).Error; err != nil {
		return nil, err
	}

	s.log.Info("job edited", "job_id", jobID, "field", column)
	return s.GetJob(jobID)
}

// DeleteJob soft-deletes a job. Its sessions are kept and stay reportable.
func (s *Store) DeleteJob(jobID string) error {
	job, err := s.GetJob(jobID)
	if err != nil {
		return err
	}

	active, err := s.ActiveSession()
	if err != nil {
		return err
	}
	if active != nil && active.JobID == jobID {
		return &apperr.ConflictError{
			Op:     "delete job",
			Reason: fmt.Sprintf("%s has an open session, clock out first", job.Label()),
		}
	}

	if err := s.snapshot("delete-job-" + job.Code); err != nil {
		return err
	}
	if err := s.DB.Delete(job).Error; err != nil {
		return err
	}
	s.log.Info("job deleted", "job_id", jobID, "code", job.Code)
	return nil
}

func newJobID() string {
	return uuid.NewString()
}
