package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/tally/internal/apperr"
	"github.com/balkashynov/tally/internal/backup"
	"github.com/balkashynov/tally/internal/logging"
	"github.com/balkashynov/tally/internal/models"
)

// Store is the timesheet database: the job registry and the session ledger.
// Every mutating method snapshots the database file first and aborts if the
// snapshot cannot be written.
type Store struct {
	DB *gorm.DB

	path    string
	backups *backup.Manager
	log     *slog.Logger
	now     func() time.Time
}

// Options configures Open. The zero value is usable: no backups, no
// logging and the wall clock.
type Options struct {
	Backups *backup.Manager
	Logger  *slog.Logger
	Now     func() time.Time
}

// Open sets up the database connection and runs migrations
func Open(path string, opts Options) (*Store, error) {
	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{
		path:    path,
		backups: opts.Backups,
		log:     opts.Logger,
		now:     opts.Now,
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if s.now == nil {
		s.now = time.Now
	}

	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) connect() error {
	db, err := gorm.Open(sqlite.Open(s.path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run auto-migrations
	if err := db.AutoMigrate(&models.Job{}, &models.Session{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.DB = db
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Backups returns the snapshot manager, or nil when backups are off.
func (s *Store) Backups() *backup.Manager {
	return s.backups
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.now()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	s.DB = nil
	return sqlDB.Close()
}

// snapshot copies the database file before a mutation named reason.
func (s *Store) snapshot(reason string) error {
	if s.backups == nil {
		return nil
	}
	path, err := s.backups.Snapshot(reason)
	if err != nil {
		return fmt.Errorf("backup before %s failed, nothing was changed: %w", reason, err)
	}
	if path != "" {
		s.log.Debug("backup written", "reason", reason, "path", path)
	}
	return nil
}

// Restore replaces the database with the backup identified by name (a file
// name or a 1-based position in the backup list). The current database is
// snapshotted as "pre-restore" first.
func (s *Store) Restore(name string) (backup.Info, error) {
	if s.backups == nil {
		return backup.Info{}, &apperr.ConflictError{Op: "restore", Reason: "backups are not configured"}
	}
	info, err := s.backups.Lookup(name)
	if err != nil {
		return backup.Info{}, err
	}
	if err := s.snapshot("pre-restore"); err != nil {
		return backup.Info{}, err
	}

	if err := s.Close(); err != nil {
		return backup.Info{}, fmt.Errorf("failed to close database: %w", err)
	}
	if err := backup.CopyFile(info.Path, s.path); err != nil {
		// Reconnect to whatever is on disk so the store stays usable.
		if cerr := s.connect(); cerr != nil {
			return backup.Info{}, errors.Join(err, cerr)
		}
		return backup.Info{}, fmt.Errorf("failed to restore %s: %w", info.Name, err)
	}
	if err := s.connect(); err != nil {
		return backup.Info{}, err
	}

	s.log.Info("database restored", "backup", info.Name)
	return info, nil
}

// Purge deletes every job and session.
func (s *Store) Purge() error {
	if err := s.snapshot("purge"); err != nil {
		return err
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("1 = 1").Delete(&models.Job{}).Error
	})
	if err != nil {
		return err
	}
	s.log.Info("database purged")
	return nil
}
