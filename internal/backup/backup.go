package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/balkashynov/tally/internal/apperr"
)

const (
	// TimestampFormat is appended to every backup name: <store>_<reason>-20060102-150405
	TimestampFormat = "20060102-150405"
)

var unsafeReason = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Manager writes timestamped copies of the store file into a backup
// directory and sweeps out the ones older than the retention window.
type Manager struct {
	StorePath string
	Dir       string
	Retention time.Duration

	// Now is overridable for tests.
	Now func() time.Time
}

// Info describes one backup file.
type Info struct {
	Name    string
	Path    string
	Reason  string
	ModTime time.Time
	Size    int64
}

// NewManager returns a Manager for the given store file.
func NewManager(storePath, dir string, retention time.Duration) *Manager {
	return &Manager{
		StorePath: storePath,
		Dir:       dir,
		Retention: retention,
		Now:       time.Now,
	}
}

func (m *Manager) prefix() string {
	return filepath.Base(m.StorePath) + "_"
}

// Name returns the backup file name for reason at t.
// Reasons are sanitised so that job names can be used verbatim.
func (m *Manager) Name(reason string, t time.Time) string {
	reason = strings.Trim(unsafeReason.ReplaceAllString(reason, "-"), "-")
	if reason == "" {
		reason = "manual"
	}
	return m.prefix() + reason + "-" + t.Format(TimestampFormat)
}

// Snapshot copies the store into the backup directory before a mutation.
// If the store file doesn't exist yet, no backup is created and no error is
// returned. Two snapshots in the same second get .1, .2, ... suffixes
// rather than overwriting each other.
// The copy is synced to disk before Snapshot returns.
func (m *Manager) Snapshot(reason string) (string, error) {
	if _, err := os.Stat(m.StorePath); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	if err := os.MkdirAll(m.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := m.Name(reason, m.Now())
	path := filepath.Join(m.Dir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(m.Dir, fmt.Sprintf("%s.%d", name, i))
	}

	if err := CopyFile(m.StorePath, path); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", m.StorePath, err)
	}
	return path, nil
}

// Sweep deletes backups whose modification time is older than the retention
// window and returns the removed paths. A missing backup directory is not an
// error.
func (m *Manager) Sweep() ([]string, error) {
	backups, err := m.List()
	if err != nil {
		return nil, err
	}

	cutoff := m.Now().Add(-m.Retention)
	var removed []string
	for _, b := range backups {
		if !b.ModTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(b.Path); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed = append(removed, b.Path)
	}
	return removed, nil
}

// List returns the backups of this store, newest first.
// Returns an empty slice if the backup directory doesn't exist.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, err
	}

	prefix := m.prefix()
	backups := []Info{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Name:    e.Name(),
			Path:    filepath.Join(m.Dir, e.Name()),
			Reason:  reasonOf(strings.TrimPrefix(e.Name(), prefix)),
			ModTime: fi.ModTime(),
			Size:    fi.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].ModTime.After(backups[j].ModTime)
		}
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// Lookup resolves a backup by name, or by 1-based position in List when
// name is a number.
func (m *Manager) Lookup(name string) (Info, error) {
	backups, err := m.List()
	if err != nil {
		return Info{}, err
	}
	var n int
	if _, err := fmt.Sscanf(name, "%d", &n); err == nil && fmt.Sprint(n) == name {
		if n < 1 || n > len(backups) {
			return Info{}, &apperr.NotFoundError{Kind: "backup", ID: name}
		}
		return backups[n-1], nil
	}
	for _, b := range backups {
		if b.Name == name {
			return b, nil
		}
	}
	return Info{}, &apperr.NotFoundError{Kind: "backup", ID: name}
}

// reasonOf strips the timestamp (and any collision suffix) from the part of a
// backup name that follows the store prefix.
func reasonOf(rest string) string {
	if i := strings.LastIndex(rest, "."); i > 0 && !strings.Contains(rest[i:], "-") {
		if _, err := fmt.Sscanf(rest[i+1:], "%d", new(int)); err == nil {
			rest = rest[:i]
		}
	}
	suffix := len(TimestampFormat) + 1
	if len(rest) > suffix {
		return rest[:len(rest)-suffix]
	}
	return rest
}

// CopyFile copies src to dst through a temporary file in dst's directory,
// syncing before the final rename so a crash never leaves a half-written
// copy under dst's name.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-"+filepath.Base(dst)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := io.Copy(tmp, in); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, dst)
}
