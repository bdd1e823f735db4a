package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/autodoc/internal/logfields"
)

// Manager owns one staging directory created next to the directory it will
// replace, so the final swap is a rename on the same filesystem.
type Manager struct {
	baseDir string
	prefix  string
	dir     string
	now     func() time.Time
}

// NewManager creates a manager that stages below baseDir. Directory names
// are <prefix>-<timestamp>.
func NewManager(baseDir, prefix string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if prefix == "" {
		prefix = "autodoc"
	}
	return &Manager{baseDir: baseDir, prefix: prefix, now: time.Now}
}

// ForTarget returns a manager staging beside target.
func ForTarget(target, purpose string) *Manager {
	target = filepath.Clean(target)
	return NewManager(filepath.Dir(target), fmt.Sprintf("%s-%s", filepath.Base(target), purpose))
}

// Create creates the staging directory.
func (m *Manager) Create() error {
	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace base directory: %w", err)
	}
	pattern := fmt.Sprintf(".%s-%s-*", m.prefix, m.now().Format("20060102-150405"))
	dir, err := os.MkdirTemp(m.baseDir, pattern)
	if err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.dir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// GetPath returns the staging directory, empty before Create.
func (m *Manager) GetPath() string {
	return m.dir
}

// CreateSubdir creates a subdirectory within the workspace.
func (m *Manager) CreateSubdir(name string) (string, error) {
	if m.dir == "" {
		return "", fmt.Errorf("workspace not created")
	}
	subdir := filepath.Join(m.dir, name)
	if err := os.MkdirAll(subdir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}
	return subdir, nil
}

// Promote moves the staged tree into target. Staged entries replace
// target entries of the same name, directories are merged, and target
// entries with no staged counterpart (a .git checkout, CNAME) are kept.
func (m *Manager) Promote(target string) error {
	if m.dir == "" {
		return fmt.Errorf("workspace not created")
	}
	if err := mergeInto(m.dir, target); err != nil {
		return fmt.Errorf("failed to promote workspace: %w", err)
	}
	slog.Info("Promoted workspace", logfields.Path(m.dir), logfields.Target(target))
	return m.Cleanup()
}

func mergeInto(src, dst string) error {
	info, err := os.Stat(dst)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// #nosec G301 -- static site output
		if err := os.MkdirAll(dst, 0o755); err != nil {
			return err
		}
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%s is not a directory", dst)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())
		existing, statErr := os.Lstat(to)
		if e.IsDir() && statErr == nil && existing.IsDir() {
			if err := mergeInto(from, to); err != nil {
				return err
			}
			continue
		}
		if statErr == nil && (e.IsDir() || existing.IsDir()) {
			if err := os.RemoveAll(to); err != nil {
				return err
			}
		}
		if e.IsDir() {
			// MkdirTemp and MkdirAll in the stage may be stricter than a site needs.
			// #nosec G302 -- static site output
			if err := os.Chmod(from, 0o755); err != nil {
				return err
			}
		}
		if err := os.Rename(from, to); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup removes the staging directory if it was not promoted.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}
