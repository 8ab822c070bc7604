package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ResolveStorageDir canonicalizes candidate to an absolute, writable
// directory. If candidate is not writable or cannot be created, it walks
// up to the first writable ancestor; failing that, or if candidate is
// empty, it falls back to a platform-specific user-data directory
// (<user-data>/aurora).
func ResolveStorageDir(candidate string) (string, error) {
	if candidate != "" {
		abs, err := filepath.Abs(candidate)
		if err == nil {
			if err := os.MkdirAll(abs, 0o755); err == nil && isWritable(abs) {
				return abs, nil
			}
			// Candidate itself isn't writable/creatable — walk up parents.
			if dir, ok := firstWritableAncestor(abs); ok {
				return dir, nil
			}
		}
	}

	dataDir, err := userDataDir()
	if err != nil {
		return "", fmt.Errorf("resolve storage dir: %w", err)
	}
	aurora := filepath.Join(dataDir, "aurora")
	if err := os.MkdirAll(aurora, 0o755); err != nil {
		return "", fmt.Errorf("create fallback storage dir: %w", err)
	}
	return aurora, nil
}

// firstWritableAncestor walks up from dir looking for a writable parent.
func firstWritableAncestor(dir string) (string, bool) {
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		if isWritable(parent) {
			return parent, true
		}
		dir = parent
	}
}

// isWritable attempts to create and remove a probe file under dir.
func isWritable(dir string) bool {
	probe := filepath.Join(dir, fmt.Sprintf(".aurora-write-probe-%d", time.Now().UnixNano()))
	f, err := os.Create(probe)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(probe)
	return true
}

// userConfigDir returns the platform-specific per-user config directory.
func userConfigDir() (string, error) {
	return os.UserConfigDir()
}

// userDataDir returns the platform-specific per-user data directory. Go's
// standard library has no dedicated data-dir API; UserConfigDir is the
// closest portable equivalent across macOS/Linux/Windows and is what the
// original desktop app layers its data directory under.
func userDataDir() (string, error) {
	return os.UserConfigDir()
}

// ConfigFilePath returns the path to Aurora's config.json.
func ConfigFilePath() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "aurora", "config.json"), nil
}

// SessionDBPath returns the path to Aurora's sessions.db.
func SessionDBPath() (string, error) {
	dir, err := userDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "aurora", "sessions.db"), nil
}
