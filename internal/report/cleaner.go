package report

import (
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultArtifactPattern matches the solver's visualization output.
const DefaultArtifactPattern = "*.vtu"

// Cleaner removes solver artifacts from a directory after a sweep.
type Cleaner struct {
	Dir      string
	Patterns []string // Glob patterns matched against base names
	Logger   *slog.Logger
}

// NewCleaner returns a cleaner for dir with the default artifact pattern.
func NewCleaner(dir string) *Cleaner {
	return &Cleaner{Dir: dir, Patterns: []string{DefaultArtifactPattern}}
}

// Clean removes the regular files directly inside Dir whose base name
// matches any pattern, and returns the removed names. Failures are logged
// and otherwise ignored.
func (c *Cleaner) Clean() []string {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		logger.Debug("artifact cleanup skipped", "dir", c.Dir, "error", err)
		return nil
	}

	var removed []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !c.matches(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(c.Dir, e.Name())); err != nil {
			logger.Debug("artifact not removed", "file", e.Name(), "error", err)
			continue
		}
		removed = append(removed, e.Name())
	}
	if len(removed) > 0 {
		logger.Debug("artifacts removed", "dir", c.Dir, "count", len(removed))
	}
	return removed
}

func (c *Cleaner) matches(name string) bool {
	for _, p := range c.Patterns {
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
