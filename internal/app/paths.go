package app

import (
	"os"
	"path/filepath"

	"github.com/corey/tagreport/internal/config"
)

// Paths holds the resolved filesystem paths for one run.
// Relative config paths are resolved against the project root.
type Paths struct {
	Root   string // working directory
	Input  string // JSON dump (db.json)
	Output string // report (analysis.json)
	DB     string // bbolt file, empty when the JSON dump is read directly
}

// NewPaths constructs all resolved paths from a project root and config.
func NewPaths(projectRoot string, cfg *config.Config) *Paths {
	return &Paths{
		Root:   projectRoot,
		Input:  resolve(projectRoot, cfg.Input),
		Output: resolve(projectRoot, cfg.Output),
		DB:     resolve(projectRoot, cfg.DB),
	}
}

func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// EnsureDirs creates the parent directories of every output location. Idempotent.
func (p *Paths) EnsureDirs() error {
	dirs := []string{filepath.Dir(p.Output)}
	if p.DB != "" {
		dirs = append(dirs, filepath.Dir(p.DB))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}
