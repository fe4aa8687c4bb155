package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/dtogen/internal/errors"
)

// DirectoryScanner turns package patterns into the directories they cover
type DirectoryScanner struct{}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{}
}

// Root is one resolved pattern
type Root struct {
	Pattern   string
	Dir       string // absolute directory
	Recursive bool   // pattern ended in /...
}

// ResolveRoots resolves patterns such as ./... or ./internal/models against
// base. Every directory must exist.
func (s *DirectoryScanner) ResolveRoots(base string, patterns []string) ([]Root, error) {
	roots := make([]Root, 0, len(patterns))
	for _, pattern := range patterns {
		dir, recursive := pattern, false
		if dir == "..." || strings.HasSuffix(dir, "/...") {
			dir = strings.TrimSuffix(strings.TrimSuffix(dir, "..."), "/")
			recursive = true
		}
		if dir == "" {
			dir = "."
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(base, dir)
		}

		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.WrapFileSystemError("resolve", pattern, err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return nil, errors.ConfigurationError("patterns", fmt.Sprintf("directory does not exist: %s", pattern)).
				WithContext("directory", abs)
		}
		roots = append(roots, Root{Pattern: pattern, Dir: abs, Recursive: recursive})
	}
	return roots, nil
}
