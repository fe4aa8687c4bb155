package cli

import (
	"os"
	"path/filepath"

	"github.com/toyz/dtogen/internal/errors"
	"github.com/toyz/dtogen/internal/parser"
	"github.com/toyz/dtogen/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	scanner    *DirectoryScanner
	processor  *utils.FileProcessor
	outputFile string
}

// NewCleaner creates a cleaner for files named outputFile
func NewCleaner(outputFile string) *Cleaner {
	return &Cleaner{
		scanner:    NewDirectoryScanner(),
		processor:  utils.NewFileProcessor(),
		outputFile: outputFile,
	}
}

// CleanGeneratedFiles removes dtogen output from the directories the patterns
// name, recursing for patterns ending in /.... Files with the output name but
// without the generated header are kept.
func (c *Cleaner) CleanGeneratedFiles(base string, patterns []string) ([]string, error) {
	roots, err := c.scanner.ResolveRoots(base, patterns)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, root := range roots {
		if root.Recursive {
			files, err := c.processor.CleanDirectories([]string{root.Dir}, c.outputFile, parser.GeneratedMarker)
			removed = append(removed, files...)
			if err != nil {
				return removed, err
			}
			continue
		}

		ok, err := c.RemoveIfGenerated(filepath.Join(root.Dir, c.outputFile))
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, filepath.Join(root.Dir, c.outputFile))
		}
	}
	return removed, nil
}

// RemoveIfGenerated deletes path when it exists and carries the generated header
func (c *Cleaner) RemoveIfGenerated(path string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	reader := c.processor.GetFileReader()
	generated, err := reader.HasHeaderMarker(path, parser.GeneratedMarker)
	if err != nil {
		return false, errors.WrapFileSystemError("read", path, err)
	}
	if !generated {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, errors.WrapFileSystemError("remove", path, err)
	}
	reader.InvalidateFile(path)
	return true, nil
}
