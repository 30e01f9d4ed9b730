package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/facette/natsort"
)

// ScanSource lists the .mp4 files directly under dir, in natural name order
// so clip2 sorts before clip10.
func ScanSource(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".mp4") {
			names = append(names, entry.Name())
		}
	}
	natsort.Sort(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// VerifySources stats every path before any extraction starts; one missing
// or unreadable file fails the whole batch up front.
func VerifySources(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("source file %s: %w", path, err)
		}
	}
	return nil
}
