// Package storage manages the on-disk file layout of an import run: the
// inbox of pending XML files and the success/error directories that files
// are routed to after processing.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dirs is the directory layout of the import area.
type Dirs struct {
	Import  string
	Success string
	Error   string
}

// NewDirs builds the layout and creates any missing directories.
func NewDirs(importDir, successDir, errorDir string) (*Dirs, error) {
	d := &Dirs{Import: importDir, Success: successDir, Error: errorDir}
	for _, dir := range []string{d.Import, d.Success, d.Error} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return d, nil
}

// ListImportFiles returns the pending .xml files in the import directory,
// sorted by name. Subdirectories and other extensions are skipped.
func (d *Dirs) ListImportFiles() ([]string, error) {
	entries, err := os.ReadDir(d.Import)
	if err != nil {
		return nil, fmt.Errorf("failed to read import directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			continue
		}
		files = append(files, filepath.Join(d.Import, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// MoveToSuccess moves a processed file into the success directory.
func (d *Dirs) MoveToSuccess(path string) error {
	return move(path, d.Success)
}

// MoveToError moves a failed file into the error directory.
func (d *Dirs) MoveToError(path string) error {
	return move(path, d.Error)
}

func move(path, dir string) error {
	dest := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", path, dir, err)
	}
	return nil
}
