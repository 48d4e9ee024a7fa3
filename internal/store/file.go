// Package store persists rendered reports to the filesystem.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nhdewitt/netscope/internal/protocol"
)

// FileStore writes reports as named files. Paths ending in ".json" get the
// JSON form of the report; anything else gets the text rendering.
type FileStore struct{}

func NewFileStore() *FileStore {
	return &FileStore{}
}

// Save writes report to path atomically. The report is not modified.
// Errors wrap protocol.ErrPermissionDenied or protocol.ErrIO.
func (s *FileStore) Save(report protocol.Report, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: report path is empty", protocol.ErrValidation)
	}

	data, err := encode(report, path)
	if err != nil {
		return fmt.Errorf("%w: encoding report: %v", protocol.ErrIO, err)
	}

	if err := checkWritable(path); err != nil {
		return classify(err)
	}
	if err := writeAtomic(path, data); err != nil {
		return classify(err)
	}
	return nil
}

// checkWritable fails when path exists but cannot be opened for writing.
// The rename in writeAtomic would otherwise replace a read-only file.
func checkWritable(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return f.Close()
}

// Load returns the contents of a previously saved report.
func (s *FileStore) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", classify(err)
	}
	return string(data), nil
}

func encode(report protocol.Report, path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
	return []byte(report.Text()), nil
}

func classify(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %v", protocol.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", protocol.ErrIO, err)
}

// writeAtomic writes data to a temp file in the target directory, syncs it,
// then renames it over path. The temp file is removed on failure.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".netscope-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp -> final: %w", err)
	}

	return nil
}
