package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/nhdewitt/netscope/internal/protocol"
)

func sampleReport() protocol.Report {
	ip := "203.0.113.7"
	return protocol.Report{
		ID:          "r1",
		Kind:        protocol.KindPorts,
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		OS:          "linux",
		PublicIP:    &ip,
		Outcomes: []protocol.ProbeOutcome{
			{Target: "127.0.0.1", Port: 8080, Kind: protocol.OutcomePortOpen},
		},
	}
}

func TestFileStore_SaveText(t *testing.T) {
	s := NewFileStore()
	path := filepath.Join(t.TempDir(), "report.txt")
	r := sampleReport()

	if err := s.Save(r, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != r.Text() {
		t.Errorf("saved text mismatch:\n%s\nwant:\n%s", got, r.Text())
	}
}

func TestFileStore_SaveJSON(t *testing.T) {
	s := NewFileStore()
	path := filepath.Join(t.TempDir(), "nested", "report.JSON")
	r := sampleReport()

	if err := s.Save(r, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back protocol.Report
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("saved file is not JSON: %v", err)
	}
	if back.ID != "r1" || len(back.Outcomes) != 1 || back.Outcomes[0].Port != 8080 {
		t.Errorf("unexpected report: %+v", back)
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	s := NewFileStore()
	path := filepath.Join(t.TempDir(), "report.txt")

	if err := os.WriteFile(path, []byte("old contents"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(sampleReport(), path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _ := s.Load(path)
	if strings.Contains(got, "old contents") {
		t.Error("file was not replaced")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestFileStore_ReadOnlyDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions are not enforced the same way on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("skipping: root bypasses permission checks")
	}

	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	s := NewFileStore()
	r := sampleReport()
	before := r.Clone()

	err := s.Save(r, filepath.Join(dir, "report.txt"))
	if !errors.Is(err, protocol.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if !reflect.DeepEqual(r, before) {
		t.Error("report was modified by a failed save")
	}

	// The same report can be retried elsewhere.
	retry := filepath.Join(t.TempDir(), "report.txt")
	if err := s.Save(r, retry); err != nil {
		t.Fatalf("retry Save: %v", err)
	}
}

func TestFileStore_ReadOnlyFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced the same way on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("skipping: root bypasses permission checks")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(path, []byte("old contents"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0o444); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(path, 0o644) })

	err := NewFileStore().Save(sampleReport(), path)
	if !errors.Is(err, protocol.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old contents" {
		t.Errorf("read-only file was replaced: %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o444 {
		t.Errorf("mode changed: got %v, want -r--r--r--", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestFileStore_IOError(t *testing.T) {
	s := NewFileStore()
	dir := t.TempDir()

	// A regular file where a directory is expected.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	err := s.Save(sampleReport(), filepath.Join(blocker, "report.txt"))
	if !errors.Is(err, protocol.ErrIO) {
		t.Errorf("expected io error, got %v", err)
	}
}

func TestFileStore_EmptyPath(t *testing.T) {
	if err := NewFileStore().Save(sampleReport(), " "); !errors.Is(err, protocol.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	_, err := NewFileStore().Load(filepath.Join(t.TempDir(), "absent.txt"))
	if !errors.Is(err, protocol.ErrIO) {
		t.Errorf("expected io error, got %v", err)
	}
}
