package deps

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script fakes need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckBinariesReadsVersion(t *testing.T) {
	tool := writeTool(t, "#!/bin/sh\necho 'ffmpeg version 7.1 Copyright (c) 2000-2024'\necho 'built with gcc'\n")

	statuses := CheckBinaries(context.Background(), []Requirement{FFmpeg(tool)})
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	s := statuses[0]
	if !s.Available || s.Path != tool {
		t.Fatalf("status = %+v", s)
	}
	if s.Version != "ffmpeg version 7.1 Copyright (c) 2000-2024" {
		t.Fatalf("version = %q", s.Version)
	}
}

func TestCheckBinariesMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	statuses := CheckBinaries(context.Background(), []Requirement{
		FFmpeg(missing),
		{Name: "Empty", Command: "  "},
	})

	if statuses[0].Available || !strings.Contains(statuses[0].Detail, "not found") {
		t.Fatalf("status = %+v", statuses[0])
	}
	if statuses[1].Available || statuses[1].Detail != "command not configured" {
		t.Fatalf("status = %+v", statuses[1])
	}
	if !statuses[0].Optional || statuses[1].Optional {
		t.Fatalf("only ffmpeg is optional: %+v", statuses)
	}
}

func TestCheckBinariesVersionFailure(t *testing.T) {
	tool := writeTool(t, "#!/bin/sh\nexit 3\n")
	s := CheckBinaries(context.Background(), []Requirement{FFmpeg(tool)})[0]
	if !s.Available {
		t.Fatal("a binary that exists is still available")
	}
	if s.Version != "" || !strings.Contains(s.Detail, "version check failed") {
		t.Fatalf("status = %+v", s)
	}
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if s := CheckDirectoryAccess("Root", dir); !s.Available {
		t.Fatalf("status = %+v", s)
	}

	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if s := CheckDirectoryAccess("Root", file); s.Available || !strings.Contains(s.Detail, "not a directory") {
		t.Fatalf("status = %+v", s)
	}
	if s := CheckDirectoryAccess("Root", filepath.Join(dir, "missing")); s.Available || !strings.Contains(s.Detail, "does not exist") {
		t.Fatalf("status = %+v", s)
	}
}

func TestCheckDirectoryAccessReadOnly(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if s := CheckDirectoryAccess("Root", dir); s.Available || !strings.Contains(s.Detail, "insufficient permissions") {
		t.Fatalf("status = %+v", s)
	}
}
