package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveStorageDirCreatesCandidate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	got, err := ResolveStorageDir(dir)
	if err != nil {
		t.Fatalf("ResolveStorageDir: %v", err)
	}
	if got != dir {
		t.Errorf("got %q, want %q", got, dir)
	}
	if info, err := os.Stat(got); err != nil || !info.IsDir() {
		t.Errorf("storage dir not created: %v", err)
	}
}

func TestResolveStorageDirEmptyFallsBackToUserDataDir(t *testing.T) {
	got, err := ResolveStorageDir("")
	if err != nil {
		t.Fatalf("ResolveStorageDir: %v", err)
	}
	if filepath.Base(got) != "aurora" {
		t.Errorf("got %q, want a path ending in aurora", got)
	}
}

func TestIsWritableDetectsWritableDir(t *testing.T) {
	dir := t.TempDir()
	if !isWritable(dir) {
		t.Error("expected temp dir to be writable")
	}
}

func TestFirstWritableAncestorFindsParent(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	dir, ok := firstWritableAncestor(nested)
	if !ok {
		t.Fatal("expected a writable ancestor")
	}
	if !isWritable(dir) {
		t.Errorf("returned ancestor %q is not writable", dir)
	}
}

func TestConfigFilePathAndSessionDBPathDiffer(t *testing.T) {
	cfgPath, err := ConfigFilePath()
	if err != nil {
		t.Fatalf("ConfigFilePath: %v", err)
	}
	dbPath, err := SessionDBPath()
	if err != nil {
		t.Fatalf("SessionDBPath: %v", err)
	}
	if cfgPath == dbPath {
		t.Errorf("expected distinct paths, got %q for both", cfgPath)
	}
	if filepath.Base(cfgPath) != "config.json" {
		t.Errorf("ConfigFilePath = %q, want basename config.json", cfgPath)
	}
	if filepath.Base(dbPath) != "sessions.db" {
		t.Errorf("SessionDBPath = %q, want basename sessions.db", dbPath)
	}
}
