package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mustHash(t *testing.T, dir string) string {
	t.Helper()
	h, err := hashDirectory(dir)
	if err != nil {
		t.Fatalf("hashDirectory: %v", err)
	}
	return h
}

func TestHashDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "package main")
	writeFile(t, filepath.Join(dir, "sub", "Dockerfile"), "FROM scratch")

	first := mustHash(t, dir)
	if first != mustHash(t, dir) {
		t.Fatal("hash is not stable")
	}

	writeFile(t, filepath.Join(dir, "main_test.go"), "package main")
	if got := mustHash(t, dir); got != first {
		t.Fatal("test files changed the hash")
	}

	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")
	changed := mustHash(t, dir)
	if changed == first {
		t.Fatal("content change did not change the hash")
	}

	if err := os.Rename(filepath.Join(dir, "sub", "Dockerfile"), filepath.Join(dir, "sub", "Containerfile")); err != nil {
		t.Fatal(err)
	}
	if mustHash(t, dir) == changed {
		t.Fatal("rename did not change the hash")
	}
}

func TestHashDirectoryMissing(t *testing.T) {
	if _, err := hashDirectory(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestHashSourcesTracksModuleFiles(t *testing.T) {
	root := t.TempDir()
	app := filepath.Join(root, "app")
	goMod := filepath.Join(root, "go.mod")
	goSum := filepath.Join(root, "go.sum")
	writeFile(t, filepath.Join(app, "main.go"), "package main")
	writeFile(t, goMod, "module example\n")

	hashOf := func() string {
		t.Helper()
		h, err := hashSources(app, goMod, goSum)
		if err != nil {
			t.Fatalf("hashSources: %v", err)
		}
		return h
	}

	dirOnly, err := hashSources(app)
	if err != nil {
		t.Fatalf("hashSources: %v", err)
	}
	withoutSum := hashOf()
	if withoutSum == dirOnly {
		t.Fatal("go.mod was not folded into the hash")
	}

	writeFile(t, goSum, "example v1.0.0 h1:abc=\n")
	withSum := hashOf()
	if withSum == withoutSum {
		t.Fatal("adding go.sum did not change the hash")
	}

	writeFile(t, goSum, "example v1.0.1 h1:def=\n")
	if hashOf() == withSum {
		t.Fatal("dependency bump did not change the hash")
	}
}
