package planrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestIsTerraformDir(t *testing.T) {
	dir := t.TempDir()
	if IsTerraformDir(dir) {
		t.Fatalf("empty directory should not be a terraform dir")
	}
	if err := os.WriteFile(filepath.Join(dir, "main.tf"), []byte("# empty"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsTerraformDir(dir) {
		t.Fatalf("directory with main.tf should be a terraform dir")
	}
}

func TestRunRejectsNonTerraformDir(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(context.Background(), Options{Dir: dir})
	var notDir *NotATerraformDirError
	if !isType(err, &notDir) {
		t.Fatalf("expected NotATerraformDirError, got %v", err)
	}
}

func TestRunUsesCache(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.tf"), []byte("# empty"), 0o644); err != nil {
		t.Fatal(err)
	}
	want := `{"format_version":"1.2"}`
	if err := os.WriteFile(filepath.Join(dir, CachedPlanFilename), []byte(want), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Run(context.Background(), Options{Dir: dir, UseCache: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRunMissingBinary(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.tf"), []byte("# empty"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Run(context.Background(), Options{Dir: dir, Binary: "tf2tosca-nonexistent-binary"})
	var notFound *BinaryNotFoundError
	if !isType(err, &notFound) {
		t.Fatalf("expected BinaryNotFoundError, got %v", err)
	}
}

func TestClearCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, CachedPlanFilename)
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ClearCache(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected cache file to be removed")
	}
	// Clearing an already-absent cache is not an error.
	if err := ClearCache(dir); err != nil {
		t.Fatalf("unexpected error clearing missing cache: %v", err)
	}
}

// isType reports whether err can be assigned into *target via a type
// assertion, mirroring errors.As without pulling in the errors package
// for a single-frame check.
func isType[T error](err error, target *T) bool {
	v, ok := err.(T)
	if ok {
		*target = v
	}
	return ok
}
