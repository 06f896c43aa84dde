package mmfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMapReadsContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.usdc")
	payload := []byte("PXR-USDC test payload")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	data, unmap, err := Map(path)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("contents mismatch: %q", data)
	}
	if err := unmap(); err != nil {
		t.Fatalf("unmap: %v", err)
	}
	// Double-unmap is a no-op.
	if err := unmap(); err != nil {
		t.Fatalf("second unmap: %v", err)
	}
}

func TestMapEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.usdc")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	data, unmap, err := Map(path)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty, got %d bytes", len(data))
	}
	_ = unmap()
}

func TestMapMissingFile(t *testing.T) {
	_, _, err := Map(filepath.Join(t.TempDir(), "nope.usdc"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
