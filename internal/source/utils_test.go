package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()
	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")
	for _, dir := range []string{baseDir, otherDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	target := filepath.Join(otherDir, "file.view")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := normalizePath(target); got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	baseDir := t.TempDir()
	target := filepath.Join(baseDir, "nested", "file.view")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := "nested/file.view"; got != want {
		t.Fatalf("expected relative path %q, got %q", want, got)
	}
}

func TestNormalizeCRLFKeepsLoneCR(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\rb\r\nc"))
	if !changed || string(out) != "a\rb\nc" {
		t.Fatalf("got %q changed=%v", out, changed)
	}
	out, changed = normalizeCRLF([]byte("plain"))
	if changed || string(out) != "plain" {
		t.Fatalf("fast path changed input")
	}
}
