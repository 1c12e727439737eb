package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadContentPrefersArgument(t *testing.T) {
	got, err := readContent([]string{"  from arg  "}, "ignored", strings.NewReader("stdin"))
	if err != nil {
		t.Fatalf("readContent: %v", err)
	}
	if got != "from arg" {
		t.Fatalf("content = %q", got)
	}
}

func TestReadContentFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.md")
	if err := os.WriteFile(path, []byte("# Pricing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := readContent(nil, path, strings.NewReader("stdin"))
	if err != nil {
		t.Fatalf("readContent: %v", err)
	}
	if got != "# Pricing" {
		t.Fatalf("content = %q", got)
	}
}

func TestReadContentFromStdin(t *testing.T) {
	got, err := readContent(nil, "", strings.NewReader("piped\n"))
	if err != nil {
		t.Fatalf("readContent: %v", err)
	}
	if got != "piped" {
		t.Fatalf("content = %q", got)
	}
}

func TestReadContentRejectsEmpty(t *testing.T) {
	if _, err := readContent(nil, "", strings.NewReader("   ")); err == nil {
		t.Fatal("expected error for empty content")
	}
	if _, err := readContent(nil, filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMockModels(t *testing.T) {
	mockFlag = true
	t.Cleanup(func() { mockFlag = false })

	a := &app{}
	models := a.models("ignored", "")
	if models.DesignModel.Model != mockModel || models.UIModel.Model != mockModel {
		t.Fatalf("models = %+v", models)
	}
	if models.DesignModel.APIKey == "" {
		t.Fatal("mock models need a placeholder credential")
	}
}
