package evidence

import (
	"context"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/zen-systems/genui/pkg/adapter"
	"github.com/zen-systems/genui/pkg/pipeline"
)

func recordRun(t *testing.T, fs afero.Fs) string {
	t.Helper()

	orch := newOrchestrator(adapter.NewMockClient())
	res := orch.Generate(context.Background(), pipeline.Params{Content: "Welcome"})
	if !res.Success {
		t.Fatalf("generate failed: %s", res.Error)
	}

	dir, err := Record(fs, "/evidence", Run{
		Mode:    pipeline.ModeStandard,
		Content: "Welcome",
		Models:  orch.Defaults(),
		Result:  res,
		Context: orch.ExecutionContext(),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return dir
}

func writeManifest(t *testing.T, fs afero.Fs, dir string, m Manifest) {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, ManifestFile), data, 0600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestVerifyRecordedRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := recordRun(t, fs)

	m, err := Verify(fs, dir)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if m.RunID != filepath.Base(dir) {
		t.Fatalf("run id = %q", m.RunID)
	}
	want := []string{
		"run.json",
		"stages/design-analysis.json",
		"stages/ui-generation.json",
		"ui.json",
	}
	if got := m.Files(); !slices.Equal(got, want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := recordRun(t, fs)

	if err := afero.WriteFile(fs, filepath.Join(dir, "ui.json"), []byte(`{"root":{}}`), 0600); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	_, err := Verify(fs, dir)
	if err == nil || err.Error() != "hash mismatch for ui.json" {
		t.Fatalf("expected hash mismatch, got %v", err)
	}
}

func TestVerifyDetectsMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := recordRun(t, fs)

	if err := fs.Remove(filepath.Join(dir, "stages", "ui-generation.json")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	_, err := Verify(fs, dir)
	if err == nil || !strings.Contains(err.Error(), "missing evidence file stages/ui-generation.json") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestVerifyRejectsBadManifests(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := recordRun(t, fs)
	runHash := "0000000000000000000000000000000000000000000000000000000000000000"

	cases := map[string]Manifest{
		"unknown manifest schema": {Schema: "other", Hashes: map[string]string{"run.json": runHash}},
		"does not cover run.json": {Schema: ManifestSchema, Hashes: map[string]string{}},
		"path traversal detected": {Schema: ManifestSchema, Hashes: map[string]string{"run.json": runHash, "../x": runHash}},
		"absolute path":           {Schema: ManifestSchema, Hashes: map[string]string{"run.json": runHash, "/etc/passwd": runHash}},
	}
	for want, m := range cases {
		writeManifest(t, fs, dir, m)
		_, err := Verify(fs, dir)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("%s: got %v", want, err)
		}
	}
}

func TestVerifyRequiresManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := Verify(fs, "/evidence/none"); err == nil {
		t.Fatalf("expected error for missing manifest")
	}
	if _, err := Verify(fs, ""); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}
