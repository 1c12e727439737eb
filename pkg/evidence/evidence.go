package evidence

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// RunRecord captures run-level metadata.
type RunRecord struct {
	ID              string            `json:"id"`
	Timestamp       time.Time         `json:"timestamp"`
	Mode            string            `json:"mode"`
	InputHash       string            `json:"input_hash"`
	DesignModel     string            `json:"design_model"`
	UIModel         string            `json:"ui_model"`
	Success         bool              `json:"success"`
	Error           string            `json:"error,omitempty"`
	ExecutionMillis int64             `json:"execution_ms"`
	FinalPhase      string            `json:"final_phase"`
	ToolVersions    map[string]string `json:"tool_versions,omitempty"`
}

// StageRecord captures evidence for a single stage.
type StageRecord struct {
	Name         string    `json:"name"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	PromptHash   string    `json:"prompt_hash,omitempty"`
	Output       string    `json:"output,omitempty"`
	OutputHash   string    `json:"output_hash,omitempty"`
	OutputLength int       `json:"output_length"`
	CreatedAt    time.Time `json:"created_at"`
}

// Writer writes evidence bundles to a filesystem. It remembers the hash of
// every file it writes for the manifest.
type Writer struct {
	fs     afero.Fs
	runDir string
	runID  string
	hashes map[string]string
}

// NewWriter creates a new evidence writer rooted at baseDir/runID.
func NewWriter(fs afero.Fs, baseDir, runID string) (*Writer, error) {
	if fs == nil {
		return nil, fmt.Errorf("filesystem is required")
	}
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if runID == "" {
		return nil, fmt.Errorf("run ID is required")
	}

	runDir := filepath.Join(baseDir, runID)
	if err := fs.MkdirAll(filepath.Join(runDir, "stages"), 0700); err != nil {
		return nil, err
	}

	return &Writer{fs: fs, runDir: runDir, runID: runID, hashes: make(map[string]string)}, nil
}

// RunDir returns the run directory path.
func (w *Writer) RunDir() string {
	return w.runDir
}

// WriteRun writes run metadata to run.json.
func (w *Writer) WriteRun(record RunRecord) error {
	return w.writeJSON("run.json", record)
}

// WriteStage writes a stage record to stages/<stage>.json.
func (w *Writer) WriteStage(record StageRecord) error {
	if record.Name == "" {
		return fmt.Errorf("stage name is required")
	}
	return w.writeJSON(filepath.Join("stages", record.Name+".json"), record)
}

// WriteUI writes the generated UI document to ui.json.
func (w *Writer) WriteUI(doc json.Marshaler) error {
	return w.writeJSON("ui.json", doc)
}

// WriteManifest writes manifest.json listing every file written so far.
func (w *Writer) WriteManifest() error {
	hashes := make(map[string]string, len(w.hashes))
	for rel, sum := range w.hashes {
		hashes[rel] = sum
	}
	return w.writeJSON(ManifestFile, Manifest{Schema: ManifestSchema, RunID: w.runID, Hashes: hashes})
}

func (w *Writer) writeJSON(rel string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	if err := afero.WriteFile(w.fs, filepath.Join(w.runDir, rel), data, 0600); err != nil {
		return err
	}
	if rel != ManifestFile {
		w.hashes[filepath.ToSlash(rel)] = hashBytes(data)
	}
	return nil
}
