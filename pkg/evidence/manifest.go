package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// ManifestFile is the name of the manifest inside a run directory.
const ManifestFile = "manifest.json"

// ManifestSchema identifies the manifest format.
const ManifestSchema = "genui.evidence.v1"

// Manifest lists the sha256 of every file in a run directory.
type Manifest struct {
	Schema string            `json:"schema"`
	RunID  string            `json:"run_id"`
	Hashes map[string]string `json:"hashes"`
}

// Files returns the manifest paths in sorted order.
func (m *Manifest) Files() []string {
	files := make([]string, 0, len(m.Hashes))
	for rel := range m.Hashes {
		files = append(files, rel)
	}
	sort.Strings(files)
	return files
}

// Verify reads the manifest of runDir and checks every listed file against
// its recorded hash.
func Verify(fs afero.Fs, runDir string) (*Manifest, error) {
	if runDir == "" {
		return nil, fmt.Errorf("run directory is required")
	}

	data, err := afero.ReadFile(fs, filepath.Join(runDir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Schema != ManifestSchema {
		return nil, fmt.Errorf("unknown manifest schema: %q", m.Schema)
	}
	if _, ok := m.Hashes["run.json"]; !ok {
		return nil, fmt.Errorf("manifest does not cover run.json")
	}

	for _, rel := range m.Files() {
		path, err := safeJoin(runDir, rel)
		if err != nil {
			return nil, fmt.Errorf("invalid manifest path %q: %w", rel, err)
		}
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("missing evidence file %s: %w", rel, err)
		}
		if hashBytes(content) != m.Hashes[rel] {
			return nil, fmt.Errorf("hash mismatch for %s", rel)
		}
	}

	return &m, nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// safeJoin joins a manifest-relative path onto root, rejecting absolute
// paths and traversal.
func safeJoin(root, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty path")
	}
	normalized := filepath.FromSlash(rel)
	if filepath.IsAbs(normalized) {
		return "", fmt.Errorf("absolute path not allowed")
	}
	for _, seg := range strings.Split(normalized, string(filepath.Separator)) {
		if seg == ".." {
			return "", fmt.Errorf("path traversal detected")
		}
	}
	clean := filepath.Clean(normalized)
	if clean == "." {
		return "", fmt.Errorf("invalid path")
	}
	return filepath.Join(root, clean), nil
}
