package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Artifact represents an immutable output from a single model call.
type Artifact struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Prompt     string    `json:"-"`
	PromptHash string    `json:"prompt_hash"`
	CreatedAt  time.Time `json:"created_at"`
	Hash       string    `json:"hash"`
}

// New creates a new Artifact with computed hashes.
func New(content, provider, model, prompt string) *Artifact {
	a := &Artifact{
		ID:         uuid.NewString(),
		Content:    content,
		Provider:   provider,
		Model:      model,
		Prompt:     prompt,
		PromptHash: HashString(prompt),
		CreatedAt:  time.Now().UTC(),
	}
	a.Hash = a.computeHash()
	return a
}

// WithContent returns a copy of the artifact carrying different content,
// e.g. after trimming. The content hash is recomputed.
func (a *Artifact) WithContent(content string) *Artifact {
	if a == nil {
		return nil
	}
	next := *a
	next.Content = content
	next.Hash = next.computeHash()
	return &next
}

// Clone returns a copy of the artifact.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func (a *Artifact) computeHash() string {
	h := sha256.New()
	h.Write([]byte(a.Content))
	h.Write([]byte(a.Provider))
	h.Write([]byte(a.Model))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// HashString returns the hex SHA-256 of value.
func HashString(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:])
}
