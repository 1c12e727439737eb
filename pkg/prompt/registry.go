package prompt

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

// ID names an embedded prompt template.
type ID string

const (
	DesignAnalysisV1 ID = "design_analysis_v1"
	GenUIV1          ID = "gen_ui_v1"
)

// Registry loads and caches the embedded prompt templates. Templates use
// FString slots ({name}); literal braces are written doubled.
type Registry struct {
	mu    sync.RWMutex
	cache map[ID]einoprompt.ChatTemplate
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[ID]einoprompt.ChatTemplate),
	}
}

// ChatTemplate returns the parsed template for id.
func (r *Registry) ChatTemplate(id ID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	path, err := resolvePromptFile(id)
	if err != nil {
		return nil, err
	}
	text, err := readEmbeddedText(path)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(schema.FString, schema.UserMessage(text))
	r.cache[id] = tpl
	return tpl, nil
}

// Render substitutes vars into the template and returns the prompt text.
func (r *Registry) Render(ctx context.Context, id ID, vars map[string]any) (string, error) {
	tpl, err := r.ChatTemplate(id)
	if err != nil {
		return "", err
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("render prompt %s: %w", id, err)
	}

	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m != nil {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func resolvePromptFile(id ID) (string, error) {
	switch id {
	case DesignAnalysisV1:
		return "templates/design_analysis_v1.txt", nil
	case GenUIV1:
		return "templates/gen_ui_v1.txt", nil
	default:
		return "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
