package adapter

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// ProviderSpec describes one provider variant: its allow-list and how to
// construct a client for one of its models.
type ProviderSpec struct {
	Name   string
	Models []string
	New    func(cfg Config) (Client, error)
}

// Factory validates model configurations against the registered provider
// allow-lists and builds clients. A Factory is safe for concurrent use.
type Factory struct {
	mu        sync.RWMutex
	providers []ProviderSpec
}

// NewFactory creates a factory with the given providers.
func NewFactory(providers ...ProviderSpec) *Factory {
	f := &Factory{}
	for _, p := range providers {
		f.Register(p)
	}
	return f
}

// DefaultFactory returns a factory with every networked provider registered.
func DefaultFactory() *Factory {
	return NewFactory(
		GoogleProvider(),
		AnthropicProvider(),
		OpenAIProvider(),
		DeepSeekProvider(),
	)
}

// Register adds a provider, replacing any provider with the same name.
func (f *Factory) Register(p ProviderSpec) {
	f.mu.Lock()
	defer f.mu.Unlock()

	spec := ProviderSpec{Name: p.Name, Models: append([]string(nil), p.Models...), New: p.New}
	for i, existing := range f.providers {
		if existing.Name == p.Name {
			f.providers[i] = spec
			return
		}
	}
	f.providers = append(f.providers, spec)
}

// Build validates cfg and returns a client for it. No network call is made.
func (f *Factory) Build(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}

	spec, ok := f.lookup(cfg.Model)
	if !ok {
		supported := f.SupportedModels()
		return nil, &UnsupportedModelError{
			Model:      cfg.Model,
			Supported:  supported,
			Suggestion: closestModel(cfg.Model, supported),
		}
	}
	if spec.New == nil {
		return nil, fmt.Errorf("provider %s has no constructor", spec.Name)
	}

	client, err := spec.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", spec.Name, err)
	}
	return client, nil
}

// ProviderFor returns the provider whose allow-list contains model.
func (f *Factory) ProviderFor(model string) (string, bool) {
	spec, ok := f.lookup(model)
	if !ok {
		return "", false
	}
	return spec.Name, true
}

// SupportedModels returns the union of all allow-lists in registration order.
func (f *Factory) SupportedModels() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var models []string
	for _, p := range f.providers {
		models = append(models, p.Models...)
	}
	return models
}

// Providers returns provider metadata sorted by name.
func (f *Factory) Providers() []ProviderInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(f.providers))
	for _, p := range f.providers {
		infos = append(infos, ProviderInfo{Name: p.Name, Models: append([]string(nil), p.Models...)})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func (f *Factory) lookup(model string) (ProviderSpec, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, p := range f.providers {
		for _, m := range p.Models {
			if m == model {
				return p, true
			}
		}
	}
	return ProviderSpec{}, false
}

// closestModel suggests a supported model for likely typos.
func closestModel(model string, supported []string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		return ""
	}

	best := ""
	bestDist := -1
	for _, candidate := range supported {
		d := levenshtein.ComputeDistance(model, candidate)
		if bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if bestDist < 0 || bestDist > len(model)/3 {
		return ""
	}
	return best
}
