package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zen-systems/genui/pkg/adapter"
)

// AliasFile is the alias file looked up in the config directory.
const AliasFile = "models.yaml"

// maxAliasHops bounds alias chains such as "ui" -> "quality" -> model id.
const maxAliasHops = 8

// ModelAliases maps short names such as "fast" or "quality" to model ids.
// Names are matched case-insensitively and may point at other aliases.
type ModelAliases struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LoadAliases reads model aliases from a YAML file.
func LoadAliases(path string) (*ModelAliases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file ModelAliases
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	aliases := &ModelAliases{Aliases: make(map[string]string, len(file.Aliases))}
	aliases.Merge(&file)
	return aliases, nil
}

// LoadAliasesFromDir layers dir/models.yaml over DefaultAliases. Without
// the file the defaults are returned.
func LoadAliasesFromDir(dir string) (*ModelAliases, error) {
	aliases := DefaultAliases()
	if dir == "" {
		return aliases, nil
	}

	path := filepath.Join(dir, AliasFile)
	if _, err := os.Stat(path); err != nil {
		return aliases, nil
	}
	user, err := LoadAliases(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load aliases: %w", err)
	}
	aliases.Merge(user)
	return aliases, nil
}

// Merge copies other's aliases into a, replacing names that already exist.
func (a *ModelAliases) Merge(other *ModelAliases) {
	if other == nil {
		return
	}
	if a.Aliases == nil {
		a.Aliases = make(map[string]string, len(other.Aliases))
	}
	for name, target := range other.Aliases {
		a.Aliases[normalizeAlias(name)] = strings.TrimSpace(target)
	}
}

// Resolve follows aliases until it reaches a name that is not one. Unknown
// names come back unchanged; so does a name whose chain loops.
func (a *ModelAliases) Resolve(modelOrAlias string) string {
	resolved, err := a.resolve(modelOrAlias)
	if err != nil {
		return modelOrAlias
	}
	return resolved
}

func (a *ModelAliases) resolve(name string) (string, error) {
	current := strings.TrimSpace(name)
	if a == nil || len(a.Aliases) == 0 {
		return current, nil
	}

	for hop := 0; hop < maxAliasHops; hop++ {
		target, ok := a.Aliases[normalizeAlias(current)]
		if !ok {
			return current, nil
		}
		current = target
	}
	return "", fmt.Errorf("alias %q does not resolve within %d hops", name, maxAliasHops)
}

// IsAlias reports whether name is a known alias.
func (a *ModelAliases) IsAlias(name string) bool {
	if a == nil {
		return false
	}
	_, ok := a.Aliases[normalizeAlias(name)]
	return ok
}

// ListAliases returns a copy of the alias table.
func (a *ModelAliases) ListAliases() map[string]string {
	if a == nil || a.Aliases == nil {
		return map[string]string{}
	}
	return maps.Clone(a.Aliases)
}

// Names returns the alias names in sorted order.
func (a *ModelAliases) Names() []string {
	if a == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(a.Aliases))
}

// Validate reports every alias that loops or whose final target is not a
// model the factory supports.
func (a *ModelAliases) Validate(f *adapter.Factory) []error {
	if a == nil || f == nil {
		return nil
	}

	var errs []error
	for _, name := range a.Names() {
		model, err := a.resolve(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := f.ProviderFor(model); !ok {
			errs = append(errs, fmt.Errorf("alias %q: model %q is not supported", name, model))
		}
	}
	return errs
}

func normalizeAlias(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DefaultAliases returns the built-in aliases. "design" and "ui" name the
// default model of each stage.
func DefaultAliases() *ModelAliases {
	return &ModelAliases{
		Aliases: map[string]string{
			"fast":     "gemini-2.5-flash",
			"research": "gemini-2.5-pro",
			"quality":  "claude-sonnet-4-20250514",
			"deep":     "claude-opus-4-20250514",
			"haiku":    "claude-3-5-haiku-latest",
			"gpt":      "gpt-4o",
			"cheap":    "deepseek-chat",
			"reason":   "deepseek-reasoner",
			"design":   "fast",
			"ui":       "claude-3-5-sonnet-latest",
		},
	}
}
