package pipeline

import (
	"os"

	"github.com/zen-systems/genui/pkg/adapter"
)

// Built-in model defaults.
const (
	DefaultDesignModel = "gemini-2.5-flash"
	DefaultUIModel     = "claude-3-5-sonnet-latest"
)

// ModelsConfig selects the models for both stages.
type ModelsConfig struct {
	DesignModel adapter.Config `json:"designModel" yaml:"design_model"`
	UIModel     adapter.Config `json:"uiModel" yaml:"ui_model"`
}

// DefaultModelsConfig returns the built-in models with credentials taken
// from GOOGLE_API_KEY and ANTHROPIC_API_KEY.
func DefaultModelsConfig() ModelsConfig {
	return ModelsConfig{
		DesignModel: adapter.Config{APIKey: os.Getenv("GOOGLE_API_KEY"), Model: DefaultDesignModel},
		UIModel:     adapter.Config{APIKey: os.Getenv("ANTHROPIC_API_KEY"), Model: DefaultUIModel},
	}
}

// Merge returns m with every non-empty field of override applied.
func (m ModelsConfig) Merge(override *ModelsConfig) ModelsConfig {
	if override == nil {
		return m
	}
	return ModelsConfig{
		DesignModel: mergeConfig(m.DesignModel, override.DesignModel),
		UIModel:     mergeConfig(m.UIModel, override.UIModel),
	}
}

func mergeConfig(base, override adapter.Config) adapter.Config {
	if override.APIKey != "" {
		base.APIKey = override.APIKey
	}
	if override.Model != "" {
		base.Model = override.Model
	}
	return base
}

// Params are the inputs of one generation run.
type Params struct {
	Content      string        `json:"content"`
	Design       string        `json:"design,omitempty"`
	ModelsConfig *ModelsConfig `json:"modelsConfig,omitempty"`
}
