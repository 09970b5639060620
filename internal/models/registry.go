// Package models holds the static model registry: display metadata, credit
// costs, API key sources, capability flags and the strategy each model
// dispatches to.
package models

import (
	"sort"
	"strings"
)

// Type is the kind of output a model produces.
type Type string

const (
	TypeImage   Type = "image"
	TypeVideo   Type = "video"
	TypeBoth    Type = "both"
	TypeUtility Type = "utility"
)

// StrategyKey names an image generation strategy implementation. The set is
// closed; the image provider client switches over every value.
type StrategyKey string

const (
	StrategyNone             StrategyKey = ""
	StrategyDalle            StrategyKey = "dalle"
	StrategyFireworksSDXL    StrategyKey = "fireworksSDXL"
	StrategyPlaygroundV2     StrategyKey = "playgroundV2"
	StrategyPlaygroundV25    StrategyKey = "playgroundV25"
	StrategyFireworksKontext StrategyKey = "fireworksKontext"
	StrategyStability        StrategyKey = "stability"
	StrategyIdeogram         StrategyKey = "ideogram"
	StrategyReplicate        StrategyKey = "replicate"
)

// StrategyKeys lists every dispatchable key.
func StrategyKeys() []StrategyKey {
	return []StrategyKey{
		StrategyDalle,
		StrategyFireworksSDXL,
		StrategyPlaygroundV2,
		StrategyPlaygroundV25,
		StrategyFireworksKontext,
		StrategyStability,
		StrategyIdeogram,
		StrategyReplicate,
	}
}

// Credits resolves a model's cost: the value of EnvKey when set and
// numeric, otherwise Fallback.
type Credits struct {
	EnvKey   string `json:"-"`
	Fallback int    `json:"fallback"`
}

// APIKey names where a model's secret comes from: EnvKey for the
// platform-funded key, FormDataKey for the field carrying a user's own key.
type APIKey struct {
	EnvKey      string `json:"-"`
	FormDataKey string `json:"formDataKey"`
}

type Capabilities struct {
	ImageUpload    bool `json:"imageUpload"`
	AspectRatio    bool `json:"aspectRatio"`
	NegativePrompt bool `json:"negativePrompt"`
	Audio          bool `json:"audio"`
	AnimationType  bool `json:"animationType"`
	MaxImages      int  `json:"maxImages"`
}

// Config is one registry entry.
type Config struct {
	ID           int          `json:"id"`
	Value        string       `json:"value"`
	Label        string       `json:"label"`
	Type         Type         `json:"type"`
	Credits      Credits      `json:"credits"`
	APIKey       APIKey       `json:"apiKey"`
	Capabilities Capabilities `json:"capabilities"`
	StrategyKey  StrategyKey  `json:"-"`
}

// Dispatchable reports whether the entry points at an image strategy.
func (c Config) Dispatchable() bool {
	return c.StrategyKey != StrategyNone
}

// Model identifiers handled outside the strategy table.
const (
	ModelDID      = "d-id"
	ModelRunwayML = "runway-ml"
	ModelDalle    = "dall-e"
	ModelChatGPT  = "chatgpt"
)

var registry = map[string]Config{
	ModelDalle: {
		ID: 1, Value: ModelDalle, Label: "DALL-E (OpenAI)", Type: TypeImage,
		Credits:      Credits{EnvKey: "CREDITS_PER_DALL_E_IMAGE", Fallback: 4},
		APIKey:       APIKey{EnvKey: "OPENAI_API_KEY", FormDataKey: "openAPIKey"},
		Capabilities: Capabilities{ImageUpload: true, MaxImages: 1},
		StrategyKey:  StrategyDalle,
	},
	"stable-diffusion-xl": {
		ID: 2, Value: "stable-diffusion-xl", Label: "Stable Diffusion XL (Fireworks)", Type: TypeImage,
		Credits:      Credits{EnvKey: "CREDITS_PER_FIREWORKS_IMAGE", Fallback: 4},
		APIKey:       APIKey{EnvKey: "FIREWORKS_API_KEY", FormDataKey: "fireworksAPIKey"},
		Capabilities: Capabilities{ImageUpload: true, MaxImages: 1},
		StrategyKey:  StrategyFireworksSDXL,
	},
	"playground-v2": {
		ID: 3, Value: "playground-v2", Label: "Playground V2", Type: TypeImage,
		Credits:      Credits{EnvKey: "CREDITS_PER_PLAYGROUND_IMAGE", Fallback: 4},
		APIKey:       APIKey{EnvKey: "FIREWORKS_API_KEY", FormDataKey: "fireworksAPIKey"},
		Capabilities: Capabilities{ImageUpload: true, MaxImages: 1},
		StrategyKey:  StrategyPlaygroundV2,
	},
	"playground-v2-5": {
		ID: 4, Value: "playground-v2-5", Label: "Playground V2.5", Type: TypeImage,
		Credits:      Credits{EnvKey: "CREDITS_PER_PLAYGROUND_IMAGE", Fallback: 4},
		APIKey:       APIKey{EnvKey: "FIREWORKS_API_KEY", FormDataKey: "fireworksAPIKey"},
		Capabilities: Capabilities{ImageUpload: true, MaxImages: 1},
		StrategyKey:  StrategyPlaygroundV25,
	},
	"flux-kontext": {
		ID: 5, Value: "flux-kontext", Label: "Flux Kontext Pro (Fireworks)", Type: TypeImage,
		Credits:      Credits{EnvKey: "CREDITS_PER_FLUX_KONTEXT_IMAGE", Fallback: 6},
		APIKey:       APIKey{EnvKey: "FIREWORKS_API_KEY", FormDataKey: "fireworksAPIKey"},
		Capabilities: Capabilities{ImageUpload: true, AspectRatio: true, MaxImages: 1},
		StrategyKey:  StrategyFireworksKontext,
	},
	"stability-sd3-turbo": {
		ID: 6, Value: "stability-sd3-turbo", Label: "Stability SD3 Turbo", Type: TypeImage,
		Credits:      Credits{EnvKey: "CREDITS_PER_STABILITY_IMAGE", Fallback: 4},
		APIKey:       APIKey{EnvKey: "STABILITY_API_KEY", FormDataKey: "stabilityAPIKey"},
		Capabilities: Capabilities{ImageUpload: true, AspectRatio: true, MaxImages: 1},
		StrategyKey:  StrategyStability,
	},
	"ideogram": {
		ID: 7, Value: "ideogram", Label: "Ideogram", Type: TypeImage,
		Credits:      Credits{EnvKey: "CREDITS_PER_IDEOGRAM_IMAGE", Fallback: 6},
		APIKey:       APIKey{EnvKey: "IDEOGRAM_API_KEY", FormDataKey: "ideogramAPIKey"},
		Capabilities: Capabilities{ImageUpload: true, AspectRatio: true, NegativePrompt: true, MaxImages: 1},
		StrategyKey:  StrategyIdeogram,
	},
	"flux-schnell": {
		ID: 8, Value: "flux-schnell", Label: "Flux Schnell (Replicate)", Type: TypeImage,
		Credits:      Credits{EnvKey: "CREDITS_PER_REPLICATE_IMAGE", Fallback: 4},
		APIKey:       APIKey{EnvKey: "REPLICATE_API_KEY", FormDataKey: "replicateAPIKey"},
		Capabilities: Capabilities{AspectRatio: true},
		StrategyKey:  StrategyReplicate,
	},
	ModelDID: {
		ID: 9, Value: ModelDID, Label: "D-ID Talking Avatar", Type: TypeVideo,
		Credits:      Credits{EnvKey: "CREDITS_PER_DID_VIDEO", Fallback: 10},
		APIKey:       APIKey{EnvKey: "DID_API_KEY", FormDataKey: "didAPIKey"},
		Capabilities: Capabilities{Audio: true, AnimationType: true},
	},
	ModelRunwayML: {
		ID: 10, Value: ModelRunwayML, Label: "RunwayML Gen-3", Type: TypeVideo,
		Credits:      Credits{EnvKey: "CREDITS_PER_RUNWAY_VIDEO", Fallback: 10},
		APIKey:       APIKey{EnvKey: "RUNWAY_ML_API_KEY", FormDataKey: "runwayAPIKey"},
		Capabilities: Capabilities{AnimationType: true},
	},
	ModelChatGPT: {
		ID: 11, Value: ModelChatGPT, Label: "ChatGPT prompt helper", Type: TypeUtility,
		Credits: Credits{EnvKey: "CREDITS_PER_CHATGPT", Fallback: 1},
		APIKey:  APIKey{EnvKey: "OPENAI_API_KEY", FormDataKey: "openAPIKey"},
	},
}

// Lookup returns the entry for model. Unknown names report false.
func Lookup(model string) (Config, bool) {
	cfg, ok := registry[strings.TrimSpace(model)]
	return cfg, ok
}

// All returns every entry ordered by ID.
func All() []Config {
	out := make([]Config, 0, len(registry))
	for _, cfg := range registry {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByType returns entries producing t, ordered by ID. Entries of TypeBoth
// match both image and video.
func ByType(t Type) []Config {
	var out []Config
	for _, cfg := range All() {
		if cfg.Type == t || (cfg.Type == TypeBoth && (t == TypeImage || t == TypeVideo)) {
			out = append(out, cfg)
		}
	}
	return out
}

// IsVideo reports whether model is handled by the video orchestrator.
func IsVideo(model string) bool {
	cfg, ok := Lookup(model)
	return ok && (cfg.Type == TypeVideo || cfg.Type == TypeBoth) && !cfg.Dispatchable()
}
