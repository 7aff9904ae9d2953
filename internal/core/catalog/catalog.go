// Package catalog lists the Hugging Face models a user can attach to the
// huggingFace MCP server, and how many of them each tier may select.
package catalog

import "github.com/barysiuk/mcpdesk/internal/core/tier"

// Popularity is a coarse usage indicator shown next to each model.
type Popularity string

const (
	PopularityHigh   Popularity = "High"
	PopularityMedium Popularity = "Medium"
	PopularityLow    Popularity = "Low"
)

// Model describes a selectable model. Configurations reference models by ID.
type Model struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Type        string     `json:"type" yaml:"type"`
	Popularity  Popularity `json:"popularity" yaml:"popularity"`
}

var models = []Model{
	{ID: "flux-1-dev-infer", Name: "Flux.1-dev", Description: "High-quality image generation model", Type: "Image Generation", Popularity: PopularityHigh},
	{ID: "whisper-large-v3-turbo", Name: "Whisper Large V3 Turbo", Description: "State-of-the-art speech recognition and transcription", Type: "Audio Transcription", Popularity: PopularityHigh},
	{ID: "qwen2-72b-instruct", Name: "Qwen2-72B-Instruct", Description: "Large language model for text generation and understanding", Type: "Language Model", Popularity: PopularityMedium},
	{ID: "shuttle-3-1-aesthetic", Name: "Shuttle 3.1 Aesthetic", Description: "Artistic image generation with aesthetic optimization", Type: "Image Generation", Popularity: PopularityMedium},
	{ID: "llama3-70b-instruct", Name: "Llama3-70B-Instruct", Description: "Open-source large language model for instructions", Type: "Language Model", Popularity: PopularityHigh},
	{ID: "musicgen-large", Name: "MusicGen Large", Description: "Generate high-quality music from text prompts", Type: "Audio Generation", Popularity: PopularityMedium},
	{ID: "deepseek-coder-33b", Name: "DeepSeek Coder 33B", Description: "Specialized model for code generation and understanding", Type: "Code Generation", Popularity: PopularityMedium},
	{ID: "sdxl-turbo", Name: "SDXL Turbo", Description: "Fast real-time image generation", Type: "Image Generation", Popularity: PopularityHigh},
	{ID: "videocrafter-2", Name: "VideoCrafter 2", Description: "Generate short videos from text descriptions", Type: "Video Generation", Popularity: PopularityLow},
	{ID: "stable-cascade", Name: "Stable Cascade", Description: "Advanced diffusion model for detailed image generation", Type: "Image Generation", Popularity: PopularityMedium},
}

// maxSelectable is the number of models each tier may select at once.
var maxSelectable = map[tier.Tier]int{
	tier.None:     0,
	tier.Basic:    3,
	tier.Complete: 10,
}

// Models returns a copy of the catalog in display order.
func Models() []Model {
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// ByID looks up a model by its ID.
func ByID(id string) (Model, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// MaxSelectable returns how many models the tier may select simultaneously.
// Unknown tiers get zero.
func MaxSelectable(t tier.Tier) int {
	return maxSelectable[t]
}
