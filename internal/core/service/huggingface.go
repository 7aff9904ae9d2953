package service

import (
	"fmt"
	"strings"

	"github.com/barysiuk/mcpdesk/internal/core/catalog"
	"github.com/barysiuk/mcpdesk/internal/core/tier"
)

const (
	ParamToken          = "token"
	ParamSelectedModels = "selectedModels"
)

const (
	// MinTokenLength is the shortest token the editor accepts.
	MinTokenLength = 8

	// TokenEnvVar is the environment variable the exported server reads.
	TokenEnvVar = "HF_TOKEN"

	// TokenPlaceholder is written to exports instead of the token value.
	TokenPlaceholder = "ENV:" + TokenEnvVar
)

// HuggingFaceService runs Hugging Face models through Claude Desktop.
// It requires a paid tier.
type HuggingFaceService struct {
	BaseService
}

// NewHuggingFaceService creates the Hugging Face service definition.
func NewHuggingFaceService() *HuggingFaceService {
	return &HuggingFaceService{BaseService{
		id:                   HuggingFace,
		displayName:          "Hugging Face",
		pkg:                  "@anthropic-ai/mcp-huggingface",
		requiresSubscription: true,
		defaults: Params{
			ParamToken:          "",
			ParamSelectedModels: []string{},
		},
	}}
}

func (s *HuggingFaceService) IsValid(p Params) bool {
	return len(p.String(ParamToken)) >= MinTokenLength && len(p.Strings(ParamSelectedModels)) > 0
}

func (s *HuggingFaceService) Check(p Params) []string {
	var problems []string
	token := p.String(ParamToken)
	switch {
	case token == "":
		problems = append(problems, "Hugging Face API token is required.")
	case len(token) < MinTokenLength:
		problems = append(problems, "Hugging Face API token must be at least 8 characters.")
	}
	if len(p.Strings(ParamSelectedModels)) == 0 {
		problems = append(problems, "At least one Hugging Face model must be selected.")
	}
	return problems
}

// Export emits one entry per selected model: the first under the service ID,
// the rest as huggingFace_<modelID>. The token is always the env placeholder;
// model params are appended in key order with any token key dropped.
func (s *HuggingFaceService) Export(p Params, models ModelParamsFunc) []Entry {
	selected := p.Strings(ParamSelectedModels)
	entries := make([]Entry, 0, len(selected))

	for i, modelID := range selected {
		key := string(s.id)
		if i > 0 {
			key = string(s.id) + "_" + modelID
		}

		args := []string{s.pkg, "--model", modelID, "--token", TokenPlaceholder}
		if models != nil {
			mp := models(modelID)
			for _, k := range mp.SortedKeys() {
				if strings.EqualFold(k, ParamToken) {
					continue
				}
				args = append(args, "--"+k, FormatValue(mp[k]))
			}
		}

		entries = append(entries, Entry{Key: key, Command: "npx", Args: args})
	}
	return entries
}

// --- Editor ---

// SetToken stores the API token with surrounding whitespace removed.
func SetToken(p Params, token string) Params {
	return p.With(ParamToken, strings.TrimSpace(token))
}

// SelectedModels returns the selected model IDs in selection order.
func SelectedModels(p Params) []string {
	return p.Strings(ParamSelectedModels)
}

// ToggleModel selects or deselects modelID. Selecting is refused with a
// *TierLimitError once the tier's limit is reached, and with ErrUnknownModel
// for IDs outside the catalog. Deselecting always succeeds.
func ToggleModel(p Params, modelID string, t tier.Tier) (Params, error) {
	selected := p.Strings(ParamSelectedModels)
	for i, id := range selected {
		if id == modelID {
			kept := append(selected[:i:i], selected[i+1:]...)
			return p.With(ParamSelectedModels, kept), nil
		}
	}

	if _, ok := catalog.ByID(modelID); !ok {
		return p, fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
	}
	limit := catalog.MaxSelectable(t)
	if len(selected) >= limit {
		return p, &TierLimitError{Tier: t, Limit: limit}
	}
	return p.With(ParamSelectedModels, append(selected, modelID)), nil
}

// TrimModels keeps at most limit selected models and returns the dropped IDs.
func TrimModels(p Params, limit int) (Params, []string) {
	selected := p.Strings(ParamSelectedModels)
	if limit < 0 {
		limit = 0
	}
	if len(selected) <= limit {
		return p, nil
	}
	dropped := append([]string{}, selected[limit:]...)
	return p.With(ParamSelectedModels, selected[:limit]), dropped
}
