package service

import "strconv"

const (
	ParamResultsCount      = "resultsCount"
	ParamSafeSearch        = "safeSearch"
	ParamUseTrustedSources = "useTrustedSources"
)

// Bounds for resultsCount.
const (
	MinResultsCount     = 1
	MaxResultsCount     = 10
	DefaultResultsCount = 5
)

// WebSearchService lets Claude Desktop query the web.
type WebSearchService struct {
	BaseService
}

// NewWebSearchService creates the Web Search service definition.
func NewWebSearchService() *WebSearchService {
	return &WebSearchService{BaseService{
		id:          WebSearch,
		displayName: "Web Search",
		pkg:         "@anthropic-ai/mcp-web-search",
		defaults: Params{
			ParamResultsCount:      DefaultResultsCount,
			ParamSafeSearch:        true,
			ParamUseTrustedSources: false,
		},
	}}
}

func (s *WebSearchService) IsValid(p Params) bool {
	return p.Int(ParamResultsCount, DefaultResultsCount) > 0
}

func (s *WebSearchService) Check(p Params) []string {
	n := p.Int(ParamResultsCount, DefaultResultsCount)
	if n < MinResultsCount || n > MaxResultsCount {
		return []string{"Web Search results count must be between 1 and 10."}
	}
	return nil
}

// Export emits the search server. useTrustedSources is reserved and not passed on.
func (s *WebSearchService) Export(p Params, _ ModelParamsFunc) []Entry {
	return []Entry{{
		Key:     string(s.id),
		Command: "npx",
		Args: []string{
			s.pkg,
			"--results-count", strconv.Itoa(p.Int(ParamResultsCount, DefaultResultsCount)),
			"--safe-search", strconv.FormatBool(p.Bool(ParamSafeSearch, true)),
		},
	}}
}

// --- Editor ---

// SetResultsCount stores n clamped to [MinResultsCount, MaxResultsCount].
func SetResultsCount(p Params, n int) Params {
	if n < MinResultsCount {
		n = MinResultsCount
	}
	if n > MaxResultsCount {
		n = MaxResultsCount
	}
	return p.With(ParamResultsCount, n)
}

// SetSafeSearch toggles safe search filtering.
func SetSafeSearch(p Params, on bool) Params {
	return p.With(ParamSafeSearch, on)
}

// SetTrustedSources stores the trusted-sources flag.
func SetTrustedSources(p Params, on bool) Params {
	return p.With(ParamUseTrustedSources, on)
}
