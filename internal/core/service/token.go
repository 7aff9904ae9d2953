package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// TokenResult is the outcome of a token check. Advisory results come from a
// local heuristic and must not block saving the service.
type TokenResult struct {
	Valid    bool
	Advisory bool
	Username string
	Message  string
}

// TokenValidator checks a Hugging Face API token.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (TokenResult, error)
}

// DefaultTokenPrefix is the prefix issued Hugging Face tokens carry.
const DefaultTokenPrefix = "hf_"

// PrefixTokenValidator accepts tokens with a known prefix and minimum length.
// It never contacts Hugging Face, so its results are advisory.
type PrefixTokenValidator struct {
	Prefix    string
	MinLength int
}

// NewPrefixTokenValidator returns the hf_ / 8-character heuristic.
func NewPrefixTokenValidator() PrefixTokenValidator {
	return PrefixTokenValidator{Prefix: DefaultTokenPrefix, MinLength: MinTokenLength}
}

func (v PrefixTokenValidator) Validate(ctx context.Context, token string) (TokenResult, error) {
	if err := ctx.Err(); err != nil {
		return TokenResult{}, err
	}
	token = strings.TrimSpace(token)
	switch {
	case token == "":
		return TokenResult{Advisory: true, Message: "Token is required"}, nil
	case len(token) < v.MinLength:
		return TokenResult{Advisory: true, Message: "Invalid token format"}, nil
	case !strings.HasPrefix(token, v.Prefix):
		return TokenResult{Advisory: true, Message: fmt.Sprintf("Hugging Face tokens typically start with %q", v.Prefix)}, nil
	}
	return TokenResult{Valid: true, Advisory: true, Message: "Token format looks valid (not verified with Hugging Face)"}, nil
}

// DefaultHuggingFaceURL is the API host used by HTTPTokenValidator.
const DefaultHuggingFaceURL = "https://huggingface.co"

// HTTPTokenValidator verifies tokens against the Hugging Face whoami endpoint.
type HTTPTokenValidator struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPTokenValidator creates a validator with a bounded HTTP timeout.
func NewHTTPTokenValidator(baseURL string) *HTTPTokenValidator {
	if baseURL == "" {
		baseURL = DefaultHuggingFaceURL
	}
	return &HTTPTokenValidator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *HTTPTokenValidator) Validate(ctx context.Context, token string) (TokenResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return TokenResult{Message: "Token is required"}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.BaseURL+"/api/whoami-v2", nil)
	if err != nil {
		return TokenResult{}, fmt.Errorf("building whoami request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.Client.Do(req)
	if err != nil {
		return TokenResult{}, fmt.Errorf("calling whoami: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return TokenResult{}, fmt.Errorf("decoding whoami response: %w", err)
		}
		return TokenResult{Valid: true, Username: body.Name, Message: "Token verified"}, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return TokenResult{Message: "Invalid token"}, nil
	default:
		return TokenResult{}, fmt.Errorf("whoami returned HTTP %d", resp.StatusCode)
	}
}

// CachingTokenValidator memoizes definitive results of another validator.
// Tokens are keyed by their SHA-256 so raw values never sit in the cache.
type CachingTokenValidator struct {
	next  TokenValidator
	cache *cache.Cache
}

// NewCachingTokenValidator wraps next with a TTL cache.
func NewCachingTokenValidator(next TokenValidator, ttl time.Duration) *CachingTokenValidator {
	return &CachingTokenValidator{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (v *CachingTokenValidator) Validate(ctx context.Context, token string) (TokenResult, error) {
	key := tokenKey(token)
	if cached, ok := v.cache.Get(key); ok {
		return cached.(TokenResult), nil
	}

	res, err := v.next.Validate(ctx, token)
	if err != nil {
		return res, err
	}
	v.cache.SetDefault(key, res)
	return res, nil
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}
