// Package service defines the MCP integrations a configuration can enable
// (File System, Web Search, Hugging Face), their default parameters, the
// editors that change those parameters, and how each one is rendered into the
// Claude Desktop mcpServers document.
//
// Services are self-contained Go values registered in a package-level
// catalogue, the same way new integrations are added: implement Service and
// call Register from an init function.
package service

import (
	"errors"
	"fmt"
	"strings"
)

// ID identifies a service. It doubles as the mcpServers key in exports.
type ID string

const (
	FileSystem  ID = "fileSystem"
	WebSearch   ID = "webSearch"
	HuggingFace ID = "huggingFace"
)

// ErrUnknownService is returned when an ID is not registered.
var ErrUnknownService = errors.New("unknown service")

// Config is the per-configuration state of one service.
// Configured implies Enabled.
type Config struct {
	ID                   ID     `json:"id" yaml:"id"`
	Enabled              bool   `json:"enabled" yaml:"enabled"`
	Configured           bool   `json:"configured" yaml:"configured"`
	RequiresSubscription bool   `json:"requiresSubscription" yaml:"requiresSubscription"`
	Params               Params `json:"params" yaml:"params"`
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.Params = c.Params.Clone()
	return &out
}

// Entry is one rendered mcpServers entry.
type Entry struct {
	Key     string
	Command string
	Args    []string
}

// ModelParamsFunc returns the effective parameters for a model ID.
type ModelParamsFunc func(modelID string) Params

// Service describes one integration.
type Service interface {
	ID() ID
	DisplayName() string
	Package() string // npm package launched by Claude Desktop
	RequiresSubscription() bool

	// Defaults returns a fresh copy of the default parameters.
	Defaults() Params

	// IsValid is the editor's save predicate.
	IsValid(p Params) bool

	// Check returns human-readable problems with the parameters. It is run
	// by the validator even when the service was previously saved.
	Check(p Params) []string

	// Export renders the service into one or more mcpServers entries.
	Export(p Params, models ModelParamsFunc) []Entry
}

// --- Registry ---

var services []Service

// Register adds a service to the catalogue. Registering an ID twice panics.
func Register(s Service) {
	for _, existing := range services {
		if existing.ID() == s.ID() {
			panic(fmt.Sprintf("service %q registered twice", s.ID()))
		}
	}
	services = append(services, s)
}

// All returns the registered services in registration order.
func All() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

// ByID returns the registered service with the given ID.
func ByID(id ID) (Service, bool) {
	for _, s := range services {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

// MustByID is ByID for callers that have already validated the ID.
func MustByID(id ID) Service {
	s, ok := ByID(id)
	if !ok {
		panic(fmt.Sprintf("service %q is not registered", id))
	}
	return s
}

// ParseID resolves a user-supplied service name. Matching is exact on the ID
// first, then case-insensitive.
func ParseID(name string) (ID, error) {
	for _, s := range services {
		if string(s.ID()) == name {
			return s.ID(), nil
		}
	}
	for _, s := range services {
		if strings.EqualFold(string(s.ID()), name) {
			return s.ID(), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownService, name)
}

// Defaults returns the default Config for every registered service.
func Defaults() []Config {
	out := make([]Config, 0, len(services))
	for _, s := range services {
		out = append(out, DefaultConfig(s))
	}
	return out
}

// DefaultConfig returns a disabled, unconfigured Config for s.
func DefaultConfig(s Service) Config {
	return Config{
		ID:                   s.ID(),
		RequiresSubscription: s.RequiresSubscription(),
		Params:               s.Defaults(),
	}
}

func init() {
	Register(NewFileSystemService())
	Register(NewWebSearchService())
	Register(NewHuggingFaceService())
}

// --- BaseService ---

// BaseService carries the static description shared by all services.
type BaseService struct {
	id                   ID
	displayName          string
	pkg                  string
	requiresSubscription bool
	defaults             Params
}

func (b *BaseService) ID() ID                     { return b.id }
func (b *BaseService) DisplayName() string        { return b.displayName }
func (b *BaseService) Package() string            { return b.pkg }
func (b *BaseService) RequiresSubscription() bool { return b.requiresSubscription }
func (b *BaseService) Defaults() Params           { return b.defaults.Clone() }
