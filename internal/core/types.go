// Package core implements the MCP configuration wizard: the configuration
// model, the step machine, validation, export to the Claude Desktop
// mcpServers document and the deploy pipeline. It has zero UI dependencies
// and is independently testable.
package core

import (
	"fmt"
	"time"

	"github.com/barysiuk/mcpdesk/internal/core/catalog"
	"github.com/barysiuk/mcpdesk/internal/core/service"
)

// Status is the lifecycle state of a configuration.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusDeployed Status = "deployed"
	StatusFailed   Status = "failed"
)

// ModelConfig holds per-model overrides for a selected Hugging Face model.
type ModelConfig struct {
	ID         string         `json:"id" yaml:"id"`
	Name       string         `json:"name" yaml:"name"`
	Enabled    bool           `json:"enabled" yaml:"enabled"`
	Configured bool           `json:"configured" yaml:"configured"`
	Params     service.Params `json:"params" yaml:"params"`
}

// Configuration is one user's wizard state.
type Configuration struct {
	ID           string                         `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string                         `json:"name" yaml:"name"`
	UserID       string                         `json:"userId" yaml:"userId"`
	Status       Status                         `json:"status" yaml:"status"`
	CreatedAt    time.Time                      `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt    time.Time                      `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	Services     map[service.ID]*service.Config `json:"services" yaml:"services"`
	Models       []ModelConfig                  `json:"models" yaml:"models"`
	GlobalParams service.Params                 `json:"globalParams" yaml:"globalParams"`
}

// DefaultGlobalParams returns the model parameters every configuration starts with.
func DefaultGlobalParams() service.Params {
	return service.Params{
		"temperature": 0.7,
		"max_tokens":  100,
		"top_p":       0.9,
	}
}

// DefaultName is used when a configuration is created without a name.
func DefaultName(now time.Time) string {
	return "Configuration " + now.Format("2006-01-02")
}

// NewConfiguration returns a draft with every registered service disabled.
func NewConfiguration(userID, name string) *Configuration {
	if name == "" {
		name = DefaultName(time.Now())
	}
	cfg := &Configuration{
		Name:         name,
		UserID:       userID,
		Status:       StatusDraft,
		Services:     make(map[service.ID]*service.Config),
		Models:       []ModelConfig{},
		GlobalParams: DefaultGlobalParams(),
	}
	for _, sc := range service.Defaults() {
		sc := sc
		cfg.Services[sc.ID] = &sc
	}
	return cfg
}

// Service returns the state of one service, or nil if it is not registered.
func (c *Configuration) Service(id service.ID) *service.Config {
	return c.Services[id]
}

// EnabledServices returns enabled service IDs in registry order.
func (c *Configuration) EnabledServices() []service.ID {
	var ids []service.ID
	for _, s := range service.All() {
		if sc := c.Services[s.ID()]; sc != nil && sc.Enabled {
			ids = append(ids, s.ID())
		}
	}
	return ids
}

// UnconfiguredServices returns enabled services not yet configured, in registry order.
func (c *Configuration) UnconfiguredServices() []service.ID {
	var ids []service.ID
	for _, id := range c.EnabledServices() {
		if !c.Services[id].Configured {
			ids = append(ids, id)
		}
	}
	return ids
}

// Model returns the per-model overrides for id.
func (c *Configuration) Model(id string) (*ModelConfig, bool) {
	for i := range c.Models {
		if c.Models[i].ID == id {
			return &c.Models[i], true
		}
	}
	return nil, false
}

// EffectiveModelParams returns the global params overlaid with the model's own.
func (c *Configuration) EffectiveModelParams(id string) service.Params {
	p := c.GlobalParams.Clone()
	if m, ok := c.Model(id); ok {
		p = p.Merge(m.Params)
	}
	return p
}

// Normalize repairs a configuration loaded from storage: every registered
// service is present with its defaults filled in, unknown services are
// dropped, RequiresSubscription comes from the registry, Configured implies
// Enabled and Models mirrors the Hugging Face selection.
func (c *Configuration) Normalize() {
	if c.Services == nil {
		c.Services = make(map[service.ID]*service.Config)
	}
	for id := range c.Services {
		if _, ok := service.ByID(id); !ok {
			delete(c.Services, id)
		}
	}
	for _, s := range service.All() {
		sc := c.Services[s.ID()]
		if sc == nil {
			def := service.DefaultConfig(s)
			c.Services[s.ID()] = &def
			continue
		}
		sc.ID = s.ID()
		sc.RequiresSubscription = s.RequiresSubscription()
		sc.Params = s.Defaults().Merge(sc.Params)
		if !sc.Enabled {
			sc.Configured = false
		}
	}
	if c.GlobalParams == nil {
		c.GlobalParams = DefaultGlobalParams()
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}
	c.syncModels()
}

// syncModels keeps one ModelConfig per selected model, in selection order,
// preserving existing overrides.
func (c *Configuration) syncModels() {
	var selected []string
	if hf := c.Services[service.HuggingFace]; hf != nil {
		selected = service.SelectedModels(hf.Params)
	}

	models := make([]ModelConfig, 0, len(selected))
	for _, id := range selected {
		if m, ok := c.Model(id); ok {
			models = append(models, *m)
			continue
		}
		name := id
		if d, ok := catalog.ByID(id); ok {
			name = d.Name
		}
		models = append(models, ModelConfig{
			ID:         id,
			Name:       name,
			Enabled:    true,
			Configured: true,
			Params:     service.Params{},
		})
	}
	c.Models = models
}

// CheckInvariants reports the first structural problem with the configuration.
func (c *Configuration) CheckInvariants() error {
	for _, s := range service.All() {
		sc := c.Services[s.ID()]
		if sc == nil {
			return fmt.Errorf("service %s is missing", s.ID())
		}
		if sc.Configured && !sc.Enabled {
			return fmt.Errorf("service %s is configured but not enabled", s.ID())
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Configuration) Clone() *Configuration {
	out := *c
	out.Services = make(map[service.ID]*service.Config, len(c.Services))
	for id, sc := range c.Services {
		out.Services[id] = sc.Clone()
	}
	out.Models = make([]ModelConfig, len(c.Models))
	for i, m := range c.Models {
		m.Params = m.Params.Clone()
		out.Models[i] = m
	}
	out.GlobalParams = c.GlobalParams.Clone()
	return &out
}

// Redacted returns a deep copy with the Hugging Face token removed.
func (c *Configuration) Redacted() *Configuration {
	out := c.Clone()
	if hf := out.Services[service.HuggingFace]; hf != nil && hf.Params.String(service.ParamToken) != "" {
		hf.Params = hf.Params.With(service.ParamToken, "")
	}
	return out
}

// RestoreToken puts back a token removed by Redacted. It leaves the status
// and the Configured flag alone and does nothing when a token is present.
func (c *Configuration) RestoreToken(token string) {
	hf := c.Services[service.HuggingFace]
	if hf == nil || token == "" || hf.Params.String(service.ParamToken) != "" {
		return
	}
	hf.Params = service.SetToken(hf.Params, token)
}
