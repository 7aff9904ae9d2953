// Package store persists deployed and draft configurations and the local
// subscription profile.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Record statuses mirror the wizard's configuration status.
const (
	StatusDraft    = "draft"
	StatusDeployed = "deployed"
	StatusFailed   = "failed"
)

// Record is one stored configuration.
type Record struct {
	ID        string
	UserID    string
	Name      string
	Status    string
	Document  string // rendered mcpServers JSON, empty for drafts never exported
	Draft     string // full configuration as JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile holds the locally known subscription for a user.
type Profile struct {
	UserID    string
	Email     string
	Tier      string // raw tier name, resolved by the caller
	UpdatedAt time.Time
}

// Store is the persistence surface used by the deploy pipeline and identity.
type Store interface {
	// SaveConfiguration inserts rec, or replaces the record with the same ID.
	// An empty ID is filled with a new UUID.
	SaveConfiguration(ctx context.Context, rec *Record) error

	// UpdateConfiguration replaces an existing record. Returns ErrNotFound if
	// there is no record with rec.ID for rec.UserID.
	UpdateConfiguration(ctx context.Context, rec *Record) error

	GetConfiguration(ctx context.Context, userID, id string) (*Record, error)

	// ListConfigurations returns the user's records, most recently updated first.
	ListConfigurations(ctx context.Context, userID string) ([]*Record, error)

	DeleteConfiguration(ctx context.Context, userID, id string) error

	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpsertProfile(ctx context.Context, p *Profile) error

	Close() error
}
