package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/barysiuk/mcpdesk/internal/core/tier"
	"github.com/barysiuk/mcpdesk/internal/store"
)

// Identity answers who the user is and what they subscribe to.
type Identity interface {
	CurrentUserID(ctx context.Context) (string, error)
	SubscriptionTier(ctx context.Context) (tier.Tier, error)
	UpdateSubscriptionTier(ctx context.Context, t tier.Tier) error
}

// ProfileStore persists the subscription profile.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*store.Profile, error)
	UpsertProfile(ctx context.Context, p *store.Profile) error
}

// LocalIdentity reads the user from settings and the tier from the local
// profile store. A user without a profile is on the none tier.
type LocalIdentity struct {
	settings *Settings
	profiles ProfileStore
}

// NewLocalIdentity creates an Identity for the settings' user.
func NewLocalIdentity(settings *Settings, profiles ProfileStore) *LocalIdentity {
	return &LocalIdentity{settings: settings, profiles: profiles}
}

func (i *LocalIdentity) CurrentUserID(_ context.Context) (string, error) {
	if i.settings.UserID == "" {
		return "", errors.New("no user configured")
	}
	return i.settings.UserID, nil
}

func (i *LocalIdentity) SubscriptionTier(ctx context.Context) (tier.Tier, error) {
	userID, err := i.CurrentUserID(ctx)
	if err != nil {
		return tier.None, err
	}
	p, err := i.profiles.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return tier.None, nil
	}
	if err != nil {
		return tier.None, fmt.Errorf("reading subscription: %w", err)
	}
	return tier.Resolve(p.Tier), nil
}

func (i *LocalIdentity) UpdateSubscriptionTier(ctx context.Context, t tier.Tier) error {
	userID, err := i.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	p := &store.Profile{UserID: userID, Email: i.settings.Email, Tier: string(t)}
	if err := i.profiles.UpsertProfile(ctx, p); err != nil {
		return fmt.Errorf("updating subscription: %w", err)
	}
	return nil
}
