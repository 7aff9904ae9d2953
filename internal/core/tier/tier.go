// Package tier maps raw subscription values to the simplified tiers that gate
// which services and how many models a user may select.
package tier

import "strings"

// Tier is a simplified subscription level.
type Tier string

const (
	None     Tier = "none"
	Basic    Tier = "basic"
	Complete Tier = "complete"
)

// aliases maps every recognized raw value to its tier. Anything else resolves
// to None so an unexpected value can never grant access.
var aliases = map[string]Tier{
	"":         None,
	"none":     None,
	"free":     None,
	"basic":    Basic,
	"starter":  Basic,
	"standard": Basic,
	"complete": Complete,
}

// Resolve maps a raw tier value (as stored by the identity provider) to a Tier.
// Matching is case-insensitive and ignores surrounding whitespace.
func Resolve(raw string) Tier {
	if t, ok := aliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t
	}
	return None
}

// All returns the tiers in ascending order.
func All() []Tier {
	return []Tier{None, Basic, Complete}
}

// IsPaid reports whether the tier unlocks subscription-gated services.
func (t Tier) IsPaid() bool {
	return t == Basic || t == Complete
}

// Allows reports whether a service with the given gating flag may be enabled.
func (t Tier) Allows(requiresSubscription bool) bool {
	return !requiresSubscription || t.IsPaid()
}

func (t Tier) String() string { return string(t) }
