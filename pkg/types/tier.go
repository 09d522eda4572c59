package types

import (
	"strings"

	"github.com/devcraft/storekeep/pkg/errors"
)

// Tier is the aggressiveness level of a cleaning run.
type Tier string

const (
	// TierSmart removes only rows matching the narrow restriction patterns.
	TierSmart Tier = "smart"

	// TierDeep removes rows matching the broad category patterns, honouring
	// protected patterns when protection is enabled.
	TierDeep Tier = "deep"

	// TierComplete removes the store files themselves and resets the ledger.
	TierComplete Tier = "complete"
)

// AllTiers lists the tiers from least to most destructive.
var AllTiers = []Tier{TierSmart, TierDeep, TierComplete}

// ParseTier converts user input into a Tier.
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierSmart:
		return TierSmart, nil
	case TierDeep:
		return TierDeep, nil
	case TierComplete:
		return TierComplete, nil
	}
	return "", errors.Newf(errors.ErrInvalidTier, "unknown cleaning tier %q (want smart, deep or complete)", s).
		WithDetail("tier", s)
}

// Severity orders tiers by destructiveness. Unknown tiers sort first.
func (t Tier) Severity() int {
	for i, tier := range AllTiers {
		if tier == t {
			return i + 1
		}
	}
	return 0
}

// IsSelective reports whether the tier deletes individual rows rather than
// whole stores.
func (t Tier) IsSelective() bool {
	return t == TierSmart || t == TierDeep
}

func (t Tier) String() string {
	return string(t)
}
