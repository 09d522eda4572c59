package patterns

import (
	"github.com/devcraft/storekeep/pkg/types"
)

// MatchAll matches every key.
const MatchAll = "%"

// restriction patterns: login, usage, trial and licence markers only.
var restrictionPatterns = []string{
	"%augment.login%", "%augment.usage%", "%augment.limit%",
	"%augment.auth%", "%augment.trial%", "%augment.subscription%",
	"%usage.count%", "%trial.expired%", "%login.required%",
}

// deep patterns: broad categories.
var deepPatterns = []string{
	"%augment%", "%login%", "%usage%", "%limit%", "%auth%",
	"%trial%", "%subscription%", "%activation%", "%license%",
}

// protected patterns: user-facing product configuration, never licensing state.
var protectedPatterns = []string{
	"%workbench.%", "%editor.%", "%terminal.%",
	"%extensions.%", "%settings.%",
}

// RestrictionPatterns returns the narrow patterns used by the smart tier.
func RestrictionPatterns() []string { return clone(restrictionPatterns) }

// DeepPatterns returns the broad patterns used by the deep tier.
func DeepPatterns() []string { return clone(deepPatterns) }

// ProtectedPatterns returns the patterns exempt from the deep tier when
// protection is enabled.
func ProtectedPatterns() []string { return clone(protectedPatterns) }

// ForTier returns the ordered pattern list for a tier. Unknown tiers get nil.
func ForTier(tier types.Tier) []string {
	switch tier {
	case types.TierSmart:
		return RestrictionPatterns()
	case types.TierDeep:
		return DeepPatterns()
	case types.TierComplete:
		return []string{MatchAll}
	}
	return nil
}

// IsProtected reports whether key matches any protected pattern.
func IsProtected(key string) bool {
	return MatchAny(protectedPatterns, key)
}

// MatchAny reports whether key matches at least one of the patterns.
func MatchAny(patterns []string, key string) bool {
	for _, p := range patterns {
		if Match(p, key) {
			return true
		}
	}
	return false
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Set is the whole catalog.
type Set struct {
	Restriction []string `json:"restriction" yaml:"restriction"`
	Deep        []string `json:"deep" yaml:"deep"`
	Protected   []string `json:"protected" yaml:"protected"`
}

// Catalog returns a copy of every pattern list.
func Catalog() Set {
	return Set{
		Restriction: RestrictionPatterns(),
		Deep:        DeepPatterns(),
		Protected:   ProtectedPatterns(),
	}
}

// Verdict describes how the catalog treats one key.
type Verdict struct {
	Key       string `json:"key" yaml:"key"`
	Smart     bool   `json:"smart" yaml:"smart"`
	Deep      bool   `json:"deep" yaml:"deep"`
	Protected bool   `json:"protected" yaml:"protected"`
}

// Classify reports which pattern lists match key. Protection is applied per
// pattern and per store, so a protected key with Deep set may still be
// deleted when no protected pattern overlaps the deep pattern in its store.
func Classify(key string) Verdict {
	return Verdict{
		Key:       key,
		Smart:     MatchAny(restrictionPatterns, key),
		Deep:      MatchAny(deepPatterns, key),
		Protected: IsProtected(key),
	}
}
