package ledger

import (
	"time"

	"github.com/devcraft/storekeep/pkg/types"
)

// DefaultConfigVersion is written into fresh ledgers.
const DefaultConfigVersion = "2.1"

// DefaultFileName is the ledger file name, relative to the invocation directory.
const DefaultFileName = "storekeep_state.json"

// Component names recorded by the setup sequence.
const (
	ComponentEnvironment = "environment_vars"
	ComponentSettings    = "app_settings"
)

// State is the persisted ledger document. Field order is the on-disk key order.
type State struct {
	Initialized         bool            `json:"initialized" yaml:"initialized"`
	LastConfigTime      *time.Time      `json:"last_config_time" yaml:"last_config_time"`
	LastCleanTime       *time.Time      `json:"last_clean_time" yaml:"last_clean_time"`
	ConfigVersion       string          `json:"config_version" yaml:"config_version"`
	InstalledComponents map[string]bool `json:"installed_components" yaml:"installed_components"`
	ProtectionEnabled   bool            `json:"protection_enabled" yaml:"protection_enabled"`
	LastSmartClean      *time.Time      `json:"last_smart_clean" yaml:"last_smart_clean"`
	LastDeepClean       *time.Time      `json:"last_deep_clean" yaml:"last_deep_clean"`
	LastCompleteClean   *time.Time      `json:"last_complete_clean" yaml:"last_complete_clean"`
}

// Defaults returns the state of a ledger that has never been written.
func Defaults(configVersion string) State {
	if configVersion == "" {
		configVersion = DefaultConfigVersion
	}
	return State{
		ConfigVersion:       configVersion,
		InstalledComponents: map[string]bool{},
		ProtectionEnabled:   true,
	}
}

// LastClean returns when tier last ran, or nil.
func (s State) LastClean(tier types.Tier) *time.Time {
	switch tier {
	case types.TierSmart:
		return s.LastSmartClean
	case types.TierDeep:
		return s.LastDeepClean
	case types.TierComplete:
		return s.LastCompleteClean
	}
	return nil
}

func (s State) clone() State {
	out := s
	out.InstalledComponents = make(map[string]bool, len(s.InstalledComponents))
	for k, v := range s.InstalledComponents {
		out.InstalledComponents[k] = v
	}
	out.LastConfigTime = cloneTime(s.LastConfigTime)
	out.LastCleanTime = cloneTime(s.LastCleanTime)
	out.LastSmartClean = cloneTime(s.LastSmartClean)
	out.LastDeepClean = cloneTime(s.LastDeepClean)
	out.LastCompleteClean = cloneTime(s.LastCompleteClean)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
