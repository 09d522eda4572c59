package provision

import (
	"os"
	"sort"

	"github.com/devcraft/storekeep/pkg/errors"
)

// EnvironmentConfigurer applies environment variables for the target
// application. Persistent per-OS mechanisms (registry, shell profiles) are
// provided by other implementations.
type EnvironmentConfigurer interface {
	Apply(vars map[string]string) error
}

// ProcessEnvironment sets variables in the current process only, so they
// reach anything storekeep launches.
type ProcessEnvironment struct {
	setenv func(key, value string) error
}

// NewProcessEnvironment returns a configurer backed by os.Setenv.
func NewProcessEnvironment() *ProcessEnvironment {
	return &ProcessEnvironment{setenv: os.Setenv}
}

// Apply sets every variable, in key order. It stops at the first failure.
func (p *ProcessEnvironment) Apply(vars map[string]string) error {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := p.setenv(k, vars[k]); err != nil {
			return errors.Wrapf(err, errors.ErrComponent, "cannot set %s", k).WithDetail("variable", k)
		}
	}
	return nil
}
