package provision

import (
	"sort"

	"github.com/devcraft/storekeep/pkg/backup"
	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/ledger"
	"github.com/devcraft/storekeep/pkg/logging"
	"github.com/devcraft/storekeep/pkg/types"
	"github.com/rs/zerolog"
)

// StepCleaning names the cleaning pass in reports. It is not a ledger component.
const StepCleaning = "smart_clean"

// StepStatus is the outcome of one setup step.
type StepStatus string

const (
	StepInstalled StepStatus = "installed"
	StepSkipped   StepStatus = "skipped"
	StepFailed    StepStatus = "failed"
)

// Cleaner runs a cleaning tier.
type Cleaner interface {
	Clean(tier types.Tier, protection bool) *types.CleanResult
}

// Resolver supplies the target application's locations.
type Resolver interface {
	Resolve() types.Locations
}

// Step reports one setup step.
type Step struct {
	Name    string     `json:"name" yaml:"name"`
	Status  StepStatus `json:"status" yaml:"status"`
	Changed []string   `json:"changed,omitempty" yaml:"changed,omitempty"`
	Err     error      `json:"-" yaml:"-"`
	Error   string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the result of a setup run.
type Report struct {
	Steps       []Step             `json:"steps" yaml:"steps"`
	Clean       *types.CleanResult `json:"clean,omitempty" yaml:"clean,omitempty"`
	Initialized bool               `json:"initialized" yaml:"initialized"`
}

// Failed reports whether any step failed.
func (r *Report) Failed() bool {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return true
		}
	}
	return false
}

// Settings are the values setup applies.
type Settings struct {
	Environment map[string]string
	Overrides   map[string]interface{}
}

// Options tune a setup run.
type Options struct {
	// Force re-runs components the ledger already records
	Force bool
}

// Provisioner runs the setup sequence.
type Provisioner struct {
	ledger   *ledger.Ledger
	env      EnvironmentConfigurer
	cleaner  Cleaner
	resolver Resolver
	fs       types.FS
	backups  *backup.Manager
	settings Settings
	logger   zerolog.Logger
}

// New creates a Provisioner.
func New(l *ledger.Ledger, env EnvironmentConfigurer, cleaner Cleaner, resolver Resolver, fs types.FS, backups *backup.Manager, settings Settings) *Provisioner {
	return &Provisioner{
		ledger:   l,
		env:      env,
		cleaner:  cleaner,
		resolver: resolver,
		fs:       fs,
		backups:  backups,
		settings: settings,
		logger:   logging.GetLogger("provision"),
	}
}

// Run executes the setup sequence. Every step runs even when an earlier one
// failed; the returned error is a COMPONENT error naming the failed steps.
func (p *Provisioner) Run(opts Options) (*Report, error) {
	done := logging.LogOperationStart(p.logger, "setup")
	defer done()

	report := &Report{}
	loc := p.resolver.Resolve()

	report.Steps = append(report.Steps,
		p.component(ledger.ComponentEnvironment, opts.Force, func() ([]string, error) {
			return sortedKeys(p.settings.Environment), p.env.Apply(p.settings.Environment)
		}),
		p.component(ledger.ComponentSettings, opts.Force, func() ([]string, error) {
			if loc.SettingsFile == "" {
				return nil, errors.New(errors.ErrResolutionGap, "settings file location is unknown")
			}
			return MergeSettings(p.fs, p.backups, loc.SettingsFile, p.settings.Overrides)
		}),
	)

	report.Clean = p.cleaner.Clean(types.TierSmart, p.ledger.ProtectionEnabled())
	cleanStep := Step{Name: StepCleaning, Status: StepInstalled}
	if err := report.Clean.Err(); err != nil {
		cleanStep.Status, cleanStep.Err, cleanStep.Error = StepFailed, err, err.Error()
	}
	report.Steps = append(report.Steps, cleanStep)

	var failed []string
	for _, s := range report.Steps {
		if s.Status == StepFailed {
			failed = append(failed, s.Name)
		}
	}
	if len(failed) > 0 {
		p.logger.Warn().Strs("failed", failed).Msg("Setup incomplete, not marking initialized")
		return report, errors.Newf(errors.ErrComponent, "setup failed: %d step(s) did not complete", len(failed)).
			WithDetail("steps", failed)
	}

	p.ledger.MarkInitialized()
	report.Initialized = true
	p.logger.Info().Msg("Setup complete")
	return report, nil
}

func (p *Provisioner) component(name string, force bool, apply func() ([]string, error)) Step {
	step := Step{Name: name}
	if p.ledger.IsComponentInstalled(name) && !force {
		step.Status = StepSkipped
		p.logger.Debug().Str("component", name).Msg("Already installed, skipping")
		return step
	}

	changed, err := apply()
	if err != nil {
		step.Status, step.Err, step.Error = StepFailed, err, err.Error()
		p.logger.Error().Err(err).Str("component", name).Msg("Component failed")
		return step
	}

	p.ledger.MarkComponentInstalled(name)
	step.Status = StepInstalled
	step.Changed = changed
	p.logger.Info().Str("component", name).Int("changed", len(changed)).Msg("Component installed")
	return step
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
