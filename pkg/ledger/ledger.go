package ledger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/logging"
	"github.com/devcraft/storekeep/pkg/types"
	"github.com/rs/zerolog"
)

// Ledger is the in-memory view of the ledger file.
type Ledger struct {
	mu            sync.Mutex
	fs            types.FS
	path          string
	configVersion string
	state         State
	now           func() time.Time
	logger        zerolog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithConfigVersion sets the version written into fresh and reset ledgers.
func WithConfigVersion(v string) Option {
	return func(l *Ledger) {
		if v != "" {
			l.configVersion = v
		}
	}
}

// Load reads the ledger at path. It never fails: a missing or unparseable
// file yields the default state.
func Load(fs types.FS, path string, opts ...Option) *Ledger {
	l := &Ledger{
		fs:            fs,
		path:          path,
		configVersion: DefaultConfigVersion,
		now:           time.Now,
		logger:        logging.GetLogger("ledger"),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.state = l.read()
	return l
}

func (l *Ledger) read() State {
	state := Defaults(l.configVersion)

	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug().Str("path", l.path).Msg("No ledger yet, starting from defaults")
		} else {
			l.logger.Warn().Err(errors.Wrap(err, errors.ErrLedgerIO, "cannot read ledger")).
				Str("path", l.path).Msg("Using default ledger state")
		}
		return state
	}

	// Unmarshal over the defaults so keys missing from the file keep them.
	if err := json.Unmarshal(data, &state); err != nil {
		l.logger.Warn().Err(errors.Wrap(err, errors.ErrLedgerIO, "cannot parse ledger")).
			Str("path", l.path).Msg("Using default ledger state")
		return Defaults(l.configVersion)
	}
	if state.InstalledComponents == nil {
		state.InstalledComponents = map[string]bool{}
	}
	if state.ConfigVersion == "" {
		state.ConfigVersion = l.configVersion
	}
	return state
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// State returns a copy of the current document.
func (l *Ledger) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

// Save writes the current document. Failures are logged and returned, but
// callers are free to ignore them: a lost ledger only causes repeated work.
func (l *Ledger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saveLocked()
}

func (l *Ledger) saveLocked() error {
	err := l.write()
	if err != nil {
		l.logger.Error().Err(err).Str("path", l.path).Msg("Failed to save ledger")
	}
	return err
}

func (l *Ledger) write() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(l.state); err != nil {
		return errors.Wrap(err, errors.ErrLedgerIO, "cannot encode ledger")
	}

	if dir := filepath.Dir(l.path); dir != "." && dir != "" {
		if err := l.fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrLedgerIO, "cannot create %s", dir)
		}
	}

	tmp := l.path + ".tmp"
	if err := l.fs.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrLedgerIO, "cannot write %s", tmp)
	}
	if err := l.fs.Rename(tmp, l.path); err != nil {
		_ = l.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrLedgerIO, "cannot replace %s", l.path)
	}
	return nil
}

// update applies fn under the lock and persists the result.
func (l *Ledger) update(fn func(s *State)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(&l.state)
	_ = l.saveLocked()
}

// MarkComponentInstalled records that a setup component completed.
func (l *Ledger) MarkComponentInstalled(name string) {
	l.update(func(s *State) {
		s.InstalledComponents[name] = true
	})
	l.logger.Debug().Str("component", name).Msg("Component marked installed")
}

// IsComponentInstalled reports whether a setup component completed before.
func (l *Ledger) IsComponentInstalled(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.InstalledComponents[name]
}

// InstalledComponents returns the sorted names of installed components.
func (l *Ledger) InstalledComponents() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var names []string
	for name, ok := range l.state.InstalledComponents {
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// MarkInitialized records that the full first-run sequence completed.
func (l *Ledger) MarkInitialized() {
	now := l.now()
	l.update(func(s *State) {
		s.Initialized = true
		s.LastConfigTime = &now
	})
}

// IsInitialized reports whether first-run setup completed.
func (l *Ledger) IsInitialized() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Initialized
}

// MarkCleaned records that tier ran now.
func (l *Ledger) MarkCleaned(tier types.Tier) {
	now := l.now()
	l.update(func(s *State) {
		s.LastCleanTime = &now
		switch tier {
		case types.TierSmart:
			s.LastSmartClean = &now
		case types.TierDeep:
			s.LastDeepClean = &now
		case types.TierComplete:
			s.LastCompleteClean = &now
		}
	})
}

// ProtectionEnabled reports whether protected patterns are honoured.
func (l *Ledger) ProtectionEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.ProtectionEnabled
}

// SetProtection turns protected-pattern handling on or off.
func (l *Ledger) SetProtection(enabled bool) {
	l.update(func(s *State) {
		s.ProtectionEnabled = enabled
	})
}

// Reset returns the ledger to its defaults. Only the complete tier and an
// explicit reset request call this.
func (l *Ledger) Reset() {
	l.update(func(s *State) {
		*s = Defaults(l.configVersion)
	})
	l.logger.Info().Str("path", l.path).Msg("Ledger reset to defaults")
}
