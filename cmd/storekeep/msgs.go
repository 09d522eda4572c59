package storekeep

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Clean an editor's key-value state stores"
	MsgCleanShort      = "Clean the state stores with a tier: smart, deep or complete"
	MsgStatusShort     = "Show setup, cleaning and store status"
	MsgSetupShort      = "Run first-time setup"
	MsgResetShort      = "Reset the ledger to its defaults"
	MsgRestoreShort    = "Restore stores from their backups"
	MsgLedgerShort     = "Inspect or change the ledger"
	MsgLedgerShowShort = "Print the ledger"
	MsgProtectShort    = "Turn protection of editor configuration keys on or off"
	MsgPathsShort      = "Print the resolved application locations"
	MsgConfigShort     = "Inspect the configuration"
	MsgConfigShowShort = "Print the effective configuration as TOML"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgPatternsShort   = "List the pattern catalog or classify keys against it"

	// Status messages
	MsgResetDone        = "Ledger reset: %s"
	MsgProtectionFormat = "Protection %s"
	MsgConfigSource     = "# loaded from %s\n"
	MsgConfigDefaults   = "# built-in defaults\n"
	MsgVersionFormat    = "storekeep version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrLoadConfig  = "failed to load configuration: %w"
	MsgErrStyles      = "failed to load styles: %w"
	MsgErrProtectArg  = "expected on or off, got %q"
	MsgErrFormatFlag  = "invalid --format: %w"
	MsgErrWorkingDir  = "cannot determine working directory: %w"
	MsgErrNoCommand   = "no command specified"
	MsgErrResetFailed = "failed to write ledger: %w"
	MsgErrTopics      = "Help topics unavailable"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig    = "Config file (default ./storekeep.toml or $XDG_CONFIG_HOME/storekeep/config.toml)"
	MsgFlagFormat    = "Output format: auto, term, text, json or yaml"
	MsgFlagSet       = "Override a config key for this run (key=value, repeatable)"
	MsgFlagDryRun    = "Count what would be deleted without changing anything"
	MsgFlagProtect   = "Skip deep patterns that overlap editor configuration keys"
	MsgFlagNoProtect = "Let deep patterns delete editor configuration keys"
	MsgFlagJSON      = "Shorthand for --format json"
	MsgFlagForce     = "Re-run setup components the ledger already records"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/clean-long.txt
	msgCleanLongRaw string
	MsgCleanLong    = strings.TrimSpace(msgCleanLongRaw)

	//go:embed msgs/clean-example.txt
	msgCleanExampleRaw string
	MsgCleanExample    = strings.TrimRight(msgCleanExampleRaw, "\n")

	//go:embed msgs/setup-long.txt
	msgSetupLongRaw string
	MsgSetupLong    = strings.TrimSpace(msgSetupLongRaw)

	//go:embed msgs/restore-long.txt
	msgRestoreLongRaw string
	MsgRestoreLong    = strings.TrimSpace(msgRestoreLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
