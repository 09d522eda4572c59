package storekeep

import (
	"fmt"
	"io"
	"os"

	"github.com/devcraft/storekeep/pkg/backup"
	"github.com/devcraft/storekeep/pkg/cleaner"
	"github.com/devcraft/storekeep/pkg/config"
	"github.com/devcraft/storekeep/pkg/filesystem"
	"github.com/devcraft/storekeep/pkg/kvstore"
	"github.com/devcraft/storekeep/pkg/ledger"
	"github.com/devcraft/storekeep/pkg/logging"
	"github.com/devcraft/storekeep/pkg/output"
	"github.com/devcraft/storekeep/pkg/output/styles"
	"github.com/devcraft/storekeep/pkg/paths"
	"github.com/devcraft/storekeep/pkg/provision"
	"github.com/devcraft/storekeep/pkg/status"
	"github.com/devcraft/storekeep/pkg/types"
	"github.com/spf13/cobra"
)

// globalOptions are the root command's persistent flags.
type globalOptions struct {
	verbosity  int
	configFile string
	format     string
	overrides  []string
}

// app is the wired set of components one command invocation works with.
type app struct {
	cfg      *config.Config
	cwd      string
	fs       types.FS
	resolver *paths.Resolver
	ledger   *ledger.Ledger
	backups  *backup.Manager
	engine   *cleaner.Engine
	out      *output.Renderer
}

// newApp loads the configuration and builds every component. A non-auto
// format overrides the --format flag.
func newApp(w io.Writer, opts *globalOptions, format output.Format) (*app, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf(MsgErrWorkingDir, err)
	}

	overrides, err := config.ParseOverrides(opts.overrides)
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	cfg, err := config.Load(config.LoadOptions{ConfigFile: opts.configFile, Cwd: cwd, Overrides: overrides})
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	if cfg.Output.Styles != "" {
		home, _ := os.UserHomeDir()
		if err := styles.LoadStylesFile(paths.ExpandHome(cfg.Output.Styles, home)); err != nil {
			return nil, fmt.Errorf(MsgErrStyles, err)
		}
	}

	out, err := newRenderer(w, opts, format)
	if err != nil {
		return nil, err
	}

	fs := filesystem.NewOS()
	ledgerPath := paths.LedgerPath(cfg.Ledger.Path, cwd)
	l := ledger.Load(fs, ledgerPath, ledger.WithConfigVersion(cfg.Ledger.ConfigVersion))
	resolver := paths.NewResolver(fs, cfg.Layout(), paths.WithCwd(cwd))
	backups := backup.New(fs, cfg.BackupOptions()...)
	engine := cleaner.New(resolver, l, backups, kvstore.NewOpener(cfg.StoreOptions()), fs,
		cleaner.WithStoreFile(cfg.Target.StoreFile))

	logger := logging.GetLogger("cmd")
	logger.Debug().
		Str("config", cfg.Source).
		Str("ledger", ledgerPath).
		Str("format", out.Format().String()).
		Msg("Components wired")

	return &app{
		cfg:      cfg,
		cwd:      cwd,
		fs:       fs,
		resolver: resolver,
		ledger:   l,
		backups:  backups,
		engine:   engine,
		out:      out,
	}, nil
}

// newRenderer picks the format from the --format flag unless format is
// already concrete.
func newRenderer(w io.Writer, opts *globalOptions, format output.Format) (*output.Renderer, error) {
	if format == output.FormatAuto {
		var err error
		if format, err = output.ParseFormat(opts.format); err != nil {
			return nil, fmt.Errorf(MsgErrFormatFlag, err)
		}
	}
	if f, ok := w.(*os.File); ok {
		format = format.Resolve(f)
	}
	return output.NewRenderer(w, format)
}

// standaloneRenderer serves commands that need no configuration.
func standaloneRenderer(cmd *cobra.Command, opts *globalOptions) (*output.Renderer, error) {
	return newRenderer(cmd.OutOrStdout(), opts, output.FormatAuto)
}

func (a *app) provisioner() *provision.Provisioner {
	return provision.New(a.ledger, provision.NewProcessEnvironment(), a.engine, a.resolver, a.fs, a.backups,
		provision.Settings{
			Environment: a.cfg.Environment.Variables,
			Overrides:   a.cfg.Settings.OverrideMap(),
		})
}

func (a *app) reporter() *status.Reporter {
	return status.New(a.ledger, a.resolver, a.fs, a.cfg.Plugins.Marker, a.cfg.Target.StoreFile, a.cfg.Backup.Suffix)
}
