package storekeep

import (
	"fmt"

	"github.com/devcraft/storekeep/internal/version"
	"github.com/devcraft/storekeep/pkg/cleaner"
	"github.com/devcraft/storekeep/pkg/config"
	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/output"
	"github.com/devcraft/storekeep/pkg/patterns"
	"github.com/devcraft/storekeep/pkg/provision"
	"github.com/devcraft/storekeep/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func tierNames() []string {
	names := make([]string, 0, len(types.AllTiers))
	for _, t := range types.AllTiers {
		names = append(names, t.String())
	}
	return names
}

func newCleanCmd(opts *globalOptions) *cobra.Command {
	var (
		dryRun    bool
		protect   bool
		noProtect bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:       "clean <smart|deep|complete>",
		Short:     MsgCleanShort,
		Long:      MsgCleanLong,
		Example:   MsgCleanExample,
		GroupID:   "core",
		Args:      cobra.ExactArgs(1),
		ValidArgs: tierNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := types.ParseTier(args[0])
			if err != nil {
				return err
			}

			format := output.FormatAuto
			if asJSON {
				format = output.FormatJSON
			}
			a, err := newApp(cmd.OutOrStdout(), opts, format)
			if err != nil {
				return err
			}

			protection := a.ledger.ProtectionEnabled()
			switch {
			case protect:
				protection = true
			case noProtect:
				protection = false
			}

			log.Info().
				Str("tier", tier.String()).
				Bool("protection", protection).
				Bool("dry_run", dryRun).
				Msg("Cleaning stores")

			result := a.engine.CleanWithOptions(tier, protection, cleaner.Options{DryRun: dryRun})
			if err := a.out.RenderClean(result); err != nil {
				return err
			}
			return result.Err()
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&protect, "protect", false, MsgFlagProtect)
	cmd.Flags().BoolVar(&noProtect, "no-protect", false, MsgFlagNoProtect)
	cmd.Flags().BoolVar(&asJSON, "json", false, MsgFlagJSON)
	cmd.MarkFlagsMutuallyExclusive("protect", "no-protect")

	return cmd
}

func newSetupCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "setup",
		Short:   MsgSetupShort,
		Long:    MsgSetupLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), opts, output.FormatAuto)
			if err != nil {
				return err
			}

			report, runErr := a.provisioner().Run(provision.Options{Force: force})
			if err := a.out.RenderSetup(report); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}

func newRestoreCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "restore",
		Short:   MsgRestoreShort,
		Long:    MsgRestoreLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), opts, output.FormatAuto)
			if err != nil {
				return err
			}

			result := a.engine.Restore()
			if err := a.out.RenderRestore(result); err != nil {
				return err
			}
			return result.Err()
		},
	}
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		GroupID: "state",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), opts, output.FormatAuto)
			if err != nil {
				return err
			}
			return a.out.RenderStatus(a.reporter().Report())
		},
	}
}

func newLedgerCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ledger",
		Short:   MsgLedgerShort,
		GroupID: "state",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: MsgLedgerShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), opts, output.FormatAuto)
			if err != nil {
				return err
			}
			return a.out.RenderLedger(a.ledger.Path(), a.ledger.State())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "protect <on|off>",
		Short:     MsgProtectShort,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch args[0] {
			case "on":
				enabled = true
			case "off":
				enabled = false
			default:
				return errors.Newf(errors.ErrInvalidInput, MsgErrProtectArg, args[0])
			}

			a, err := newApp(cmd.OutOrStdout(), opts, output.FormatAuto)
			if err != nil {
				return err
			}
			a.ledger.SetProtection(enabled)
			return a.out.RenderMessage("Success", fmt.Sprintf(MsgProtectionFormat, args[0]))
		},
	})

	return cmd
}

func newResetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "reset",
		Short:   MsgResetShort,
		GroupID: "state",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), opts, output.FormatAuto)
			if err != nil {
				return err
			}
			a.ledger.Reset()
			// Reset swallows write failures, so report one explicitly
			if err := a.ledger.Save(); err != nil {
				return fmt.Errorf(MsgErrResetFailed, err)
			}
			return a.out.RenderMessage("Success", fmt.Sprintf(MsgResetDone, a.ledger.Path()))
		},
	}
}

func newPathsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "paths",
		Short:   MsgPathsShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), opts, output.FormatAuto)
			if err != nil {
				return err
			}
			return a.out.RenderLocations(a.resolver.Resolve())
		},
	}
}

func newPatternsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "patterns [key...]",
		Short:   MsgPatternsShort,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := standaloneRenderer(cmd, opts)
			if err != nil {
				return err
			}

			verdicts := make([]patterns.Verdict, 0, len(args))
			for _, key := range args {
				verdicts = append(verdicts, patterns.Classify(key))
			}
			return r.RenderPatterns(patterns.Catalog(), verdicts)
		},
	}
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: MsgConfigShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), opts, output.FormatAuto)
			if err != nil {
				return err
			}
			if a.out.Format().IsStructured() {
				return a.out.RenderData(a.cfg)
			}

			data, err := config.ToTOML(a.cfg)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if a.cfg.Source != "" {
				fmt.Fprintf(w, MsgConfigSource, a.cfg.Source)
			} else {
				fmt.Fprint(w, MsgConfigDefaults)
			}
			_, err = w.Write(data)
			return err
		},
	})

	return cmd
}

func newVersionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			r, err := standaloneRenderer(cmd, opts)
			if err != nil {
				return err
			}
			if r.Format().IsStructured() {
				return r.RenderData(info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, info.Version, info.Commit, info.Date)
			return nil
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
		},
	}
}
