// Package main provides the textnorm CLI, which rewrites line endings,
// splits text into lines and prefixes or indents every line.
//
// Commands:
//   - normalize : convert every line ending to one style (stdin or files)
//   - split     : print numbered lines
//   - prefix    : prepend a string to every line
//   - indent    : prepend two spaces to every line
//   - detect    : report which line endings a text uses
//   - env       : show the host facts the tool resolved at start-up
//
// The native line ending is resolved once, from .textnorm.toml or the host
// OS, before any command runs.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"textnorm/internal/config"
	"textnorm/internal/logging"
	"textnorm/internal/textnorm"
	"textnorm/internal/version"
)

// app is the state resolved in PersistentPreRunE and shared by subcommands.
type app struct {
	cfg   config.Config
	norm  *textnorm.Normalizer
	quiet bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "textnorm",
		Short:         "Deterministic line-ending normalization and line tools",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().String("config", "", "path to "+config.FileName+" (default: search upward from the working directory)")
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().BoolP("quiet", "q", false, "suppress non-essential output")

	root.AddCommand(
		newNormalizeCmd(a),
		newSplitCmd(a),
		newPrefixCmd(a),
		newIndentCmd(a),
		newDetectCmd(a),
		newEnvCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	logging.ConfigureRuntime()
	flags := cmd.Root().PersistentFlags()

	mode, err := flags.GetString("color")
	if err != nil {
		return err
	}
	if err := applyColorMode(mode); err != nil {
		return err
	}
	if a.quiet, err = flags.GetBool("quiet"); err != nil {
		return err
	}
	path, err := flags.GetString("config")
	if err != nil {
		return err
	}
	if a.cfg, err = config.Load(path); err != nil {
		return err
	}
	if a.norm, err = textnorm.New(a.cfg.Native); err != nil {
		return err
	}
	logging.L().Debug().
		Str("config", a.cfg.Path).
		Stringer("native", a.cfg.Native).
		Stringer("target", a.cfg.Target).
		Msg("configuration resolved")
	return nil
}

func applyColorMode(mode string) error {
	switch mode {
	case "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("--color: want auto, on or off, got %q", mode)
	}
	return nil
}

// main builds the command tree and exits with status 1 on any error.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}
