package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"textnorm/internal/config"
	"textnorm/internal/diff"
	"textnorm/internal/driver"
	"textnorm/internal/fswalk"
	"textnorm/internal/logging"
	"textnorm/internal/sortutil"
	"textnorm/internal/textnorm"
)

var errWouldChange = errors.New("some inputs are not normalized")

// transformFlags are shared by normalize, prefix and indent.
type transformFlags struct {
	write        bool
	check        bool
	showDiff     bool
	finalNewline bool
	fixUTF8      bool
	jobs         int
	context      int
}

func (f *transformFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.write, "write", "w", false, "rewrite changed files in place")
	cmd.Flags().BoolVar(&f.check, "check", false, "exit non-zero if any input would change")
	cmd.Flags().BoolVarP(&f.showDiff, "diff", "d", false, "print a unified diff instead of the rewritten text")
	cmd.Flags().BoolVar(&f.finalNewline, "final-newline", false, "ensure the text ends with a line ending")
	cmd.Flags().BoolVar(&f.fixUTF8, "fix-utf8", false, "replace invalid UTF-8 with U+FFFD")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "parallel file workers (0 = config or GOMAXPROCS)")
	cmd.Flags().IntVarP(&f.context, "context", "U", 0, "context lines in diffs (default from config, else 3)")
}

func (f *transformFlags) options(cmd *cobra.Command, cfg config.Config, mode driver.Mode) (driver.Options, error) {
	if f.write && f.check {
		return driver.Options{}, fmt.Errorf("%s: --write cannot be used with --check", cmd.Name())
	}
	opt := driver.Options{
		Mode:         mode,
		FinalNewline: cfg.FinalNewline,
		FixUTF8:      cfg.FixUTF8,
		Write:        f.write,
		Diff:         f.showDiff,
		KeepOutput:   !f.write && !f.check && !f.showDiff,
		DiffOptions:  cfg.Diff,
		Jobs:         cfg.Jobs,
	}
	if cmd.Flags().Changed("final-newline") {
		opt.FinalNewline = f.finalNewline
	}
	if cmd.Flags().Changed("fix-utf8") {
		opt.FixUTF8 = f.fixUTF8
	}
	if cmd.Flags().Changed("jobs") {
		opt.Jobs = f.jobs
	}
	if cmd.Flags().Changed("context") {
		if f.context < 0 {
			return driver.Options{}, fmt.Errorf("%s: --context must be >= 0", cmd.Name())
		}
		opt.DiffOptions.Context = f.context
	}
	return opt, nil
}

// runTransform applies opt to stdin (no args) or to the files named by args,
// walking directories with the configured filters.
func (a *app) runTransform(cmd *cobra.Command, args []string, f *transformFlags, opt driver.Options) error {
	if len(args) == 0 {
		return a.transformStream(cmd, f, opt)
	}
	files, err := expandPaths(args, a.cfg.Walk)
	if err != nil {
		return err
	}
	results, err := driver.Run(cmd.Context(), a.norm, files, opt)
	if err != nil {
		return err
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	var added, removed int
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintln(errOut, color.RedString("error:"), r.Err)
		case opt.KeepOutput:
			io.WriteString(out, r.Output)
		case f.showDiff && r.Diff != "":
			writeDiff(out, r.Diff)
			a, d := diff.Stat(r.Diff)
			added += a
			removed += d
		}
		if r.Err == nil && r.Changed && f.check && !a.quiet {
			fmt.Fprintln(errOut, textnorm.FormatInvariant("%s: %s", r.Path, color.YellowString("would change")))
		}
		if r.Written {
			logging.L().Info().Str("path", r.Path).Msg("rewrote")
		}
	}

	s := driver.Summarize(results)
	if !a.quiet && !opt.KeepOutput {
		line := textnorm.FormatInvariant("%d file(s), %d changed, %d written, %d failed",
			s.Files, s.Changed, s.Written, s.Failed)
		if f.showDiff {
			line += textnorm.FormatInvariant(", %s/%s lines",
				color.GreenString("+%d", added), color.RedString("-%d", removed))
		}
		fmt.Fprintln(errOut, line)
	}
	if s.Failed > 0 {
		return fmt.Errorf("%s: %d file(s) failed", cmd.Name(), s.Failed)
	}
	if f.check && s.Changed > 0 {
		return errWouldChange
	}
	return nil
}

func (a *app) transformStream(cmd *cobra.Command, f *transformFlags, opt driver.Options) error {
	if f.write {
		return fmt.Errorf("%s: --write needs file arguments", cmd.Name())
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	before := string(data)
	after, err := driver.Apply(a.norm, before, opt)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch {
	case f.showDiff:
		dopt := opt.DiffOptions
		dopt.NoPrefix = true
		if body, _ := diff.Unified("<stdin>", before, after, dopt); body != "" {
			writeDiff(out, body)
		}
	case !f.check:
		io.WriteString(out, after)
	}
	if f.check && before != after {
		return errWouldChange
	}
	return nil
}

// expandPaths resolves file and directory arguments into a sorted,
// de-duplicated file list.
func expandPaths(args []string, walk fswalk.Options) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, filepath.Clean(arg))
			continue
		}
		files, err := fswalk.Collect(arg, walk)
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
		var size int64
		for _, fi := range files {
			paths = append(paths, filepath.Join(arg, filepath.FromSlash(fi.RelPath)))
			size += fi.Size
		}
		logging.L().Debug().Str("dir", arg).Int("files", len(files)).Int64("bytes", size).Msg("walked")
	}
	return sortutil.UniquePaths(paths), nil
}

// writeDiff prints a unified diff with removed lines in red and added lines
// in green. Colors never span a newline.
func writeDiff(w io.Writer, body string) {
	for _, ln := range strings.SplitAfter(body, "\n") {
		if ln == "" {
			continue
		}
		text, nl := strings.CutSuffix(ln, "\n")
		switch {
		case strings.HasPrefix(text, "+++"), strings.HasPrefix(text, "---"):
			text = color.New(color.Bold).Sprint(text)
		case strings.HasPrefix(text, "@@"):
			text = color.CyanString("%s", text)
		case strings.HasPrefix(text, "+"):
			text = color.GreenString("%s", text)
		case strings.HasPrefix(text, "-"):
			text = color.RedString("%s", text)
		}
		io.WriteString(w, text)
		if nl {
			io.WriteString(w, "\n")
		}
	}
}
