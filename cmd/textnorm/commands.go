package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"textnorm/internal/config"
	"textnorm/internal/driver"
	"textnorm/internal/platform"
	"textnorm/internal/textnorm"
	"textnorm/internal/version"
)

func newNormalizeCmd(a *app) *cobra.Command {
	var (
		f  transformFlags
		to string
	)
	cmd := &cobra.Command{
		Use:   "normalize [flags] [path...]",
		Short: "Convert every line ending to a single style",
		Long: `Convert every CRLF, CR and LF line ending to one style.

With no paths the text is read from stdin and written to stdout. Directories
are walked using the [walk] settings of ` + config.FileName + `.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := f.options(cmd, a.cfg, driver.ModeNormalize)
			if err != nil {
				return err
			}
			opt.Target = a.cfg.Target
			if cmd.Flags().Changed("to") {
				if opt.Target, err = config.ResolveTarget(to, a.cfg.Native); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}
			return a.runTransform(cmd, args, &f, opt)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&to, "to", "t", config.TargetNative, "target line ending (lf|crlf|cr|native)")
	return cmd
}

func newPrefixCmd(a *app) *cobra.Command {
	var (
		f      transformFlags
		prefix string
	)
	cmd := &cobra.Command{
		Use:   "prefix [flags] [path...]",
		Short: "Prepend a string to every line",
		Long: `Prepend a string to every line, including empty ones. Lines are
rejoined with the native line ending.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := f.options(cmd, a.cfg, driver.ModePrefix)
			if err != nil {
				return err
			}
			opt.Prefix = a.cfg.Prefix
			if cmd.Flags().Changed("prefix") {
				opt.Prefix = prefix
			}
			return a.runTransform(cmd, args, &f, opt)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "string to prepend (default from config)")
	return cmd
}

func newIndentCmd(a *app) *cobra.Command {
	var f transformFlags
	cmd := &cobra.Command{
		Use:   "indent [flags] [path...]",
		Short: "Indent every line with two spaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := f.options(cmd, a.cfg, driver.ModeIndent)
			if err != nil {
				return err
			}
			return a.runTransform(cmd, args, &f, opt)
		},
	}
	f.register(cmd)
	return cmd
}

func newSplitCmd(a *app) *cobra.Command {
	var count bool
	cmd := &cobra.Command{
		Use:   "split [path]",
		Short: "Print the lines of a text with their numbers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			lines := textnorm.SplitLines(text)
			sep := a.cfg.Native.Representation()
			out := cmd.OutOrStdout()
			if count {
				io.WriteString(out, textnorm.FormatInvariant("%d", len(lines))+sep)
				return nil
			}
			for i, ln := range lines {
				io.WriteString(out, textnorm.FormatInvariant("%d\t%s", i+1, ln)+sep)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&count, "count", "c", false, "print only the number of lines")
	return cmd
}

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect [path...]",
		Short: "Report the line endings used by each input",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				text, err := readInput(cmd, nil)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, describeCounts("<stdin>", textnorm.Count(text)))
				return nil
			}
			files, err := expandPaths(args, a.cfg.Walk)
			if err != nil {
				return err
			}
			for _, p := range files {
				data, err := os.ReadFile(p)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, describeCounts(p, textnorm.Count(string(data))))
			}
			return nil
		},
	}
}

func describeCounts(name string, c textnorm.Counts) string {
	s := textnorm.FormatInvariant("%s\t%s\tlf=%d crlf=%d cr=%d", name, c.Dominant(), c.LF, c.CRLF, c.CR)
	if c.Mixed() {
		s += " " + color.YellowString("mixed")
	}
	return s
}

func newEnvCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show the host facts resolved at start-up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inf := platform.Detect()
			goTool, err := platform.LookPath("go")
			if err != nil {
				goTool = "(not found)"
			}
			cfgPath := a.cfg.Path
			if cfgPath == "" {
				cfgPath = "(defaults)"
			}
			rows := [][2]string{
				{"os", inf.OS},
				{"windows", textnorm.FormatInvariant("%t", inf.IsWindows)},
				{"host newline", textnorm.FormatInvariant("%q", inf.Newline)},
				{"native", config.Describe(a.cfg.Native)},
				{"target", config.Describe(a.cfg.Target)},
				{"config", cfgPath},
				{"executable", inf.Executable},
				{"go", goTool},
			}
			out := cmd.OutOrStdout()
			for _, r := range rows {
				fmt.Fprintln(out, textnorm.FormatInvariant("%-13s %s", r[0]+":", r[1]))
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Banner())
			return nil
		},
	}
}

// readInput returns the content of args[0], or stdin when args is empty.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}
