// Package config loads .textnorm.toml and resolves the native and target
// line endings once at start-up.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"textnorm/internal/diff"
	"textnorm/internal/fswalk"
	"textnorm/internal/lineending"
	"textnorm/internal/platform"
)

const (
	FileName   = ".textnorm.toml"
	EnvNewline = "TEXTNORM_NEWLINE"

	// TargetNative selects the native line ending as the normalize target.
	TargetNative = "native"
)

var (
	defaultExclude = []string{".git", ".hg", ".svn", "node_modules", "vendor", ".idea", ".vscode"}
	defaultPrefix  = "> "
)

// Config is the resolved configuration. Native and Target are always valid
// line endings.
type Config struct {
	Path         string // file the values came from; "" when defaults were used
	Native       lineending.LineEnding
	Target       lineending.LineEnding
	FinalNewline bool
	FixUTF8      bool
	Prefix       string
	Jobs         int
	Walk         fswalk.Options
	Diff         diff.Options
}

type fileConfig struct {
	Newline      string     `toml:"newline"`
	Native       *string    `toml:"native"`
	FinalNewline bool       `toml:"final_newline"`
	FixUTF8      bool       `toml:"fix_utf8"`
	Prefix       *string    `toml:"prefix"`
	Jobs         int        `toml:"jobs"`
	Walk         walkConfig `toml:"walk"`
	Diff         diffConfig `toml:"diff"`
}

type walkConfig struct {
	Ext            []string `toml:"ext"`
	Exclude        []string `toml:"exclude"`
	UseGitignore   bool     `toml:"use_gitignore"`
	FollowSymlinks bool     `toml:"follow_symlinks"`
	MaxFileBytes   int64    `toml:"max_file_bytes"`
	IncludeBinary  bool     `toml:"include_binary"`
}

type diffConfig struct {
	Context  int `toml:"context"`
	MaxBytes int `toml:"max_bytes"`
}

// Find searches startDir and its parents for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load reads the file at path, or the nearest FileName above the working
// directory when path is "", and resolves it against the host environment.
func Load(path string) (Config, error) {
	if path == "" {
		found, ok, err := Find(".")
		if err != nil {
			return Config{}, err
		}
		if ok {
			path = found
		}
	}
	fc := fileConfig{Walk: walkConfig{UseGitignore: true, Exclude: append([]string(nil), defaultExclude...)}}
	if path != "" {
		meta, err := toml.DecodeFile(path, &fc)
		if err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if und := meta.Undecoded(); len(und) > 0 {
			return Config{}, fmt.Errorf("%s: unknown key %q", path, und[0].String())
		}
	}
	if v := os.Getenv(EnvNewline); v != "" {
		fc.Newline = v
	}
	cfg, err := resolve(fc, platform.Newline())
	if err != nil {
		if path != "" {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		return Config{}, err
	}
	cfg.Path = path
	return cfg, nil
}

func resolve(fc fileConfig, hostNewline string) (Config, error) {
	native, err := resolveNative(fc.Native, hostNewline)
	if err != nil {
		return Config{}, fmt.Errorf("native: %w", err)
	}
	target, err := ResolveTarget(fc.Newline, native)
	if err != nil {
		return Config{}, fmt.Errorf("newline: %w", err)
	}
	if fc.Jobs < 0 {
		return Config{}, fmt.Errorf("jobs: must be >= 0, got %d", fc.Jobs)
	}
	if fc.Diff.Context < 0 || fc.Diff.MaxBytes < 0 {
		return Config{}, fmt.Errorf("diff: context and max_bytes must be >= 0")
	}
	prefix := defaultPrefix
	if fc.Prefix != nil {
		prefix = *fc.Prefix
	}
	return Config{
		Native:       native,
		Target:       target,
		FinalNewline: fc.FinalNewline,
		FixUTF8:      fc.FixUTF8,
		Prefix:       prefix,
		Jobs:         fc.Jobs,
		Walk: fswalk.Options{
			Exts:           fc.Walk.Ext,
			Exclude:        fc.Walk.Exclude,
			MaxFileBytes:   fc.Walk.MaxFileBytes,
			UseGitignore:   fc.Walk.UseGitignore,
			FollowSymlinks: fc.Walk.FollowSymlinks,
			IncludeBinary:  fc.Walk.IncludeBinary,
		},
		Diff: diff.Options{
			Context:  fc.Diff.Context,
			MaxBytes: fc.Diff.MaxBytes,
		},
	}, nil
}

// resolveNative treats an absent value as "ask the host"; a present value,
// even an empty one, must name a known line ending.
func resolveNative(raw *string, hostNewline string) (lineending.LineEnding, error) {
	le, ok, err := lineending.FindRef(raw)
	switch {
	case errors.Is(err, lineending.ErrMissingArgument):
		return lineending.FromNewline(hostNewline)
	case ok:
		return le, nil
	}
	return lineending.ParseName(*raw)
}

// ResolveTarget maps a newline setting to a line ending; "" and "native"
// select native.
func ResolveTarget(name string, native lineending.LineEnding) (lineending.LineEnding, error) {
	if name == "" || strings.EqualFold(strings.TrimSpace(name), TargetNative) {
		return native, nil
	}
	return lineending.ParseName(name)
}

// Describe renders a line ending for humans: its name and escaped bytes.
func Describe(le lineending.LineEnding) string {
	return le.String() + " " + strconv.Quote(le.Representation())
}
