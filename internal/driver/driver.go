// Package driver applies a text transformation to many files with bounded
// parallelism and reports what changed.
package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"textnorm/internal/diff"
	"textnorm/internal/lineending"
	"textnorm/internal/logging"
	"textnorm/internal/textnorm"
)

// Mode selects the transformation.
type Mode int

const (
	ModeNormalize Mode = iota
	ModePrefix
	ModeIndent
)

func (m Mode) String() string {
	switch m {
	case ModeNormalize:
		return "normalize"
	case ModePrefix:
		return "prefix"
	case ModeIndent:
		return "indent"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Options controls a run.
type Options struct {
	Mode         Mode
	Target       lineending.LineEnding // ModeNormalize only
	Prefix       string                // ModePrefix only
	FinalNewline bool
	FixUTF8      bool
	Write        bool // rewrite changed files in place
	Diff         bool // fill Result.Diff
	KeepOutput   bool // fill Result.Output
	DiffOptions  diff.Options
	Jobs         int // 0 = GOMAXPROCS
}

// Result describes one file.
type Result struct {
	Path    string
	Changed bool
	Written bool
	Before  textnorm.Counts
	After   textnorm.Counts
	Diff    string
	Output  string
	Err     error
}

// Apply transforms a single text according to opt.
func Apply(n *textnorm.Normalizer, text string, opt Options) (string, error) {
	if opt.FixUTF8 {
		text = textnorm.ToValidUTF8(text)
	}
	var (
		out    string
		ending lineending.LineEnding
		err    error
	)
	switch opt.Mode {
	case ModeNormalize:
		out, err = textnorm.Normalize(text, opt.Target)
		ending = opt.Target
	case ModePrefix:
		out = n.Prefix(text, opt.Prefix)
		ending = n.Native()
	case ModeIndent:
		out = n.Indent(text)
		ending = n.Native()
	default:
		return "", fmt.Errorf("unknown mode %v", opt.Mode)
	}
	if err != nil {
		return "", err
	}
	if opt.FinalNewline {
		return textnorm.EnsureTrailing(out, ending)
	}
	return out, nil
}

// Run processes files concurrently. Per-file failures are reported in
// Result.Err; the returned error is non-nil only when ctx is done.
func Run(ctx context.Context, n *textnorm.Normalizer, files []string, opt Options) ([]Result, error) {
	results := make([]Result, len(files))
	if len(files) == 0 {
		return results, nil
	}
	jobs := opt.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = processFile(n, path, opt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func processFile(n *textnorm.Normalizer, path string, opt Options) Result {
	log := logging.L()
	res := Result{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		res.Err = err
		return res
	}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	before := string(data)
	after, err := Apply(n, before, opt)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}
	res.Before = textnorm.Count(before)
	res.After = textnorm.Count(after)
	res.Changed = before != after
	if opt.KeepOutput {
		res.Output = after
	}
	if res.Changed && opt.Diff {
		res.Diff, _ = diff.Unified(path, before, after, opt.DiffOptions)
	}
	if res.Changed && opt.Write {
		if err := os.WriteFile(path, []byte(after), info.Mode().Perm()); err != nil {
			res.Err = fmt.Errorf("write %s: %w", path, err)
			return res
		}
		res.Written = true
	}
	log.Debug().
		Str("path", path).
		Stringer("mode", opt.Mode).
		Bool("changed", res.Changed).
		Bool("written", res.Written).
		Msg("processed")
	return res
}

// Summary aggregates a run.
type Summary struct {
	Files   int
	Changed int
	Written int
	Failed  int
}

// Summarize counts results.
func Summarize(results []Result) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
		case r.Written:
			s.Written++
			s.Changed++
		case r.Changed:
			s.Changed++
		}
	}
	return s
}
