// Package fswalk provides a deterministic, filterable filesystem walker used
// to gather the text files a rewrite should touch.
package fswalk

import (
	"bufio"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// FileInfo is a minimal, deterministic descriptor of a collected file.
type FileInfo struct {
	RelPath string // root-relative path with forward slashes
	Size    int64
}

// Options filters the walk. The zero value collects every regular text file.
type Options struct {
	Exts           []string // extensions to include (".go"); empty = all
	Exclude        []string // base names or base-name globs to skip (".git", "*.min.js")
	MaxFileBytes   int64    // skip larger files; 0 = no limit
	UseGitignore   bool     // honor <root>/.gitignore
	FollowSymlinks bool
	IncludeBinary  bool // by default files with a NUL byte in their head are skipped
}

// sniffLen is how much of a file is inspected for NUL bytes.
const sniffLen = 8000

type walkState struct {
	opt      Options
	exts     map[string]struct{}
	root     string
	rules    []ignoreRule
	files    []FileInfo
}

// Collect walks root and returns matching files sorted by RelPath.
func Collect(root string, opt Options) ([]FileInfo, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	state := &walkState{opt: opt, root: rootAbs, exts: toExtSet(opt.Exts)}
	if opt.UseGitignore {
		if rules, err := parseGitignore(filepath.Join(rootAbs, ".gitignore")); err == nil {
			state.rules = rules
		}
	}
	if err := filepath.WalkDir(rootAbs, state.visit); err != nil {
		return nil, err
	}
	sort.Slice(state.files, func(i, j int) bool { return state.files[i].RelPath < state.files[j].RelPath })
	return state.files, nil
}

func toExtSet(exts []string) map[string]struct{} {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		m[e] = struct{}{}
	}
	return m
}

func (ws *walkState) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return nil
	}
	rel, ok := ws.relative(path)
	if !ok {
		return nil
	}
	if rel != "." && ws.shouldSkip(rel, d) {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	if d.IsDir() {
		if rel != "." && !ws.opt.FollowSymlinks && isSymlink(d) {
			return filepath.SkipDir
		}
		return nil
	}
	return ws.handleFile(path, rel, d)
}

func (ws *walkState) relative(path string) (string, bool) {
	rel, err := filepath.Rel(ws.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return "", false
	}
	return rel, true
}

func (ws *walkState) shouldSkip(rel string, d fs.DirEntry) bool {
	if excluded(ws.opt.Exclude, path.Base(rel)) {
		return true
	}
	return ws.opt.UseGitignore && ignored(ws.rules, rel, d.IsDir())
}

func (ws *walkState) handleFile(path, rel string, d fs.DirEntry) error {
	if !ws.opt.FollowSymlinks && isSymlink(d) {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	if ws.opt.MaxFileBytes > 0 && info.Size() > ws.opt.MaxFileBytes {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if len(ws.exts) > 0 {
		if _, ok := ws.exts[ext]; !ok {
			return nil
		}
	}
	if !ws.opt.IncludeBinary {
		if bin, err := IsBinary(path); err != nil || bin {
			return nil
		}
	}
	ws.files = append(ws.files, FileInfo{RelPath: rel, Size: info.Size()})
	return nil
}

// IsBinary reports whether the head of the file at path contains a NUL byte.
func IsBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}
	return bytes.IndexByte(buf[:n], 0) >= 0, nil
}

// isSymlink reports whether the DirEntry is a symlink (file or directory).
func isSymlink(d fs.DirEntry) bool {
	return d.Type()&fs.ModeSymlink != 0
}

// ignoreRule is one line of a .gitignore file.
type ignoreRule struct {
	glob     string // slash-separated, without leading '/', trailing '/' or '!'
	negate   bool
	dirOnly  bool
	anchored bool // contains a '/', so it matches from the walk root
}

// parseGitignore reads the rules of a .gitignore file. Supported: comments,
// '!' negation, a trailing '/' for directories, a '/' anywhere anchoring the
// rule to the root, '**' as a whole path segment, and '*', '?', '[...]'
// inside a segment.
func parseGitignore(file string) ([]ignoreRule, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rules []ignoreRule
	s := bufio.NewScanner(f)
	for s.Scan() {
		if r, ok := parseIgnoreLine(s.Text()); ok {
			rules = append(rules, r)
		}
	}
	return rules, s.Err()
}

func parseIgnoreLine(line string) (ignoreRule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return ignoreRule{}, false
	}
	var r ignoreRule
	if line[0] == '!' {
		r.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	r.anchored = strings.Contains(line, "/")
	r.glob = strings.TrimPrefix(line, "/")
	return r, r.glob != ""
}

func (r ignoreRule) match(rel string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	if !r.anchored {
		ok, _ := path.Match(r.glob, path.Base(rel))
		return ok
	}
	return matchSegments(strings.Split(r.glob, "/"), strings.Split(rel, "/"))
}

func matchSegments(glob, name []string) bool {
	for len(glob) > 0 {
		if glob[0] == "**" {
			for i := 0; i <= len(name); i++ {
				if matchSegments(glob[1:], name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		if ok, _ := path.Match(glob[0], name[0]); !ok {
			return false
		}
		glob, name = glob[1:], name[1:]
	}
	return len(name) == 0
}

// ignored applies the rules in order; the last matching rule wins.
func ignored(rules []ignoreRule, rel string, isDir bool) bool {
	out := false
	for _, r := range rules {
		if r.match(rel, isDir) {
			out = !r.negate
		}
	}
	return out
}

// excluded reports whether base equals one of names, or matches one of them
// used as a glob ("build*", "*.min.js").
func excluded(names []string, base string) bool {
	for _, ex := range names {
		if ex == "" {
			continue
		}
		if ex == base {
			return true
		}
		if strings.ContainsAny(ex, "*?[") {
			if ok, _ := path.Match(ex, base); ok {
				return true
			}
		}
	}
	return false
}
