// Package platform reports facts about the process environment: the host
// OS, its newline convention, the running executable and tools on PATH.
package platform

import (
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Info is a snapshot of the host environment.
type Info struct {
	OS         string
	IsWindows  bool
	Newline    string
	Executable string // "" when the OS cannot report it
}

// Detect collects Info for the current process.
func Detect() Info {
	exe, err := os.Executable()
	if err != nil {
		exe = ""
	}
	return Info{
		OS:         runtime.GOOS,
		IsWindows:  isWindows(runtime.GOOS),
		Newline:    Newline(),
		Executable: exe,
	}
}

// Newline returns the newline sequence native to this process's OS.
func Newline() string {
	return NewlineFor(runtime.GOOS)
}

// NewlineFor returns the newline sequence native to goos.
func NewlineFor(goos string) string {
	if isWindows(goos) {
		return "\r\n"
	}
	return "\n"
}

func isWindows(goos string) bool {
	return strings.EqualFold(goos, "windows")
}

// ErrNotFound is returned by LookPath when none of the names resolve.
var ErrNotFound = errors.New("executable not found in PATH")

// LookPath returns the path of the first name found on PATH.
func LookPath(names ...string) (string, error) {
	for _, n := range names {
		if n == "" {
			continue
		}
		if p, err := exec.LookPath(n); err == nil {
			return p, nil
		}
	}
	return "", ErrNotFound
}
