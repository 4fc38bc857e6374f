// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Virtual working directory tracking and cd resolution

package vcwd

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Style selects the path conventions used for parent-directory resolution
type Style int

const (
	// StylePOSIX uses "/" separators and a single "/" root
	StylePOSIX Style = iota
	// StyleWindows uses "\" separators and drive roots such as "C:\"
	StyleWindows
)

// HostStyle returns the style matching the running platform
func HostStyle() Style {
	if runtime.GOOS == "windows" {
		return StyleWindows
	}
	return StylePOSIX
}

// Navigation errors
var (
	ErrNoSuchDirectory = errors.New("no such file or directory")
	ErrNotDirectory    = errors.New("not a directory")
	ErrNotCd           = errors.New("not a cd command")
)

var reasons = map[error]string{
	ErrNoSuchDirectory: "No such file or directory",
	ErrNotDirectory:    "Not a directory",
}

// NavigationError reports a rejected cd target in shell style
type NavigationError struct {
	Target string
	Err    error
}

func (e *NavigationError) Error() string {
	reason, ok := reasons[e.Err]
	if !ok {
		reason = e.Err.Error()
	}
	return fmt.Sprintf("cd: %s: %s", e.Target, reason)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

var (
	cdPattern          = regexp.MustCompile(`^cd(?:\s+.*|$)`)
	windowsRootPattern = regexp.MustCompile(`^[a-zA-Z]:\\$`)
	windowsVolume      = regexp.MustCompile(`^[a-zA-Z]:[\\/]`)
)

// Dir is a logical current directory, independent of the process cwd
type Dir struct {
	mu      sync.RWMutex
	path    string
	fs      afero.Fs
	style   Style
	homeDir func() (string, error)
}

// Option configures a Dir
type Option func(*Dir)

// WithFs sets the filesystem used to verify cd targets
func WithFs(fs afero.Fs) Option {
	return func(d *Dir) { d.fs = fs }
}

// WithStyle overrides the platform style
func WithStyle(style Style) Option {
	return func(d *Dir) { d.style = style }
}

// WithHomeDir overrides home directory lookup for "~" expansion
func WithHomeDir(fn func() (string, error)) Option {
	return func(d *Dir) { d.homeDir = fn }
}

// New creates a virtual directory starting at start
func New(start string, opts ...Option) *Dir {
	d := &Dir{
		path:    start,
		fs:      afero.NewOsFs(),
		style:   HostStyle(),
		homeDir: os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.style == StylePOSIX && start != "" {
		d.path = path.Clean(start)
	}
	return d
}

// Path returns the current virtual path
func (d *Dir) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path
}

// String implements fmt.Stringer
func (d *Dir) String() string {
	return d.Path()
}

// IsCd reports whether raw is a navigation command
func IsCd(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "cd.." || cdPattern.MatchString(raw)
}

// Navigate resolves a cd command against the current path.
// On failure the path is left unchanged.
func (d *Dir) Navigate(raw string) error {
	raw = strings.TrimSpace(raw)
	if !IsCd(raw) {
		return fmt.Errorf("%w: %q", ErrNotCd, raw)
	}

	fields := strings.Fields(raw)
	current := d.Path()

	var next string
	switch {
	case raw == "cd.." || (len(fields) == 2 && fields[1] == ".."):
		parent, err := d.parent(current)
		if err != nil {
			return err
		}
		next = parent
	case len(fields) == 1:
		return nil
	default:
		target, err := d.resolve(current, fields[1:])
		if err != nil {
			return err
		}
		next = target
	}

	d.mu.Lock()
	d.path = next
	d.mu.Unlock()
	return nil
}

// resolve joins segments onto current and verifies the result is a directory
func (d *Dir) resolve(current string, segments []string) (string, error) {
	parts := make([]string, 0, len(segments))
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		if i == 0 {
			expanded, err := d.expandHome(seg)
			if err != nil {
				return "", err
			}
			seg = expanded
		}
		parts = append(parts, seg)
	}

	var target string
	if d.isAbs(parts[0]) {
		target = filepath.Join(parts...)
	} else {
		target = filepath.Join(append([]string{current}, parts...)...)
	}

	info, err := d.fs.Stat(target)
	if err != nil {
		return "", &NavigationError{Target: target, Err: ErrNoSuchDirectory}
	}
	if !info.IsDir() {
		return "", &NavigationError{Target: target, Err: ErrNotDirectory}
	}
	return target, nil
}

func (d *Dir) expandHome(seg string) (string, error) {
	if seg != "~" && !strings.HasPrefix(seg, "~/") && !strings.HasPrefix(seg, `~\`) {
		return seg, nil
	}
	home, err := d.homeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return home + seg[1:], nil
}

func (d *Dir) isAbs(p string) bool {
	if d.style == StyleWindows {
		return windowsVolume.MatchString(p) || filepath.IsAbs(p)
	}
	return strings.HasPrefix(p, "/")
}

// parent returns the parent of current, failing at a filesystem root
func (d *Dir) parent(current string) (string, error) {
	rootErr := &NavigationError{Target: "..", Err: ErrNoSuchDirectory}

	if d.style == StyleWindows {
		trimmed := strings.TrimSpace(current)
		if windowsRootPattern.MatchString(trimmed) {
			return "", rootErr
		}
		return windowsParent(trimmed), nil
	}

	if current == "/" {
		return "", rootErr
	}
	return path.Dir(current), nil
}

// windowsParent mirrors dirname for drive-letter paths
func windowsParent(p string) string {
	p = strings.TrimRight(p, `\`)
	idx := strings.LastIndex(p, `\`)
	if idx < 0 {
		return p
	}
	if idx == 2 && p[1] == ':' {
		return p[:3]
	}
	return p[:idx]
}
