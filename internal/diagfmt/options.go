package diagfmt

import (
	"path/filepath"
	"strings"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto uses a path relative to BaseDir when the file lies below it.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode accepts auto, absolute, relative or basename.
func ParsePathMode(s string) (PathMode, bool) {
	switch strings.ToLower(s) {
	case "", "auto":
		return PathModeAuto, true
	case "absolute", "abs":
		return PathModeAbsolute, true
	case "relative", "rel":
		return PathModeRelative, true
	case "basename", "base":
		return PathModeBasename, true
	}
	return PathModeAuto, false
}

// PrettyOpts configures pretty-printing of problems.
type PrettyOpts struct {
	Color     bool
	Context   int8 // lines of source around the problem line
	PathMode  PathMode
	BaseDir   string
	Width     uint8 // максимальная ширина строки, 0 - не ограничено
	ShowNotes bool
}

// JSONOpts configures JSON output of problems.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	BaseDir          string
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
}

// SarifRule describes one reporting rule in the SARIF tool section.
type SarifRule struct {
	ID          string
	Name        string
	Description string
	Level       string
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InformationURI string
	InvocationArgs []string
	Rules          []SarifRule
	PathMode       PathMode
	BaseDir        string
}

// formatPath renders p according to mode. Paths in a FileSet are already
// slash-separated.
func formatPath(p string, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(filepath.FromSlash(p)); err == nil {
			return filepath.ToSlash(abs)
		}
		return p
	case PathModeBasename:
		return filepath.Base(filepath.FromSlash(p))
	case PathModeRelative:
		return relativeTo(p, baseDir)
	default:
		if baseDir == "" || !filepath.IsAbs(filepath.FromSlash(p)) {
			return p
		}
		rel := relativeTo(p, baseDir)
		if strings.HasPrefix(rel, "../") {
			return p
		}
		return rel
	}
}

func relativeTo(p, baseDir string) string {
	if baseDir == "" {
		return p
	}
	abs, err := filepath.Abs(filepath.FromSlash(p))
	if err != nil {
		return p
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}
