package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"codan/internal/source"
)

type goldenProblem struct {
	Severity string
	Rule     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatGolden renders problems one per line as
// "<severity> <rule> <path>:<line>:<col> <message>", sorted by position.
// Notes follow their problem with severity "note" when includeNotes is set.
func FormatGolden(problems []Problem, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(problems) == 0 {
		return ""
	}

	rendered := make([]goldenProblem, 0, len(problems))
	for i := range problems {
		rendered = appendProblem(rendered, &problems[i], fs, includeNotes)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		return di.Rule < dj.Rule
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Rule, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendProblem(out []goldenProblem, p *Problem, fs *source.FileSet, includeNotes bool) []goldenProblem {
	if loc, ok := resolveSpan(fs, p.Span); ok {
		out = append(out, goldenProblem{
			Severity: p.Severity.Label(),
			Rule:     p.RuleID,
			Path:     loc.Path,
			Line:     loc.Line,
			Column:   loc.Column,
			Message:  sanitizeMessage(p.Message),
		})
	}
	if includeNotes {
		for _, note := range p.Notes {
			nloc, ok := resolveSpan(fs, note.Span)
			if !ok {
				continue
			}
			out = append(out, goldenProblem{
				Severity: "note",
				Rule:     p.RuleID,
				Path:     nloc.Path,
				Line:     nloc.Line,
				Column:   nloc.Column,
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}
	return out
}

type resolvedSpan struct {
	Path   string
	Line   uint32
	Column uint32
}

func resolveSpan(fs *source.FileSet, span source.Span) (resolvedSpan, bool) {
	file := fs.Get(span.File)
	if file == nil || int(span.Start) > len(file.Content) {
		return resolvedSpan{}, false
	}
	start, _ := fs.Resolve(span)
	return resolvedSpan{
		Path:   normalizePath(file.Path),
		Line:   start.Line,
		Column: start.Col,
	}, true
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
