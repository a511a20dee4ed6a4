package suppress

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"codan/internal/diag"
	"codan/internal/source"
)

const marker = "@suppress"

// Entry is one rule name named by a suppression comment.
type Entry struct {
	Name    string
	Comment source.Span
	Line    uint32
	EndLine uint32
}

// Index holds the suppression entries of one translation unit.
type Index struct {
	fs      *source.FileSet
	entries []Entry
	byName  map[string][]int
}

// Build parses suppression comments. Comments lying inside one of macroBodies
// are ignored.
func Build(fs *source.FileSet, comments []source.Comment, macroBodies []source.Span) *Index {
	idx := &Index{fs: fs, byName: make(map[string][]int)}
	for _, c := range comments {
		if insideAny(c.Span, macroBodies) {
			continue
		}
		for _, name := range ParseComment(c.Body()) {
			idx.entries = append(idx.entries, Entry{
				Name:    name,
				Comment: c.Span,
				Line:    fs.Line(c.Span.File, c.Span.Start),
				EndLine: fs.Line(c.Span.File, lastOffset(c.Span)),
			})
		}
	}
	sort.SliceStable(idx.entries, func(i, j int) bool {
		a, b := idx.entries[i].Comment, idx.entries[j].Comment
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Start < b.Start
	})
	for i, e := range idx.entries {
		idx.byName[e.Name] = append(idx.byName[e.Name], i)
	}
	return idx
}

// Len returns the number of (comment, rule name) entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Entries returns the parsed entries in source order.
func (idx *Index) Entries() []Entry {
	return append([]Entry(nil), idx.entries...)
}

// IsSuppressed reports whether p, produced by the rule called ruleName, is
// silenced. stmt is the span of the statement or declaration enclosing the
// problem; an empty stmt falls back to the problem span.
func (idx *Index) IsSuppressed(p *diag.Problem, ruleName string, stmt source.Span) bool {
	if idx == nil || len(idx.entries) == 0 {
		return false
	}
	hits := idx.byName[normalize(ruleName)]
	if len(hits) == 0 {
		return false
	}
	if stmt == (source.Span{}) {
		stmt = p.Span
	}
	stmtEnd := idx.fs.Line(stmt.File, lastOffset(stmt))
	problemLine := idx.fs.Line(p.Span.File, p.Span.Start)
	for _, i := range hits {
		e := &idx.entries[i]
		if e.Comment.File == stmt.File && stmt.Contains(e.Comment) {
			return true
		}
		if e.Comment.File != p.Span.File {
			continue
		}
		if coversLine(e, stmtEnd) || coversLine(e, problemLine) {
			return true
		}
	}
	return false
}

func coversLine(e *Entry, line uint32) bool {
	return line != 0 && e.Line <= line && line <= e.EndLine
}

// ParseComment returns the NFC-normalized rule names of every
// @suppress("...") inside a comment body.
func ParseComment(body string) []string {
	var names []string
	for {
		i := strings.Index(body, marker)
		if i < 0 {
			return names
		}
		body = body[i+len(marker):]
		rest := strings.TrimLeft(body, " \t")
		if !strings.HasPrefix(rest, "(") {
			continue
		}
		rest = strings.TrimLeft(rest[1:], " \t")
		if !strings.HasPrefix(rest, `"`) {
			continue
		}
		rest = rest[1:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return names
		}
		name := rest[:end]
		tail := strings.TrimLeft(rest[end+1:], " \t")
		if !strings.HasPrefix(tail, ")") {
			body = rest[end+1:]
			continue
		}
		if name != "" {
			names = append(names, normalize(name))
		}
		body = tail[1:]
	}
}

func normalize(s string) string {
	return norm.NFC.String(s)
}

func lastOffset(sp source.Span) uint32 {
	if sp.End > sp.Start {
		return sp.End - 1
	}
	return sp.Start
}

func insideAny(sp source.Span, outer []source.Span) bool {
	for _, o := range outer {
		if o.File == sp.File && !o.Empty() && o.Contains(sp) {
			return true
		}
	}
	return false
}
