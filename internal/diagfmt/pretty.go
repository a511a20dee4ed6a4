package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"codan/internal/diag"
	"codan/internal/source"
)

type palette struct {
	sev    map[diag.Severity]*color.Color
	rule   *color.Color
	gutter *color.Color
	caret  *color.Color
	note   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		rule:   color.New(color.Faint),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgMagenta),
	}
	all := []*color.Color{p.rule, p.gutter, p.caret, p.note}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	if c, ok := p.sev[s]; ok {
		return c
	}
	return p.sev[diag.SevInfo]
}

// Pretty форматирует проблемы в человекочитаемый вид.
// Ожидается уже отсортированный список (engine.Result.Problems).
// Для каждой проблемы печатает:
// <path>:<line>:<col>: <SEV> <RULE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, problems []diag.Problem, fs *source.FileSet, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	var sb strings.Builder
	for i := range problems {
		if i > 0 {
			sb.WriteString("\n")
		}
		p := &problems[i]
		writeHeader(&sb, p, fs, opts, pal)
		writeSnippet(&sb, p.Span, fs, opts, pal)
		if opts.ShowNotes {
			for _, n := range p.Notes {
				fmt.Fprintf(&sb, "  %s %s: %s\n", pal.note.Sprint("note:"), location(n.Span, fs, opts.PathMode, opts.BaseDir), n.Msg)
			}
		}
	}
	if len(problems) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(Summary(problems))
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// Short prints one line per problem: `path:line:col: severity: message [rule]`.
func Short(w io.Writer, problems []diag.Problem, fs *source.FileSet, mode PathMode, baseDir string) error {
	var sb strings.Builder
	for i := range problems {
		p := &problems[i]
		fmt.Fprintf(&sb, "%s: %s: %s [%s]\n", location(p.Span, fs, mode, baseDir), p.Severity.Label(), p.Message, p.RuleID)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Summary counts problems by severity, e.g. "3 problems (1 error, 2 warnings)".
func Summary(problems []diag.Problem) string {
	if len(problems) == 0 {
		return "no problems"
	}
	var errs, warns, infos int
	for i := range problems {
		switch problems[i].Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		default:
			infos++
		}
	}
	var parts []string
	if errs > 0 {
		parts = append(parts, plural(errs, "error"))
	}
	if warns > 0 {
		parts = append(parts, plural(warns, "warning"))
	}
	if infos > 0 {
		parts = append(parts, strconv.Itoa(infos)+" info")
	}
	return fmt.Sprintf("%s (%s)", plural(len(problems), "problem"), strings.Join(parts, ", "))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func location(sp source.Span, fs *source.FileSet, mode PathMode, baseDir string) string {
	if fs == nil {
		return fmt.Sprintf("<file %d>:%d", sp.File, sp.Start)
	}
	f := fs.Get(sp.File)
	if f == nil {
		return fmt.Sprintf("<file %d>:%d", sp.File, sp.Start)
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(f.Path, mode, baseDir), start.Line, start.Col)
}

func writeHeader(sb *strings.Builder, p *diag.Problem, fs *source.FileSet, opts PrettyOpts, pal palette) {
	fmt.Fprintf(sb, "%s: %s %s: %s\n",
		location(p.Span, fs, opts.PathMode, opts.BaseDir),
		pal.severity(p.Severity).Sprint(p.Severity.String()),
		pal.rule.Sprint(p.RuleID),
		p.Message)
}

// writeSnippet prints the problem line with Context lines around it and a
// caret underline below the problem line.
func writeSnippet(sb *strings.Builder, sp source.Span, fs *source.FileSet, opts PrettyOpts, pal palette) {
	if fs == nil {
		return
	}
	f := fs.Get(sp.File)
	if f == nil || int(sp.End) > len(f.Content) {
		return
	}
	start, end := fs.Resolve(sp)
	lines := uint32(len(f.LineIdx)) + 1 // #nosec G115 -- bounded by file size
	ctx := uint32(max(opts.Context, 0))  // #nosec G115 -- non-negative int8
	first := start.Line - min(start.Line-1, ctx)
	last := min(start.Line+ctx, lines)
	gutterWidth := len(strconv.FormatUint(uint64(last), 10))
	blank := strings.Repeat(" ", gutterWidth)

	for n := first; n <= last; n++ {
		text := strings.TrimRight(f.GetLine(n), "\r\n")
		shown := clip(text, opts.Width)
		fmt.Fprintf(sb, "%s %s %s\n", pal.gutter.Sprintf("%*d", gutterWidth, n), pal.gutter.Sprint("|"), shown)
		if n != start.Line {
			continue
		}
		from := int(start.Col - 1)
		to := len(text)
		if end.Line == start.Line {
			to = int(end.Col - 1)
		}
		from, to = min(from, len(text)), min(max(to, from), len(text))
		pad := padding(text[:from])
		width := max(runewidth.StringWidth(text[from:to]), 1)
		fmt.Fprintf(sb, "%s %s %s%s\n", blank, pal.gutter.Sprint("|"), pad, pal.caret.Sprint("^"+strings.Repeat("~", width-1)))
	}
}

// padding reproduces the visual width of prefix, keeping tabs so the caret
// lines up in a terminal.
func padding(prefix string) string {
	var sb strings.Builder
	for len(prefix) > 0 {
		r, size := utf8.DecodeRuneInString(prefix)
		prefix = prefix[size:]
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}

func clip(line string, width uint8) string {
	if width == 0 || runewidth.StringWidth(line) <= int(width) {
		return line
	}
	return runewidth.Truncate(line, int(width), "…")
}
