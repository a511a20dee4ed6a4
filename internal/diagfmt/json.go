package diagfmt

import (
	"encoding/json"
	"io"

	"codan/internal/diag"
	"codan/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// ProblemJSON is one problem in JSON output.
type ProblemJSON struct {
	Severity string       `json:"severity"`
	Rule     string       `json:"rule"`
	Message  string       `json:"message"`
	Args     []string     `json:"args,omitempty"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// ProblemsOutput is the root of JSON output.
type ProblemsOutput struct {
	Problems []ProblemJSON `json:"problems"`
	Count    int           `json:"count"`
	Total    int           `json:"total"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, opts JSONOpts) LocationJSON {
	loc := LocationJSON{
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if fs == nil {
		return loc
	}
	if f := fs.Get(span.File); f != nil {
		loc.File = formatPath(f.Path, opts.PathMode, opts.BaseDir)
	}
	if opts.IncludePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildProblemsOutput формирует структуру JSON-вывода без сериализации.
func BuildProblemsOutput(problems []diag.Problem, fs *source.FileSet, opts JSONOpts) ProblemsOutput {
	n := len(problems)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := ProblemsOutput{Problems: make([]ProblemJSON, 0, n), Total: len(problems)}
	for i := range n {
		p := &problems[i]
		pj := ProblemJSON{
			Severity: p.Severity.Label(),
			Rule:     p.RuleID,
			Message:  p.Message,
			Args:     p.Args,
			Location: makeLocation(p.Span, fs, opts),
		}
		if opts.IncludeNotes && len(p.Notes) > 0 {
			pj.Notes = make([]NoteJSON, len(p.Notes))
			for j, note := range p.Notes {
				pj.Notes[j] = NoteJSON{Message: note.Msg, Location: makeLocation(note.Span, fs, opts)}
			}
		}
		out.Problems = append(out.Problems, pj)
	}
	out.Count = len(out.Problems)
	return out
}

// JSON форматирует проблемы в JSON.
func JSON(w io.Writer, problems []diag.Problem, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildProblemsOutput(problems, fs, opts))
}
