package diag

import "codan/internal/source"

type Note struct {
	Span source.Span
	Msg  string
}

// Problem is one finding of a rule.
type Problem struct {
	RuleID   string
	Severity Severity
	Span     source.Span
	Message  string
	Args     []string
	Notes    []Note
}

func New(rule string, sev Severity, span source.Span, msg string, args ...string) Problem {
	return Problem{
		RuleID:   rule,
		Severity: sev,
		Span:     span,
		Message:  msg,
		Args:     args,
	}
}

func (p Problem) WithNote(sp source.Span, msg string) Problem {
	notes := make([]Note, len(p.Notes), len(p.Notes)+1)
	copy(notes, p.Notes)
	p.Notes = append(notes, Note{Span: sp, Msg: msg})
	return p
}

// Less orders problems by file, start, end, rule id and message.
func Less(a, b *Problem) bool {
	if a.Span.File != b.Span.File {
		return a.Span.File < b.Span.File
	}
	if a.Span.Start != b.Span.Start {
		return a.Span.Start < b.Span.Start
	}
	if a.Span.End != b.Span.End {
		return a.Span.End < b.Span.End
	}
	if a.RuleID != b.RuleID {
		return a.RuleID < b.RuleID
	}
	return a.Message < b.Message
}
