package source

import (
	"fmt"

	"fortio.org/safecast"
)

// CommentKind distinguishes line and block comments.
type CommentKind uint8

const (
	LineComment CommentKind = iota
	BlockComment
)

// Comment is one comment of a translation unit, text including delimiters.
type Comment struct {
	Kind CommentKind
	Span Span
	Text string
}

// Body returns the comment text without its delimiters.
func (c Comment) Body() string {
	switch c.Kind {
	case BlockComment:
		if len(c.Text) >= 4 {
			return c.Text[2 : len(c.Text)-2]
		}
		return ""
	default:
		if len(c.Text) >= 2 {
			return c.Text[2:]
		}
		return ""
	}
}

// ScanComments collects comments from C/C++ source. String, character and raw string
// literals are skipped; a backslash-newline continues a line comment. An unterminated
// block comment runs to EOF.
func ScanComments(file FileID, content []byte) []Comment {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	var out []Comment
	n := len(content)
	i := 0
	for i < n {
		b := content[i]
		switch {
		case b == '/' && i+1 < n && content[i+1] == '/':
			start := i
			i += 2
			for i < n && content[i] != '\n' {
				if content[i] == '\\' && i+1 < n && content[i+1] == '\n' {
					i += 2
					continue
				}
				i++
			}
			out = append(out, newComment(file, LineComment, content, start, i))
		case b == '/' && i+1 < n && content[i+1] == '*':
			start := i
			i += 2
			for i < n && (content[i] != '*' || i+1 >= n || content[i+1] != '/') {
				i++
			}
			i = min(i+2, n)
			out = append(out, newComment(file, BlockComment, content, start, i))
		case b == 'R' && i+1 < n && content[i+1] == '"' && !identBefore(content, i):
			i = skipRawString(content, i+2)
		case b == '\'' && i > 0 && content[i-1] >= '0' && content[i-1] <= '9':
			// разделитель разрядов: 1'000'000
			i++
		case b == '"' || b == '\'':
			i = skipQuoted(content, i+1, b)
		default:
			i++
		}
	}
	return out
}

func newComment(file FileID, kind CommentKind, content []byte, start, end int) Comment {
	return Comment{
		Kind: kind,
		Span: Span{File: file, Start: uint32(start), End: uint32(end)}, // #nosec G115 -- checked in ScanComments
		Text: string(content[start:end]),
	}
}

// identBefore reports whether R at i belongs to a longer identifier (LR"..." prefixes aside).
func identBefore(content []byte, i int) bool {
	if i == 0 {
		return false
	}
	c := content[i-1]
	switch c {
	case 'L', 'u', 'U', '8':
		// u8R"..." / LR"..." are raw strings too
		return i >= 2 && isIdentByte(content[i-2]) && !(c == '8' && content[i-2] == 'u')
	}
	return isIdentByte(c)
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func skipQuoted(content []byte, i int, quote byte) int {
	for i < len(content) {
		switch content[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1
		case '\n':
			// незакрытый литерал: обрываем на конце строки
			return i
		}
		i++
	}
	return len(content)
}

// skipRawString skips R"delim( ... )delim" starting right after the opening quote.
func skipRawString(content []byte, i int) int {
	start := i
	for i < len(content) && content[i] != '(' && content[i] != '\n' && i-start <= 16 {
		i++
	}
	if i >= len(content) || content[i] != '(' {
		return i
	}
	closing := ")" + string(content[start:i]) + "\""
	i++
	for i+len(closing) <= len(content) {
		if string(content[i:i+len(closing)]) == closing {
			return i + len(closing)
		}
		i++
	}
	return len(content)
}
