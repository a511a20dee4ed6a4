package astio

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"codan/internal/ast"
	"codan/internal/source"
)

// SchemaVersion is bumped whenever the encoded layout of ast.Builder changes.
const SchemaVersion uint16 = 1

var (
	ErrUnknownFormat = errors.New("unknown AST dump format")
	ErrSchema        = errors.New("unsupported AST dump schema")
	ErrCorrupt       = errors.New("corrupt AST dump")
)

// Format selects the encoding of a dump.
type Format uint8

const (
	FormatMsgpack Format = iota + 1 // .cast
	FormatJSON                      // .json
)

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Extensions recognized by FormatFor.
const (
	ExtMsgpack = ".cast"
	ExtJSON    = ".json"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMsgpack:
		return FormatMsgpack, nil
	case ExtJSON:
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// SourceFile is one source text spans of the dump point into. Files are
// stored in FileID order.
type SourceFile struct {
	Path    string `msgpack:"path" json:"path"`
	Content []byte `msgpack:"content" json:"content"`
}

// Document is the on-disk form of an ast.Unit.
type Document struct {
	Schema  uint16       `msgpack:"schema" json:"schema"`
	Main    ast.FileID   `msgpack:"main" json:"main"`
	Sources []SourceFile `msgpack:"sources" json:"sources"`
	AST     *ast.Builder `msgpack:"ast" json:"ast"`
}

// FromUnit captures unit together with the text of every source file.
func FromUnit(unit *ast.Unit) (*Document, error) {
	if unit == nil || unit.AST == nil {
		return nil, fmt.Errorf("%w: empty unit", ErrCorrupt)
	}
	doc := &Document{Schema: SchemaVersion, Main: unit.File, AST: unit.AST}
	if unit.Sources != nil {
		for i := range unit.Sources.Len() {
			id, err := safecast.Conv[uint32](i)
			if err != nil {
				return nil, err
			}
			f := unit.Sources.Get(source.FileID(id))
			doc.Sources = append(doc.Sources, SourceFile{Path: f.Path, Content: f.Content})
		}
	}
	return doc, nil
}

// Unit rebuilds the source set, scans comments when the producer did not
// attach them and links parent references.
func (d *Document) Unit() (*ast.Unit, error) {
	if d.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSchema, d.Schema, SchemaVersion)
	}
	if d.AST == nil || d.AST.Files == nil || d.AST.Decls == nil || d.AST.Stmts == nil ||
		d.AST.Exprs == nil || d.AST.Types == nil || d.AST.Bindings == nil {
		return nil, fmt.Errorf("%w: missing node tables", ErrCorrupt)
	}
	if d.AST.Macros == nil {
		d.AST.Macros = ast.NewMacros(0)
	}
	main := d.AST.Files.Get(d.Main)
	if main == nil {
		return nil, fmt.Errorf("%w: main file %d not found", ErrCorrupt, d.Main)
	}
	fs := source.NewFileSet()
	for i, sf := range d.Sources {
		id := fs.AddVirtual(sf.Path, sf.Content)
		if int(id) != i {
			return nil, fmt.Errorf("%w: source %q got id %d, want %d", ErrCorrupt, sf.Path, id, i)
		}
	}
	if fs.Len() > 0 {
		src := fs.Get(main.Span.File)
		if src == nil {
			return nil, fmt.Errorf("%w: main file span refers to missing source %d", ErrCorrupt, main.Span.File)
		}
		end, err := safecast.Conv[uint32](len(src.Content))
		if err != nil {
			return nil, err
		}
		if main.Span.End > end {
			return nil, fmt.Errorf("%w: main file span %v exceeds source length %d", ErrCorrupt, main.Span, end)
		}
		if main.Comments == nil {
			main.Comments = source.ScanComments(src.ID, src.Content)
		}
	}
	d.AST.Link(d.Main)
	return &ast.Unit{AST: d.AST, Sources: fs, File: d.Main}, nil
}

// Encode writes unit to w.
func Encode(w io.Writer, unit *ast.Unit, format Format) error {
	doc, err := FromUnit(unit)
	if err != nil {
		return err
	}
	switch format {
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.UseCompactInts(true)
		err = enc.Encode(doc)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

// Decode reads a unit written by Encode (or by an external producer of the
// same schema).
func Decode(r io.Reader, format Format) (*ast.Unit, error) {
	var doc Document
	var err error
	switch format {
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&doc)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&doc)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return doc.Unit()
}

// ReadFile decodes the dump at path; the format comes from the extension.
func ReadFile(path string) (*ast.Unit, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	unit, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return unit, nil
}

// WriteFile encodes unit to path, replacing it atomically.
func WriteFile(path string, unit *ast.Unit) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, unit, format); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".codan-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Hash is a digest of the encoded unit, stable across runs.
func Hash(unit *ast.Unit) ([sha256.Size]byte, error) {
	var sum [sha256.Size]byte
	doc, err := FromUnit(unit)
	if err != nil {
		return sum, err
	}
	h := sha256.New()
	if err := msgpack.NewEncoder(h).Encode(doc); err != nil {
		return sum, fmt.Errorf("hash: %w", err)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
