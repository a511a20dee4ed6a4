package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.cpp", []byte("hello world"), 0)
	if id1 != 0 {
		t.Fatalf("expected first FileID to be 0, got %d", id1)
	}
	id2 := fs.Add("test.cpp", []byte("hello universe"), 0)
	if id2 != 1 {
		t.Fatalf("expected second FileID to be 1, got %d", id2)
	}

	latest, ok := fs.GetLatest("test.cpp")
	if !ok || latest != id2 {
		t.Fatalf("expected latest ID %d, got %d (ok=%v)", id2, latest, ok)
	}
	if got := string(fs.Get(id1).Content); got != "hello world" {
		t.Fatalf("old version lost: %q", got)
	}
	if fs.Get(FileID(7)) != nil {
		t.Fatalf("expected nil for unknown file")
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.cpp", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Fatalf("expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Fatalf("expected FileVirtual flag to be set")
	}
	if file.IsHeader() {
		t.Fatalf("a.cpp is not a header")
	}
}

func TestHeaderFlag(t *testing.T) {
	fs := NewFileSet()
	for _, path := range []string{"x.h", "inc/y.HPP", "z.hxx"} {
		if !fs.Get(fs.AddVirtual(path, nil)).IsHeader() {
			t.Fatalf("%s should be a header", path)
		}
	}
	if fs.Get(fs.AddVirtual("main.cc", nil)).IsHeader() {
		t.Fatalf("main.cc is not a header")
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("r.cpp", []byte("int a;\nint bb;\n\nα x;"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{6, LineCol{1, 7}}, // '\n' принадлежит первой строке
		{7, LineCol{2, 1}},
		{11, LineCol{2, 5}},
		{15, LineCol{3, 1}},
		{16, LineCol{4, 1}},
		{18, LineCol{4, 3}},
	}
	for _, tt := range tests {
		got, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if got != tt.want {
			t.Fatalf("offset %d: want %+v, got %+v", tt.off, tt.want, got)
		}
	}
	if line := fs.Line(id, 11); line != 2 {
		t.Fatalf("Line: want 2, got %d", line)
	}
}

func TestGetLineAndText(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.cpp", []byte("first\nsecond\nthird"))
	f := fs.Get(id)
	for i, want := range []string{"first", "second", "third", ""} {
		if got := f.GetLine(uint32(i + 1)); got != want {
			t.Fatalf("line %d: want %q, got %q", i+1, want, got)
		}
	}
	if got := fs.Text(Span{File: id, Start: 6, End: 12}); got != "second" {
		t.Fatalf("Text: got %q", got)
	}
	if got := fs.Text(Span{File: id, Start: 6, End: 100}); got != "" {
		t.Fatalf("out of range Text should be empty, got %q", got)
	}
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.cpp")
	if err := os.WriteFile(path, []byte{0xEF, 0xBB, 0xBF, 'a', '\r', '\n', 'b'}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
}
