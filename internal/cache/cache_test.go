package cache

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"codan/internal/diag"
	"codan/internal/source"
)

func TestPutGet(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	key := Key(sha256.Sum256([]byte("unit")), "cfg", "1.0.0")
	var miss Entry
	if ok, err := c.Get(key, &miss); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	p := diag.New("GotoStatement", diag.SevInfo, source.Span{File: 0, Start: 3, End: 9}, "Goto statement used")
	if err := c.Put(key, &Entry{Path: "a.cast", Problems: []diag.Problem{p}, Suppressed: 2}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var got Entry
	ok, err := c.Get(key, &got)
	if !ok || err != nil {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Path != "a.cast" || got.Suppressed != 2 || len(got.Problems) != 1 {
		t.Fatalf("unexpected entry %+v", got)
	}
	if q := got.Problems[0]; q.RuleID != p.RuleID || q.Span != p.Span || q.Severity != p.Severity || q.Message != p.Message {
		t.Fatalf("problem changed: %+v", q)
	}

	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if ok, _ := c.Get(key, &got); ok {
		t.Fatalf("entry survived DropAll")
	}
}

func TestKeyDependsOnEveryInput(t *testing.T) {
	unit := sha256.Sum256([]byte("unit"))
	base := Key(unit, "cfg", "1")
	variants := []Digest{
		Key(sha256.Sum256([]byte("other")), "cfg", "1"),
		Key(unit, "cfg2", "1"),
		Key(unit, "cfg", "2"),
		Key(unit, "cfg1", ""),
	}
	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d collides with base key", i)
		}
	}
}

func TestOpenDefaultHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	c, err := OpenDefault("codan")
	if err != nil {
		t.Fatalf("OpenDefault: %v", err)
	}
	if c.Dir() != filepath.Join(dir, "codan") {
		t.Fatalf("dir = %s", c.Dir())
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Fatalf("cache dir not created: %v", err)
	}
}
