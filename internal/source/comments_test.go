package source

import "testing"

func TestScanComments(t *testing.T) {
	src := `int a; // one
/* two
   lines */ int b = '/'; const char* s = "// not a comment";
const char* r = R"x(/* raw */)x"; // three \
continued
int c = 1'000; /* four */`
	got := ScanComments(3, []byte(src))
	want := []string{
		"// one",
		"/* two\n   lines */",
		"// three \\\ncontinued",
		"/* four */",
	}
	if len(got) != len(want) {
		t.Fatalf("want %d comments, got %d: %+v", len(want), len(got), got)
	}
	for i, c := range got {
		if c.Text != want[i] {
			t.Fatalf("comment %d: want %q, got %q", i, want[i], c.Text)
		}
		if string(src[c.Span.Start:c.Span.End]) != c.Text {
			t.Fatalf("comment %d span does not match text", i)
		}
		if c.Span.File != 3 {
			t.Fatalf("comment %d has file %d", i, c.Span.File)
		}
	}
	if got[1].Kind != BlockComment || got[0].Kind != LineComment {
		t.Fatalf("kinds mismatch")
	}
	if got[3].Body() != " four " {
		t.Fatalf("Body: got %q", got[3].Body())
	}
}

func TestScanCommentsUnterminated(t *testing.T) {
	got := ScanComments(0, []byte("x /* open"))
	if len(got) != 1 || got[0].Text != "/* open" {
		t.Fatalf("unexpected %+v", got)
	}
}
