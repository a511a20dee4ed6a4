package source

import "testing"

func TestSpanRelations(t *testing.T) {
	outer := Span{File: 1, Start: 10, End: 30}
	tests := []struct {
		name     string
		other    Span
		contains bool
		overlaps bool
	}{
		{"inside", Span{File: 1, Start: 12, End: 20}, true, true},
		{"same", outer, true, true},
		{"straddles end", Span{File: 1, Start: 25, End: 35}, false, true},
		{"touching", Span{File: 1, Start: 30, End: 40}, false, false},
		{"other file", Span{File: 2, Start: 12, End: 20}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outer.Contains(tt.other); got != tt.contains {
				t.Fatalf("Contains: want %v, got %v", tt.contains, got)
			}
			if got := outer.Overlaps(tt.other); got != tt.overlaps {
				t.Fatalf("Overlaps: want %v, got %v", tt.overlaps, got)
			}
		})
	}
}

func TestSpanCoverAndOrder(t *testing.T) {
	a := Span{File: 1, Start: 5, End: 10}
	b := Span{File: 1, Start: 8, End: 20}
	if got := a.Cover(b); got != (Span{File: 1, Start: 5, End: 20}) {
		t.Fatalf("Cover: got %v", got)
	}
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("Before ordering broken")
	}
	if (Span{File: 0, Start: 50}).Before(Span{File: 0, Start: 50}) {
		t.Fatalf("equal spans must not be ordered")
	}
	if a.String() != "1:5-10" {
		t.Fatalf("String: got %q", a.String())
	}
}
