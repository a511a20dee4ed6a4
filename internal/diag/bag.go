package diag

import (
	"sort"
	"strings"
	"sync"

	"codan/internal/source"
)

type bagKey struct {
	rule string
	span source.Span
	args string
}

func keyOf(p *Problem) bagKey {
	return bagKey{rule: p.RuleID, span: p.Span, args: strings.Join(p.Args, "\x00")}
}

// Bag collects problems of one run. It is safe for concurrent Report calls.
type Bag struct {
	mu        sync.Mutex
	items     []Problem
	seen      map[bagKey]struct{}
	max       int
	dropped   int
	finalized bool
}

// NewBag returns a bag keeping at most max problems; max <= 0 means no limit.
func NewBag(max int) *Bag {
	return &Bag{
		seen: make(map[bagKey]struct{}),
		max:  max,
	}
}

// Report добавляет проблему. Повтор с теми же (RuleID, Span, Args) игнорируется.
// Возвращает false, если проблема не добавлена.
func (b *Bag) Report(p Problem) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := keyOf(&p)
	if _, ok := b.seen[key]; ok {
		return false
	}
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.seen[key] = struct{}{}
	b.items = append(b.items, p)
	b.finalized = false
	return true
}

// Merge reports every problem of other.
func (b *Bag) Merge(other []Problem) {
	for _, p := range other {
		b.Report(p)
	}
}

// Finalize sorts problems by file, start, end, rule id. The sort is stable,
// so the result does not depend on checker scheduling.
func (b *Bag) Finalize() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return
	}
	sort.SliceStable(b.items, func(i, j int) bool {
		return Less(&b.items[i], &b.items[j])
	})
	b.finalized = true
}

// Problems returns a finalized copy of the collected problems.
func (b *Bag) Problems() []Problem {
	b.Finalize()
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Problem, len(b.items))
	copy(out, b.items)
	return out
}

// длина
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Dropped counts problems rejected by the limit.
func (b *Bag) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// HasErrors возвращает true, если есть хотя бы одна проблема с Severity >= Error
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}
