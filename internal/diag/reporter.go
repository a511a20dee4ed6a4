package diag

// Reporter: минимальный контракт получения проблем.
// Report returns false when the problem was dropped (duplicate or over the limit).
type Reporter interface {
	Report(p Problem) bool
}

var _ Reporter = (*Bag)(nil)
