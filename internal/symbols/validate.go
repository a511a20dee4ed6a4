package symbols

import (
	"errors"
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Validate walks the scope arena checking structural invariants. Returns nil
// if everything is consistent; otherwise aggregates all detected issues.
func (t *Table) Validate() error {
	var errs []error
	for idx := 1; idx < len(t.Scopes.data); idx++ {
		raw, err := safecast.Conv[uint32](idx)
		if err != nil {
			errs = append(errs, fmt.Errorf("scope index %d overflows: %w", idx, err))
			continue
		}
		id := ScopeID(raw)
		scope := &t.Scopes.data[idx]
		if scope.Kind == ScopeInvalid {
			errs = append(errs, fmt.Errorf("scope %d has invalid kind", id))
		}
		if scope.Parent.IsValid() {
			parent := t.Scopes.Get(scope.Parent)
			if parent == nil || scope.Parent == id {
				errs = append(errs, fmt.Errorf("scope %d has invalid parent %d", id, scope.Parent))
			} else if !slices.Contains(parent.Children, id) {
				errs = append(errs, fmt.Errorf("scope %d parent %d missing backlink", id, scope.Parent))
			}
		} else if id != t.Root {
			errs = append(errs, fmt.Errorf("scope %d is detached from the file scope", id))
		}
		covered := 0
		for name, bucket := range scope.Names {
			for _, b := range bucket {
				if !slices.Contains(scope.Order, b) {
					errs = append(errs, fmt.Errorf("scope %d: %q binding %d missing from order", id, name, b))
				}
			}
			covered += len(bucket)
		}
		if covered != len(scope.Order) {
			errs = append(errs, fmt.Errorf("scope %d: %d ordered bindings, %d indexed", id, len(scope.Order), covered))
		}
	}
	return errors.Join(errs...)
}
