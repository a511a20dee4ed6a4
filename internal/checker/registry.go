package checker

import (
	"errors"
	"fmt"

	"codan/internal/config"
)

// Checker is a self-contained analysis. Run must not mutate the AST or the
// scope table; everything it finds goes through Pass.Report.
type Checker interface {
	Name() string
	Rules() []Rule
	Run(p *Pass)
}

var ErrDuplicateRule = errors.New("duplicate rule")

// Registry is the catalogue of checkers and their rules in registration order.
type Registry struct {
	checkers []Checker
	rules    []Rule
	byID     map[string]int
	owner    map[string]Checker
}

// NewRegistry indexes checkers; rule ids and rule names must be unique.
func NewRegistry(checkers ...Checker) (*Registry, error) {
	r := &Registry{
		byID:  make(map[string]int),
		owner: make(map[string]Checker),
	}
	names := make(map[string]string)
	var errs []error
	for _, c := range checkers {
		r.checkers = append(r.checkers, c)
		for _, rule := range c.Rules() {
			if _, dup := r.byID[rule.ID]; dup {
				errs = append(errs, fmt.Errorf("%w: id %q (checker %s)", ErrDuplicateRule, rule.ID, c.Name()))
				continue
			}
			if prev, dup := names[rule.Name]; dup {
				errs = append(errs, fmt.Errorf("%w: name %q used by %s and %s", ErrDuplicateRule, rule.Name, prev, rule.ID))
				continue
			}
			names[rule.Name] = rule.ID
			r.byID[rule.ID] = len(r.rules)
			r.rules = append(r.rules, rule)
			r.owner[rule.ID] = c
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

func (r *Registry) Checkers() []Checker { return r.checkers }

// Rules returns every rule in catalogue order.
func (r *Registry) Rules() []Rule { return r.rules }

func (r *Registry) Rule(id string) (*Rule, bool) {
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return &r.rules[i], true
}

// Owner returns the checker that reports rule id.
func (r *Registry) Owner(id string) (Checker, bool) {
	c, ok := r.owner[id]
	return c, ok
}

// Specs feeds config.Build.
func (r *Registry) Specs() []config.RuleSpec {
	out := make([]config.RuleSpec, 0, len(r.rules))
	for i := range r.rules {
		out = append(out, r.rules[i].Spec())
	}
	return out
}

// Active returns the checkers with at least one enabled rule.
func (r *Registry) Active(cfg *config.Config) []Checker {
	var out []Checker
	for _, c := range r.checkers {
		for _, rule := range c.Rules() {
			if cfg.Enabled(rule.ID) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
