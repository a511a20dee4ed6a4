package config

import (
	"errors"
	"fmt"
	"regexp"

	"codan/internal/diag"
)

var (
	ErrUnknownRule  = errors.New("unknown rule")
	ErrUnknownParam = errors.New("unknown parameter")
	ErrParamType    = errors.New("wrong parameter type")
	ErrBadRegex     = errors.New("invalid regular expression")
)

// ParamSpec describes one parameter of a rule.
type ParamSpec struct {
	ID      string
	Label   string
	Kind    Kind
	Default Value
	// Regex marks string parameters holding a regular expression; they are
	// compiled once when the Config is built.
	Regex bool
}

func (p ParamSpec) check(v Value) error {
	if v.Kind != p.Kind {
		return fmt.Errorf("%w: %s wants %s, got %s", ErrParamType, p.ID, p.Kind, v.Kind)
	}
	if p.Regex {
		if _, err := regexp.Compile(v.Str); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrBadRegex, p.ID, err)
		}
	}
	return nil
}

// RuleSpec is what the configuration needs to know about a rule.
type RuleSpec struct {
	ID             string
	Name           string
	Severity       diag.Severity
	DefaultEnabled bool
	Params         []ParamSpec
}

const (
	// ParamMacro: report problems from macro expansions at the invocation site.
	ParamMacro = "macro"
	// ParamExclude: file globs the rule is not applied to.
	ParamExclude = "exclude"
)

// UniversalParams are accepted by every rule.
func UniversalParams() []ParamSpec {
	return []ParamSpec{
		{ID: ParamMacro, Label: "Report problems in macro expansions", Kind: KindBool, Default: Bool(true)},
		{ID: ParamExclude, Label: "Exclude files matching", Kind: KindStringList, Default: Strings()},
	}
}

// AllParams returns the rule's own parameters followed by the universal ones.
func (r RuleSpec) AllParams() []ParamSpec {
	out := make([]ParamSpec, 0, len(r.Params)+2)
	out = append(out, r.Params...)
	return append(out, UniversalParams()...)
}

func (r RuleSpec) param(id string) (ParamSpec, bool) {
	for _, p := range r.AllParams() {
		if p.ID == id {
			return p, true
		}
	}
	return ParamSpec{}, false
}
