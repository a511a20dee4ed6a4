package config

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"slices"
	"sort"
	"strings"

	"codan/internal/diag"
)

// Overrides is the mutable input of Build: values from the config file and
// the command line. Later calls win.
type Overrides struct {
	rules map[string]*ruleOverride
	// EnableAll turns on every rule, including those off by default.
	EnableAll bool
}

type ruleOverride struct {
	enabled  *bool
	severity *diag.Severity
	params   map[string]any
}

func (o *Overrides) rule(id string) *ruleOverride {
	if o.rules == nil {
		o.rules = make(map[string]*ruleOverride)
	}
	r, ok := o.rules[id]
	if !ok {
		r = &ruleOverride{params: make(map[string]any)}
		o.rules[id] = r
	}
	return r
}

func (o *Overrides) Enable(id string) {
	v := true
	o.rule(id).enabled = &v
}

func (o *Overrides) Disable(id string) {
	v := false
	o.rule(id).enabled = &v
}

func (o *Overrides) SetSeverity(id string, sev diag.Severity) {
	o.rule(id).severity = &sev
}

// Set records a raw parameter value; it is type-checked by Build.
func (o *Overrides) Set(id, param string, raw any) {
	o.rule(id).params[param] = raw
}

type ruleConfig struct {
	spec     RuleSpec
	enabled  bool
	severity diag.Severity
	params   map[string]Value
	regexps  map[string]*regexp.Regexp
}

// Config is the immutable per-run configuration: enabled rules, severities
// and parameter values. It is safe for concurrent readers.
type Config struct {
	rules map[string]*ruleConfig
	order []string
}

// Build validates overrides against the rule catalogue. Unknown rules,
// unknown parameters, mistyped values and invalid regular expressions are
// reported together.
func Build(specs []RuleSpec, o *Overrides) (*Config, error) {
	cfg := &Config{rules: make(map[string]*ruleConfig, len(specs))}
	for _, spec := range specs {
		rc := &ruleConfig{
			spec:     spec,
			enabled:  spec.DefaultEnabled,
			severity: spec.Severity,
			params:   make(map[string]Value),
			regexps:  make(map[string]*regexp.Regexp),
		}
		for _, p := range spec.AllParams() {
			rc.params[p.ID] = p.Default.clone()
		}
		cfg.rules[spec.ID] = rc
		cfg.order = append(cfg.order, spec.ID)
	}
	if o == nil {
		o = &Overrides{}
	}
	var errs []error
	if o.EnableAll {
		for _, rc := range cfg.rules {
			rc.enabled = true
		}
	}
	ids := make([]string, 0, len(o.rules))
	for id := range o.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ov := o.rules[id]
		rc, ok := cfg.rules[id]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownRule, id))
			continue
		}
		if ov.enabled != nil {
			rc.enabled = *ov.enabled
		}
		if ov.severity != nil {
			rc.severity = *ov.severity
		}
		names := make([]string, 0, len(ov.params))
		for name := range ov.params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			spec, ok := rc.spec.param(name)
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s.%s", ErrUnknownParam, id, name))
				continue
			}
			v, err := Coerce(spec.Kind, ov.params[name])
			if err != nil {
				errs = append(errs, fmt.Errorf("%s.%s: %w", id, name, err))
				continue
			}
			rc.params[name] = v
		}
	}
	for _, id := range cfg.order {
		rc := cfg.rules[id]
		for _, p := range rc.spec.AllParams() {
			v := rc.params[p.ID]
			if err := p.check(v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				continue
			}
			if p.Regex {
				rc.regexps[p.ID] = regexp.MustCompile(v.Str)
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Default returns the configuration with every default in place.
func Default(specs []RuleSpec) *Config {
	cfg, err := Build(specs, nil)
	if err != nil {
		panic(fmt.Errorf("rule catalogue defaults are invalid: %w", err))
	}
	return cfg
}

// Rules returns rule ids in catalogue order.
func (c *Config) Rules() []string {
	return slices.Clone(c.order)
}

func (c *Config) Enabled(rule string) bool {
	rc, ok := c.rules[rule]
	return ok && rc.enabled
}

// Severity returns the effective severity, SevWarning for unknown rules.
func (c *Config) Severity(rule string) diag.Severity {
	if rc, ok := c.rules[rule]; ok {
		return rc.severity
	}
	return diag.SevWarning
}

// Param returns the effective value; ok is false for unknown rules or parameters.
func (c *Config) Param(rule, param string) (Value, bool) {
	rc, ok := c.rules[rule]
	if !ok {
		return Value{}, false
	}
	v, ok := rc.params[param]
	return v.clone(), ok
}

func (c *Config) Bool(rule, param string) bool {
	v, _ := c.Param(rule, param)
	return v.Bool
}

func (c *Config) Int(rule, param string) int64 {
	v, _ := c.Param(rule, param)
	return v.Int
}

func (c *Config) String(rule, param string) string {
	v, _ := c.Param(rule, param)
	return v.Str
}

func (c *Config) Strings(rule, param string) []string {
	v, _ := c.Param(rule, param)
	return v.List
}

// Regexp returns the compiled value of a regex parameter.
func (c *Config) Regexp(rule, param string) *regexp.Regexp {
	if rc, ok := c.rules[rule]; ok {
		return rc.regexps[param]
	}
	return nil
}

// ReportMacros is the universal `macro` parameter.
func (c *Config) ReportMacros(rule string) bool {
	return c.Bool(rule, ParamMacro)
}

// Excluded reports whether filePath matches one of the rule's `exclude` globs.
// A pattern without a slash is matched against the base name.
func (c *Config) Excluded(rule, filePath string) bool {
	return MatchAny(c.Strings(rule, ParamExclude), filePath)
}

// MatchAny matches slash-separated globs against p.
func MatchAny(patterns []string, p string) bool {
	base := path.Base(p)
	for _, pat := range patterns {
		target := p
		if !strings.Contains(pat, "/") {
			target = base
		}
		if ok, err := path.Match(pat, target); err == nil && ok {
			return true
		}
	}
	return false
}

// Fingerprint renders the effective configuration deterministically: one
// line per rule with its state, severity and sorted parameter values.
func (c *Config) Fingerprint() string {
	var sb strings.Builder
	for _, id := range c.order {
		rc := c.rules[id]
		fmt.Fprintf(&sb, "%s %t %s", id, rc.enabled, rc.severity)
		keys := make([]string, 0, len(rc.params))
		for k := range rc.params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%s", k, rc.params[k])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
