package checker

import (
	"fmt"
	"strings"

	"codan/internal/config"
	"codan/internal/diag"
)

// Rule is one kind of problem a checker reports.
type Rule struct {
	ID string
	// Name is the human-readable rule name; @suppress comments match it.
	Name     string
	Severity diag.Severity
	// Message is a fmt template, each %s consumes one argument of Report.
	Message        string
	Description    string
	DefaultEnabled bool
	Params         []config.ParamSpec
}

// Spec returns what the configuration layer needs to know about the rule.
func (r *Rule) Spec() config.RuleSpec {
	return config.RuleSpec{
		ID:             r.ID,
		Name:           r.Name,
		Severity:       r.Severity,
		DefaultEnabled: r.DefaultEnabled,
		Params:         r.Params,
	}
}

// Format renders the message with args; missing arguments render empty and
// extra ones are dropped.
func (r *Rule) Format(args []string) string {
	want := strings.Count(r.Message, "%s")
	if want == 0 {
		return r.Message
	}
	vals := make([]any, want)
	for i := range vals {
		if i < len(args) {
			vals[i] = args[i]
		} else {
			vals[i] = ""
		}
	}
	return fmt.Sprintf(r.Message, vals...)
}

func BoolParam(id, label string, def bool) config.ParamSpec {
	return config.ParamSpec{ID: id, Label: label, Kind: config.KindBool, Default: config.Bool(def)}
}

func StringParam(id, label, def string) config.ParamSpec {
	return config.ParamSpec{ID: id, Label: label, Kind: config.KindString, Default: config.String(def)}
}

// RegexParam is a string parameter compiled once per configuration.
func RegexParam(id, label, def string) config.ParamSpec {
	p := StringParam(id, label, def)
	p.Regex = true
	return p
}

func ListParam(id, label string, def ...string) config.ParamSpec {
	return config.ParamSpec{ID: id, Label: label, Kind: config.KindStringList, Default: config.Strings(def...)}
}
