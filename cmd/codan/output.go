package main

import (
	"fmt"
	"io"
	"os"

	"fortio.org/safecast"

	"codan/internal/checker"
	"codan/internal/config"
	"codan/internal/diag"
	"codan/internal/diagfmt"
	"codan/internal/observ"
	"codan/internal/version"
)

// render writes the problems of every analyzed unit in opts.format.
func render(out io.Writer, outcomes []unitOutcome, reg *checker.Registry, cfg *config.Config, opts checkOptions) error {
	m := newMerger()
	var problems []diag.Problem
	for i := range outcomes {
		o := &outcomes[i]
		if o.result == nil {
			continue
		}
		problems = append(problems, m.add(o.unit, o.result.Problems)...)
	}

	switch opts.format {
	case "short":
		return diagfmt.Short(out, problems, m.fs, opts.pathMode, opts.baseDir)
	case "json":
		return diagfmt.JSON(out, problems, m.fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         opts.pathMode,
			BaseDir:          opts.baseDir,
			IncludeNotes:     opts.withNotes,
		})
	case "sarif":
		return diagfmt.Sarif(out, problems, m.fs, diagfmt.SarifRunMeta{
			ToolName:       "codan",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
			Rules:          sarifRules(reg, cfg),
			PathMode:       opts.pathMode,
			BaseDir:        opts.baseDir,
		})
	default:
		if opts.quiet && len(problems) == 0 {
			return nil
		}
		ctxLines, err := safecast.Conv[int8](min(max(opts.context, 0), 16))
		if err != nil {
			return err
		}
		return diagfmt.Pretty(out, problems, m.fs, diagfmt.PrettyOpts{
			Color:     opts.color,
			Context:   ctxLines,
			PathMode:  opts.pathMode,
			BaseDir:   opts.baseDir,
			ShowNotes: opts.withNotes,
		})
	}
}

// sarifRules lists the enabled rules with their effective severity.
func sarifRules(reg *checker.Registry, cfg *config.Config) []diagfmt.SarifRule {
	var out []diagfmt.SarifRule
	for _, r := range reg.Rules() {
		if !cfg.Enabled(r.ID) {
			continue
		}
		out = append(out, diagfmt.SarifRule{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Level:       diagfmt.SarifLevel(cfg.Severity(r.ID)),
		})
	}
	return out
}

// reportOutcomes writes unit errors, checker crashes and timings to errOut.
// It returns true when a unit could not be analyzed or a checker crashed.
func reportOutcomes(errOut io.Writer, outcomes []unitOutcome, opts checkOptions) bool {
	failed := false
	timer := observ.NewTimer()
	canceled := false
	for i := range outcomes {
		o := &outcomes[i]
		name := displayPath(o.path, opts)
		if o.err != nil {
			failed = true
			fmt.Fprintf(errOut, "codan: %s: %v\n", name, o.err)
			continue
		}
		for _, f := range o.result.Failures {
			failed = true
			fmt.Fprintf(errOut, "codan: %s: checker %s\n", name, f.Error())
		}
		if o.result.Canceled {
			canceled = true
		}
		if o.result.Dropped > 0 && !opts.quiet {
			fmt.Fprintf(errOut, "codan: %s: %d more problems not shown (--max-problems)\n", name, o.result.Dropped)
		}
		if o.cached {
			timer.End(timer.Begin(name), "cached")
		} else {
			timer.Merge(name+": ", o.result.Timings)
		}
	}
	if canceled {
		fmt.Fprintln(errOut, "codan: analysis canceled, results are partial")
	}
	if opts.timings {
		fmt.Fprint(errOut, timer.Summary())
	}
	return failed
}

func hasErrors(outcomes []unitOutcome) bool {
	for i := range outcomes {
		if r := outcomes[i].result; r != nil && r.HasErrors() {
			return true
		}
	}
	return false
}
