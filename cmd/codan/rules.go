package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"codan/internal/checker"
	"codan/internal/checkers"
	"codan/internal/config"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [rule-id...]",
	Short: "List the checker rules with their defaults and parameters",
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	rulesCmd.Flags().Bool("params", false, "list rule parameters")
}

type paramInfo struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Kind    string `json:"kind"`
	Default string `json:"default"`
}

type ruleInfo struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Checker     string      `json:"checker"`
	Severity    string      `json:"severity"`
	Enabled     bool        `json:"enabled"`
	Description string      `json:"description,omitempty"`
	Params      []paramInfo `json:"params,omitempty"`
}

func runRules(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withParams, err := cmd.Flags().GetBool("params")
	if err != nil {
		return fmt.Errorf("failed to get params flag: %w", err)
	}
	infos, err := collectRules(checkers.Registry(), args)
	if err != nil {
		return err
	}
	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case "pretty":
		return writeRules(cmd.OutOrStdout(), infos, withParams || len(args) > 0)
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

// collectRules describes the requested rules, or all of them, in catalogue order.
func collectRules(reg *checker.Registry, ids []string) ([]ruleInfo, error) {
	var rules []checker.Rule
	if len(ids) == 0 {
		rules = reg.Rules()
	} else {
		for _, id := range ids {
			r, ok := reg.Rule(id)
			if !ok {
				return nil, fmt.Errorf("%w: %s", config.ErrUnknownRule, id)
			}
			rules = append(rules, *r)
		}
	}
	out := make([]ruleInfo, 0, len(rules))
	for _, r := range rules {
		info := ruleInfo{
			ID:          r.ID,
			Name:        r.Name,
			Severity:    r.Severity.Label(),
			Enabled:     r.DefaultEnabled,
			Description: r.Description,
		}
		if c, ok := reg.Owner(r.ID); ok {
			info.Checker = c.Name()
		}
		for _, p := range r.Params {
			info.Params = append(info.Params, paramInfo{ID: p.ID, Label: p.Label, Kind: p.Kind.String(), Default: p.Default.String()})
		}
		out = append(out, info)
	}
	return out, nil
}

func writeRules(w io.Writer, infos []ruleInfo, withParams bool) error {
	idWidth := 0
	for _, r := range infos {
		idWidth = max(idWidth, runewidth.StringWidth(r.ID))
	}
	var sb strings.Builder
	for _, r := range infos {
		state := "on "
		if !r.Enabled {
			state = "off"
		}
		fmt.Fprintf(&sb, "%s  %s  %-7s  %s\n", runewidth.FillRight(r.ID, idWidth), state, r.Severity, r.Name)
		if !withParams {
			continue
		}
		if r.Description != "" {
			fmt.Fprintf(&sb, "    %s\n", r.Description)
		}
		for _, p := range r.Params {
			fmt.Fprintf(&sb, "    %s (%s) = %s  %s\n", p.ID, p.Kind, p.Default, p.Label)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
