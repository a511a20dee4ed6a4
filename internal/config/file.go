package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"codan/internal/diag"
)

// FileName is the configuration file looked up from the analyzed path upwards.
const FileName = ".codan.toml"

// RunSection holds driver settings of the [run] table.
type RunSection struct {
	Jobs        int      `toml:"jobs"`
	Format      string   `toml:"format"`
	MaxProblems int      `toml:"max_problems"`
	EnableAll   bool     `toml:"enable_all"`
	Exclude     []string `toml:"exclude"`
}

// File is a decoded .codan.toml:
//
//	[run]
//	jobs = 4
//
//	[rules.SymbolShadowing]
//	enabled = true
//	severity = "info"
//	check_params = false
type File struct {
	Path  string
	Run   RunSection
	rules map[string]map[string]any
}

type fileData struct {
	Run   RunSection                `toml:"run"`
	Rules map[string]map[string]any `toml:"rules"`
}

// Find walks up from startDir to locate FileName.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadFile decodes and structurally validates a configuration file.
func LoadFile(path string) (*File, error) {
	var data fileData
	meta, err := toml.DecodeFile(path, &data)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("run", "jobs") && data.Run.Jobs < 0 {
		return nil, fmt.Errorf("%s: [run].jobs must not be negative", path)
	}
	for id, table := range data.Rules {
		if meta.IsDefined("rules", id, "enabled") {
			if _, ok := table["enabled"].(bool); !ok {
				return nil, fmt.Errorf("%s: [rules.%s].enabled must be a bool", path, id)
			}
		}
		if meta.IsDefined("rules", id, "severity") {
			s, ok := table["severity"].(string)
			if !ok {
				return nil, fmt.Errorf("%s: [rules.%s].severity must be a string", path, id)
			}
			if _, err := diag.ParseSeverity(s); err != nil {
				return nil, fmt.Errorf("%s: [rules.%s]: %w", path, id, err)
			}
		}
	}
	return &File{Path: path, Run: data.Run, rules: data.Rules}, nil
}

// Apply copies the rule tables into o. Parameter types are checked by Build.
func (f *File) Apply(o *Overrides) {
	if f.Run.EnableAll {
		o.EnableAll = true
	}
	ids := make([]string, 0, len(f.rules))
	for id := range f.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		table := f.rules[id]
		r := o.rule(id)
		for key, raw := range table {
			switch key {
			case "enabled":
				v, _ := raw.(bool)
				r.enabled = &v
			case "severity":
				s, _ := raw.(string)
				sev, _ := diag.ParseSeverity(s)
				r.severity = &sev
			default:
				r.params[key] = raw
			}
		}
	}
}
