package diagfmt

import (
	"encoding/json"
	"io"

	"codan/internal/diag"
	"codan/internal/source"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifDocument struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string          `json:"name"`
	Version        string          `json:"version,omitempty"`
	InformationURI string          `json:"informationUri,omitempty"`
	Rules          []sarifRuleDesc `json:"rules,omitempty"`
}

type sarifRuleDesc struct {
	ID               string             `json:"id"`
	Name             string             `json:"name,omitempty"`
	ShortDescription *sarifMessage      `json:"shortDescription,omitempty"`
	FullDescription  *sarifMessage      `json:"fullDescription,omitempty"`
	DefaultConfig    *sarifRuleDefaults `json:"defaultConfiguration,omitempty"`
}

type sarifRuleDefaults struct {
	Level string `json:"level"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex *int            `json:"ruleIndex,omitempty"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
	Related   []sarifLocation `json:"relatedLocations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
	Message          *sarifMessage `json:"message,omitempty"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn,omitempty"`
	EndLine     uint32 `json:"endLine,omitempty"`
	EndColumn   uint32 `json:"endColumn,omitempty"`
}

// SarifLevel maps a severity to a SARIF result level.
func SarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// Sarif форматирует проблемы в SARIF (v2.1.0).
func Sarif(w io.Writer, problems []diag.Problem, fs *source.FileSet, meta SarifRunMeta) error {
	driver := sarifDriver{Name: meta.ToolName, Version: meta.ToolVersion, InformationURI: meta.InformationURI}
	ruleIndex := make(map[string]int, len(meta.Rules))
	for i, r := range meta.Rules {
		desc := sarifRuleDesc{ID: r.ID, Name: r.Name}
		if r.Name != "" {
			desc.ShortDescription = &sarifMessage{Text: r.Name}
		}
		if r.Description != "" {
			desc.FullDescription = &sarifMessage{Text: r.Description}
		}
		if r.Level != "" {
			desc.DefaultConfig = &sarifRuleDefaults{Level: r.Level}
		}
		driver.Rules = append(driver.Rules, desc)
		ruleIndex[r.ID] = i
	}

	results := make([]sarifResult, 0, len(problems))
	for i := range problems {
		p := &problems[i]
		r := sarifResult{
			RuleID:  p.RuleID,
			Level:   SarifLevel(p.Severity),
			Message: sarifMessage{Text: p.Message},
		}
		if idx, ok := ruleIndex[p.RuleID]; ok {
			r.RuleIndex = &idx
		}
		if loc, ok := sarifLoc(p.Span, fs, meta); ok {
			r.Locations = append(r.Locations, loc)
		}
		for _, n := range p.Notes {
			if loc, ok := sarifLoc(n.Span, fs, meta); ok {
				loc.Message = &sarifMessage{Text: n.Msg}
				r.Related = append(r.Related, loc)
			}
		}
		results = append(results, r)
	}

	run := sarifRun{Tool: sarifTool{Driver: driver}, Results: results}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: true}}
	}
	doc := sarifDocument{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func sarifLoc(sp source.Span, fs *source.FileSet, meta SarifRunMeta) (sarifLocation, bool) {
	if fs == nil {
		return sarifLocation{}, false
	}
	f := fs.Get(sp.File)
	if f == nil {
		return sarifLocation{}, false
	}
	start, end := fs.Resolve(sp)
	return sarifLocation{PhysicalLocation: sarifPhysical{
		ArtifactLocation: sarifArtifact{URI: formatPath(f.Path, meta.PathMode, meta.BaseDir)},
		Region: &sarifRegion{
			StartLine:   start.Line,
			StartColumn: start.Col,
			EndLine:     end.Line,
			EndColumn:   end.Col,
		},
	}}, true
}
