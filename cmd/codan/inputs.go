package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"codan/internal/ast"
	"codan/internal/astio"
	"codan/internal/config"
	"codan/internal/diag"
	"codan/internal/source"
)

// collectInputs returns the unit files named by target: the file itself, or
// every .cast/.json file below a directory in lexical order. Paths relative
// to the directory that match exclude are skipped.
func collectInputs(target string, exclude []string) ([]string, error) {
	st, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", target, err)
	}
	if !st.IsDir() {
		if _, err := astio.FormatFor(target); err != nil {
			return nil, err
		}
		return []string{target}, nil
	}

	var files []string
	err = filepath.WalkDir(target, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			// скрытые каталоги (.git, .cache) пропускаем
			if p != target && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ferr := astio.FormatFor(p); ferr != nil {
			return nil
		}
		if rel, relErr := filepath.Rel(target, p); relErr == nil && config.MatchAny(exclude, filepath.ToSlash(rel)) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", target, err)
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no .cast or .json units found in %s", target)
	}
	return files, nil
}

// merger folds the sources of several units into one FileSet so that a
// single formatter call can render problems of all of them.
type merger struct {
	fs    *source.FileSet
	byKey map[string]source.FileID
}

func newMerger() *merger {
	return &merger{fs: source.NewFileSet(), byKey: make(map[string]source.FileID)}
}

// add registers the sources of unit and returns problems whose spans
// refer to the merged set. Identical files shared by units (headers) are
// stored once.
func (m *merger) add(unit *ast.Unit, problems []diag.Problem) []diag.Problem {
	if unit == nil || unit.Sources == nil {
		return problems
	}
	remap := make(map[source.FileID]source.FileID)
	mapSpan := func(sp source.Span) source.Span {
		if id, ok := remap[sp.File]; ok {
			sp.File = id
			return sp
		}
		f := unit.Sources.Get(sp.File)
		if f == nil {
			return sp
		}
		key := f.Path + "\x00" + string(f.Hash[:])
		id, ok := m.byKey[key]
		if !ok {
			id = m.fs.Add(f.Path, f.Content, f.Flags)
			m.byKey[key] = id
		}
		remap[sp.File] = id
		sp.File = id
		return sp
	}

	out := make([]diag.Problem, len(problems))
	for i, p := range problems {
		p.Span = mapSpan(p.Span)
		if len(p.Notes) > 0 {
			notes := make([]diag.Note, len(p.Notes))
			for j, n := range p.Notes {
				n.Span = mapSpan(n.Span)
				notes[j] = n
			}
			p.Notes = notes
		}
		out[i] = p
	}
	return out
}
