package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"codan/internal/ast"
	"codan/internal/source"
)

type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Kind     string          `json:"kind,omitempty"`
	Name     string          `json:"name,omitempty"`
	Span     source.Span     `json:"span"`
	Macro    string          `json:"macro,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

// FormatASTPretty prints the unit as an indented outline.
func FormatASTPretty(w io.Writer, builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	file := builder.Files.Get(fileID)
	if file == nil {
		return fmt.Errorf("file %d not found", fileID)
	}
	if _, err := fmt.Fprintf(w, "%s (span: %s)\n", file.Path, formatSpan(file.Span, fs)); err != nil {
		return err
	}
	for i, d := range file.Decls {
		if err := formatNodePretty(w, builder, ast.DeclRef(d), fs, "", i == len(file.Decls)-1, 0); err != nil {
			return err
		}
	}
	return nil
}

func formatNodePretty(w io.Writer, b *ast.Builder, ref ast.NodeRef, fs *source.FileSet, prefix string, last bool, depth int) error {
	branch, next := "├─ ", "│  "
	if last {
		branch, next = "└─ ", "   "
	}
	if _, err := fmt.Fprintf(w, "%s%s%s (span: %s)\n", prefix, branch, nodeLabel(b, ref), formatSpan(b.SpanOf(ref), fs)); err != nil {
		return err
	}
	if depth >= maxTreeDepth {
		return nil
	}
	children := b.Children(ref)
	for i, child := range children {
		if err := formatNodePretty(w, b, child, fs, prefix+next, i == len(children)-1, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// FormatASTTree draws the unit as an ASCII tree, parents centered above
// their children.
func FormatASTTree(w io.Writer, builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	if builder.Files.Get(fileID) == nil {
		return fmt.Errorf("file %d not found", fileID)
	}
	block := renderTree(buildFileTreeNode(builder, fileID, fs))
	for _, line := range block.lines {
		if _, err := io.WriteString(w, strings.TrimRight(line, " ")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// FormatASTJSON writes the unit as nested JSON nodes.
func FormatASTJSON(w io.Writer, builder *ast.Builder, fileID ast.FileID) error {
	file := builder.Files.Get(fileID)
	if file == nil {
		return fmt.Errorf("file %d not found", fileID)
	}
	output := ASTNodeOutput{Type: "File", Name: file.Path, Span: file.Span}
	for _, d := range file.Decls {
		output.Children = append(output.Children, nodeJSON(builder, ast.DeclRef(d), 0))
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func nodeJSON(b *ast.Builder, ref ast.NodeRef, depth int) ASTNodeOutput {
	out := ASTNodeOutput{Span: b.SpanOf(ref)}
	switch ref.Kind {
	case ast.NodeDecl:
		out.Type = "Decl"
		if d := b.Decls.Get(ast.DeclID(ref.ID)); d != nil {
			out.Kind, out.Name = d.Kind.String(), d.Name
		}
	case ast.NodeStmt:
		out.Type = "Stmt"
		if s := b.Stmts.Get(ast.StmtID(ref.ID)); s != nil {
			out.Kind = s.Kind.String()
		}
	case ast.NodeExpr:
		out.Type = "Expr"
		if e := b.Exprs.Get(ast.ExprID(ref.ID)); e != nil {
			out.Kind = e.Kind.String()
		}
		if ident, ok := b.Exprs.Ident(ast.ExprID(ref.ID)); ok {
			out.Name = ident.Name
		}
	}
	if m := b.MacroOf(ref); m.IsValid() {
		if exp := b.Macros.Get(m); exp != nil {
			out.Macro = exp.Name
		}
	}
	if depth < maxTreeDepth {
		for _, child := range b.Children(ref) {
			out.Children = append(out.Children, nodeJSON(b, child, depth+1))
		}
	}
	return out
}
