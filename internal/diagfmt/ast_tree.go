package diagfmt

import (
	"fmt"
	"strings"

	"codan/internal/ast"
	"codan/internal/source"
)

type treeNode struct {
	label    string
	children []*treeNode
}

type treeBlock struct {
	lines []string
	width int
	root  int
}

// maxTreeDepth bounds the dump of pathologically nested input.
const maxTreeDepth = 256

// buildFileTreeNode constructs the tree of a translation unit: the file
// header followed by one subtree per top-level declaration.
func buildFileTreeNode(builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) *treeNode {
	file := builder.Files.Get(fileID)
	if file == nil {
		return &treeNode{label: fmt.Sprintf("File[%d]: <nil>", fileID)}
	}
	root := &treeNode{label: fmt.Sprintf("%s (span: %s)", file.Path, formatSpan(file.Span, fs))}
	for _, d := range file.Decls {
		root.children = append(root.children, buildNodeTree(builder, ast.DeclRef(d), fs, 0))
	}
	return root
}

func buildNodeTree(builder *ast.Builder, ref ast.NodeRef, fs *source.FileSet, depth int) *treeNode {
	node := &treeNode{label: fmt.Sprintf("%s (span: %s)", nodeLabel(builder, ref), formatSpan(builder.SpanOf(ref), fs))}
	if depth >= maxTreeDepth {
		node.children = append(node.children, &treeNode{label: "..."})
		return node
	}
	for _, child := range builder.Children(ref) {
		node.children = append(node.children, buildNodeTree(builder, child, fs, depth+1))
	}
	return node
}

// nodeLabel is the one-line summary of a node: its category, kind and the
// name or operator that identifies it.
func nodeLabel(b *ast.Builder, ref ast.NodeRef) string {
	switch ref.Kind {
	case ast.NodeDecl:
		d := b.Decls.Get(ast.DeclID(ref.ID))
		if d == nil {
			return "Decl: <nil>"
		}
		label := "Decl " + d.Kind.String()
		if d.Kind == ast.DeclFunction {
			if sig := b.Signature(ast.DeclID(ref.ID)); sig != "" {
				return label + " " + sig
			}
		}
		if d.Name != "" {
			label += " " + d.Name
		}
		return label
	case ast.NodeStmt:
		s := b.Stmts.Get(ast.StmtID(ref.ID))
		if s == nil {
			return "Stmt: <nil>"
		}
		label := "Stmt " + s.Kind.String()
		if len(s.Attrs) > 0 {
			label += " [[" + strings.Join(s.Attrs, ", ") + "]]"
		}
		return label
	case ast.NodeExpr:
		id := ast.ExprID(ref.ID)
		e := b.Exprs.Get(id)
		if e == nil {
			return "Expr: <nil>"
		}
		label := "Expr " + e.Kind.String()
		switch e.Kind {
		case ast.ExprIdent:
			if ident, ok := b.Exprs.Ident(id); ok {
				label += " " + ident.Name
			}
		case ast.ExprLiteral:
			if lit, ok := b.Exprs.Literal(id); ok {
				label += " " + lit.Text
			}
		case ast.ExprBinary:
			if bin, ok := b.Exprs.Binary(id); ok {
				label += " " + bin.Op.String()
			}
		case ast.ExprMember:
			if m, ok := b.Exprs.Member(id); ok {
				if m.Arrow {
					label += " ->" + m.Name
				} else {
					label += " ." + m.Name
				}
			}
		}
		if bn := b.Bindings.Get(b.Referenced(id)); bn != nil && bn.Kind == ast.BindProblem {
			label += " <unresolved>"
		}
		return label
	}
	return "<none>"
}

// renderTree converts a treeNode into a treeBlock containing an ASCII-art representation.
//
// The returned treeBlock.lines is a slice of strings representing the rendered lines of
// the node and its descendants arranged as a tree with connector characters. The block's
// width is the horizontal extent of the rendered lines and root is the column index of
// the root node's vertical connector within those lines.
func renderTree(node *treeNode) treeBlock {
	label := node.label
	labelWidth := len(label)

	if len(node.children) == 0 {
		return treeBlock{
			lines: []string{label},
			width: labelWidth,
			root:  labelWidth / 2,
		}
	}

	childBlocks := make([]treeBlock, len(node.children))
	maxChildHeight := 0
	for i, child := range node.children {
		childBlocks[i] = renderTree(child)
		if len(childBlocks[i].lines) > maxChildHeight {
			maxChildHeight = len(childBlocks[i].lines)
		}
	}

	const spacing = 3

	positions := make([]int, len(childBlocks))
	totalWidth := 0
	for i, block := range childBlocks {
		positions[i] = totalWidth + block.root
		totalWidth += block.width
		if i != len(childBlocks)-1 {
			totalWidth += spacing
		}
	}

	childrenCenter := (positions[0] + positions[len(positions)-1]) / 2
	rootPos := labelWidth / 2
	shift := childrenCenter - rootPos

	childPrefix := 0
	if shift < 0 {
		childPrefix = -shift
		for i := range positions {
			positions[i] += childPrefix
		}
		totalWidth += childPrefix
		shift = 0
		rootPos = labelWidth / 2
	} else {
		rootPos += shift
	}

	width := totalWidth
	rootLine := label
	if shift > 0 {
		rootLine = strings.Repeat(" ", shift) + label
	}
	if len(rootLine) < width {
		rootLine += strings.Repeat(" ", width-len(rootLine))
	} else if len(rootLine) > width {
		width = len(rootLine)
		for i := range positions {
			if positions[i] >= width {
				width = positions[i] + 1
			}
		}
		if len(rootLine) < width {
			rootLine += strings.Repeat(" ", width-len(rootLine))
		}
	}

	connector := make([]byte, width)
	for i := range connector {
		connector[i] = ' '
	}
	if rootPos >= width {
		needed := rootPos - width + 1
		rootLine += strings.Repeat(" ", needed)
		connector = append(connector, make([]byte, needed)...)
		for i := width; i < len(connector); i++ {
			connector[i] = ' '
		}
		width = len(connector)
	}
	connector[rootPos] = '|'
	for _, pos := range positions {
		switch {
		case pos < rootPos:
			connector[pos] = '/'
		case pos > rootPos:
			connector[pos] = '\\'
		default:
			connector[pos] = '|'
		}
	}
	connectorLine := string(connector)

	childLines := make([]string, maxChildHeight)
	for row := range maxChildHeight {
		var sb strings.Builder
		if childPrefix > 0 {
			sb.WriteString(strings.Repeat(" ", childPrefix))
		}
		for i, block := range childBlocks {
			line := ""
			if row < len(block.lines) {
				line = block.lines[row]
			}
			if len(line) < block.width {
				line += strings.Repeat(" ", block.width-len(line))
			}
			sb.WriteString(line)
			if i != len(childBlocks)-1 {
				sb.WriteString(strings.Repeat(" ", spacing))
			}
		}
		rowStr := sb.String()
		if len(rowStr) < width {
			rowStr += strings.Repeat(" ", width-len(rowStr))
		}
		childLines[row] = rowStr
	}

	lines := make([]string, 0, 2+len(childLines))
	lines = append(lines, rootLine, connectorLine)
	lines = append(lines, childLines...)

	return treeBlock{
		lines: lines,
		width: width,
		root:  rootPos,
	}
}
