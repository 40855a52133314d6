package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"tacc/internal/ast"
	"tacc/internal/source"
)

type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Span     source.Span     `json:"span"`
	Text     string          `json:"text,omitempty"`
	Fields   map[string]any  `json:"fields,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

// FormatASTPretty prints the program as an indented ├─/└─ outline.
func FormatASTPretty(w io.Writer, builder *ast.Builder, fs *source.FileSet) error {
	root := buildProgramTree(builder, fs)
	if _, err := fmt.Fprintln(w, root.label); err != nil {
		return err
	}
	return writeOutline(w, root.children, "")
}

func writeOutline(w io.Writer, nodes []*treeNode, prefix string) error {
	for i, n := range nodes {
		branch, next := "├─ ", "│  "
		if i == len(nodes)-1 {
			branch, next = "└─ ", "   "
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, n.label); err != nil {
			return err
		}
		if err := writeOutline(w, n.children, prefix+next); err != nil {
			return err
		}
	}
	return nil
}

// FormatASTJSON writes the program as nested ASTNodeOutput objects.
func FormatASTJSON(w io.Writer, builder *ast.Builder) error {
	out := ASTNodeOutput{Type: "Program", Span: builder.Program.Span}
	for _, id := range builder.Program.Stmts {
		out.Children = append(out.Children, stmtJSON(builder, id))
	}
	return writeJSON(w, out)
}

func buildProgramTree(b *ast.Builder, fs *source.FileSet) *treeNode {
	header := "Program"
	if fs != nil && int(b.Program.Span.File) < fs.Len() {
		header = fs.Get(b.Program.Span.File).FormatPath("auto", fs.BaseDir())
	}
	root := &treeNode{label: fmt.Sprintf("%s (span: %s)", header, formatSpan(b.Program.Span, fs))}
	for _, id := range b.Program.Stmts {
		root.children = append(root.children, stmtNode(b, id, fs))
	}
	return root
}

func stmtNode(b *ast.Builder, id ast.StmtID, fs *source.FileSet) *treeNode {
	st := b.Stmts.Get(id)
	if st == nil {
		return &treeNode{label: "<nil stmt>"}
	}
	node := &treeNode{label: fmt.Sprintf("%s (span: %s)", st.Kind, formatSpan(st.Span, fs))}
	add := func(n ...*treeNode) { node.children = append(node.children, n...) }
	leaf := func(format string, args ...any) *treeNode { return &treeNode{label: fmt.Sprintf(format, args...)} }

	switch st.Kind {
	case ast.StmtLet:
		if s, ok := b.Stmts.Let(id); ok {
			add(leaf("Name: %s", s.Name), exprNode(b, s.Value, "Value"))
		}
	case ast.StmtAssign:
		if s, ok := b.Stmts.Assign(id); ok {
			add(leaf("Target: %s", s.Name), exprNode(b, s.Value, "Value"))
		}
	case ast.StmtIf:
		if s, ok := b.Stmts.If(id); ok {
			add(exprNode(b, s.Cond, "Cond"), blockNode(b, "Then", s.Then, fs))
			if s.HasElse {
				add(blockNode(b, "Else", s.Else, fs))
			}
		}
	case ast.StmtWhile:
		if s, ok := b.Stmts.While(id); ok {
			add(exprNode(b, s.Cond, "Cond"), blockNode(b, "Body", s.Body, fs))
		}
	case ast.StmtFunction:
		if s, ok := b.Stmts.Function(id); ok {
			names := make([]string, len(s.Params))
			for i, p := range s.Params {
				names[i] = p.Name
			}
			add(leaf("Name: %s", s.Name), leaf("Params: (%s)", strings.Join(names, ", ")), blockNode(b, "Body", s.Body, fs))
		}
	case ast.StmtReturn:
		if s, ok := b.Stmts.Return(id); ok && s.Value.IsValid() {
			add(exprNode(b, s.Value, "Value"))
		}
	case ast.StmtPrint:
		if s, ok := b.Stmts.Print(id); ok {
			add(exprNode(b, s.Value, "Value"))
		}
	case ast.StmtExpr:
		if s, ok := b.Stmts.Expr(id); ok {
			add(exprNode(b, s.Value, "Expr"))
		}
	}
	return node
}

func blockNode(b *ast.Builder, label string, stmts []ast.StmtID, fs *source.FileSet) *treeNode {
	n := &treeNode{label: fmt.Sprintf("%s [%d]", label, len(stmts))}
	for _, id := range stmts {
		n.children = append(n.children, stmtNode(b, id, fs))
	}
	return n
}

// exprNode collapses an expression to one inline line; the syntax tree of
// this language is shallow enough that nested expression nodes add noise.
func exprNode(b *ast.Builder, id ast.ExprID, role string) *treeNode {
	return &treeNode{label: fmt.Sprintf("%s: %s", role, formatExprInline(b, id))}
}

// formatExprInline renders an expression fully parenthesized, so the
// parsed precedence is visible: `x + y * 2` becomes `(x + (y * 2))`.
func formatExprInline(b *ast.Builder, id ast.ExprID) string {
	e := b.Exprs.Get(id)
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ast.ExprIdent:
		if d, ok := b.Exprs.Ident(id); ok {
			return d.Name
		}
	case ast.ExprLit:
		if d, ok := b.Exprs.Literal(id); ok {
			return d.Value
		}
	case ast.ExprBinary:
		if d, ok := b.Exprs.Binary(id); ok {
			return fmt.Sprintf("(%s %s %s)", formatExprInline(b, d.Left), d.Op, formatExprInline(b, d.Right))
		}
	case ast.ExprUnary:
		if d, ok := b.Exprs.Unary(id); ok {
			return d.Op.String() + formatExprInline(b, d.Operand)
		}
	case ast.ExprCall:
		if d, ok := b.Exprs.Call(id); ok {
			args := make([]string, len(d.Args))
			for i, a := range d.Args {
				args[i] = formatExprInline(b, a)
			}
			return fmt.Sprintf("%s(%s)", d.Name, strings.Join(args, ", "))
		}
	case ast.ExprGroup:
		if d, ok := b.Exprs.Group(id); ok {
			return formatExprInline(b, d.Inner)
		}
	}
	return "<?>"
}

func stmtJSON(b *ast.Builder, id ast.StmtID) ASTNodeOutput {
	st := b.Stmts.Get(id)
	if st == nil {
		return ASTNodeOutput{Type: "Invalid"}
	}
	out := ASTNodeOutput{Type: st.Kind.String(), Span: st.Span, Fields: map[string]any{}}
	block := func(ids []ast.StmtID) []ASTNodeOutput {
		res := make([]ASTNodeOutput, 0, len(ids))
		for _, c := range ids {
			res = append(res, stmtJSON(b, c))
		}
		return res
	}

	switch st.Kind {
	case ast.StmtLet:
		if s, ok := b.Stmts.Let(id); ok {
			out.Fields["name"] = s.Name
			out.Children = []ASTNodeOutput{exprJSON(b, s.Value)}
		}
	case ast.StmtAssign:
		if s, ok := b.Stmts.Assign(id); ok {
			out.Fields["name"] = s.Name
			out.Children = []ASTNodeOutput{exprJSON(b, s.Value)}
		}
	case ast.StmtIf:
		if s, ok := b.Stmts.If(id); ok {
			out.Fields["then"] = block(s.Then)
			if s.HasElse {
				out.Fields["else"] = block(s.Else)
			}
			out.Children = []ASTNodeOutput{exprJSON(b, s.Cond)}
		}
	case ast.StmtWhile:
		if s, ok := b.Stmts.While(id); ok {
			out.Fields["body"] = block(s.Body)
			out.Children = []ASTNodeOutput{exprJSON(b, s.Cond)}
		}
	case ast.StmtFunction:
		if s, ok := b.Stmts.Function(id); ok {
			params := make([]string, len(s.Params))
			for i, p := range s.Params {
				params[i] = p.Name
			}
			out.Fields["name"] = s.Name
			out.Fields["params"] = params
			out.Children = block(s.Body)
		}
	case ast.StmtReturn:
		if s, ok := b.Stmts.Return(id); ok && s.Value.IsValid() {
			out.Children = []ASTNodeOutput{exprJSON(b, s.Value)}
		}
	case ast.StmtPrint:
		if s, ok := b.Stmts.Print(id); ok {
			out.Children = []ASTNodeOutput{exprJSON(b, s.Value)}
		}
	case ast.StmtExpr:
		if s, ok := b.Stmts.Expr(id); ok {
			out.Children = []ASTNodeOutput{exprJSON(b, s.Value)}
		}
	}
	if len(out.Fields) == 0 {
		out.Fields = nil
	}
	return out
}

func exprJSON(b *ast.Builder, id ast.ExprID) ASTNodeOutput {
	e := b.Exprs.Get(id)
	if e == nil {
		return ASTNodeOutput{Type: "Invalid"}
	}
	out := ASTNodeOutput{Type: e.Kind.String(), Span: e.Span}
	switch e.Kind {
	case ast.ExprIdent:
		if d, ok := b.Exprs.Ident(id); ok {
			out.Text = d.Name
		}
	case ast.ExprLit:
		if d, ok := b.Exprs.Literal(id); ok {
			out.Text = d.Value
			out.Fields = map[string]any{"literal": d.Kind.String()}
		}
	case ast.ExprBinary:
		if d, ok := b.Exprs.Binary(id); ok {
			out.Text = d.Op.String()
			out.Children = []ASTNodeOutput{exprJSON(b, d.Left), exprJSON(b, d.Right)}
		}
	case ast.ExprUnary:
		if d, ok := b.Exprs.Unary(id); ok {
			out.Text = d.Op.String()
			out.Children = []ASTNodeOutput{exprJSON(b, d.Operand)}
		}
	case ast.ExprCall:
		if d, ok := b.Exprs.Call(id); ok {
			out.Text = d.Name
			for _, a := range d.Args {
				out.Children = append(out.Children, exprJSON(b, a))
			}
		}
	case ast.ExprGroup:
		if d, ok := b.Exprs.Group(id); ok {
			out.Children = []ASTNodeOutput{exprJSON(b, d.Inner)}
		}
	}
	return out
}

func formatSpan(sp source.Span, fs *source.FileSet) string {
	if fs == nil || int(sp.File) >= fs.Len() {
		return sp.String()
	}
	start, end := fs.Resolve(sp)
	return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
}
