package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"tacc/internal/ast"
	"tacc/internal/source"
)

type treeNode struct {
	label    string
	children []*treeNode
}

type treeBlock struct {
	lines []string
	width int // display columns
	root  int // column of the root connector
}

// FormatASTTree draws the program top-down with / | \ connectors.
func FormatASTTree(w io.Writer, builder *ast.Builder, fs *source.FileSet) error {
	block := renderTree(buildProgramTree(builder, fs))
	for _, line := range block.lines {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// padRight pads s with spaces up to width display columns.
func padRight(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// renderTree lays out children side by side under a centered parent.
// Widths are display widths: identifiers and string literals may hold
// wide runes.
func renderTree(node *treeNode) treeBlock {
	label := node.label
	labelWidth := runewidth.StringWidth(label)

	if len(node.children) == 0 {
		return treeBlock{lines: []string{label}, width: labelWidth, root: labelWidth / 2}
	}

	const spacing = 3

	blocks := make([]treeBlock, len(node.children))
	height := 0
	for i, child := range node.children {
		blocks[i] = renderTree(child)
		height = max(height, len(blocks[i].lines))
	}

	positions := make([]int, len(blocks))
	total := 0
	for i, b := range blocks {
		positions[i] = total + b.root
		total += b.width
		if i != len(blocks)-1 {
			total += spacing
		}
	}

	center := (positions[0] + positions[len(positions)-1]) / 2
	rootPos := labelWidth / 2
	shift := center - rootPos

	// The label is wider on the left than the children: push children right.
	indent := 0
	if shift < 0 {
		indent = -shift
		for i := range positions {
			positions[i] += indent
		}
		total += indent
		shift = 0
	} else {
		rootPos += shift
	}

	width := max(total, shift+labelWidth, rootPos+1)
	rootLine := padRight(strings.Repeat(" ", shift)+label, width)

	connector := []byte(strings.Repeat(" ", width))
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

	lines := make([]string, 0, 2+height)
	lines = append(lines, rootLine, string(connector))
	for row := range height {
		var sb strings.Builder
		sb.WriteString(strings.Repeat(" ", indent))
		for i, b := range blocks {
			line := ""
			if row < len(b.lines) {
				line = b.lines[row]
			}
			sb.WriteString(padRight(line, b.width))
			if i != len(blocks)-1 {
				sb.WriteString(strings.Repeat(" ", spacing))
			}
		}
		lines = append(lines, padRight(sb.String(), width))
	}

	return treeBlock{lines: lines, width: width, root: rootPos}
}
