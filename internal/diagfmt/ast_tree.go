package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"viewc/internal/ast"
	"viewc/internal/source"
)

type treeNode struct {
	label    string
	children []*treeNode
}

// treeBlock is a rendered subtree: lines padded to width display
// columns, with the subtree root centered on column root.
type treeBlock struct {
	lines []string
	width int
	root  int
}

// FormatViewTree draws v top-down as ASCII art, parents centered above
// their children.
func FormatViewTree(w io.Writer, v *ast.View, fs *source.FileSet) error {
	if v == nil {
		return fmt.Errorf("no view")
	}
	block := renderTree(buildViewTreeNode(v, fs))
	for _, line := range block.lines {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

const treeGap = 3

func renderTree(n *treeNode) treeBlock {
	labelWidth := runewidth.StringWidth(n.label)
	if len(n.children) == 0 {
		return treeBlock{lines: []string{n.label}, width: labelWidth, root: labelWidth / 2}
	}

	kids := make([]treeBlock, len(n.children))
	roots := make([]int, len(kids))
	height, row := 0, 0
	for i, c := range n.children {
		kids[i] = renderTree(c)
		if i > 0 {
			row += treeGap
		}
		roots[i] = row + kids[i].root
		row += kids[i].width
		height = max(height, len(kids[i].lines))
	}

	center := (roots[0] + roots[len(roots)-1]) / 2
	labelStart, indent := center-labelWidth/2, 0
	if labelStart < 0 {
		// The label is wider than the children span on the left: push the
		// children right instead.
		indent, labelStart = -labelStart, 0
		center += indent
	}
	width := max(row+indent, labelStart+labelWidth, center+1)

	lines := make([]string, 0, height+2)
	lines = append(lines, padRight(strings.Repeat(" ", labelStart)+n.label, width))

	connector := []byte(strings.Repeat(" ", width))
	connector[center] = '|'
	for _, r := range roots {
		r += indent
		switch {
		case r < center:
			connector[r] = '/'
		case r > center:
			connector[r] = '\\'
		}
	}
	lines = append(lines, string(connector))

	for y := range height {
		var b strings.Builder
		b.WriteString(strings.Repeat(" ", indent))
		for i, k := range kids {
			if i > 0 {
				b.WriteString(strings.Repeat(" ", treeGap))
			}
			line := ""
			if y < len(k.lines) {
				line = k.lines[y]
			}
			b.WriteString(padRight(line, k.width))
		}
		lines = append(lines, padRight(b.String(), width))
	}
	return treeBlock{lines: lines, width: width, root: center}
}

// padRight pads s with spaces to w display columns.
func padRight(s string, w int) string {
	if gap := w - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
