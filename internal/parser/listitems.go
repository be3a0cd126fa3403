package parser

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ListItem is the structural metadata for one markdown list item: where it
// starts in the source. Line numbers are 0-based.
type ListItem struct {
	Line int
}

// ExtractListItems walks the goldmark AST and returns the starting line of
// every list item in the document. The task syntax itself is matched against
// the raw source line; goldmark only supplies the structure.
func ExtractListItems(content string) []ListItem {
	md := goldmark.New()
	reader := text.NewReader([]byte(content))
	doc := md.Parser().Parse(reader)

	lineStarts := computeLineStarts(content)

	var items []ListItem
	seen := make(map[int]bool)
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		item, ok := n.(*ast.ListItem)
		if !ok {
			return ast.WalkContinue, nil
		}

		// A list item's own Lines() is often empty; the first text-bearing
		// child carries the segment.
		offset, ok := firstSegmentStart(item)
		if !ok {
			return ast.WalkContinue, nil
		}

		line := offsetToLine(lineStarts, offset)
		if seen[line] {
			return ast.WalkContinue, nil
		}
		seen[line] = true
		items = append(items, ListItem{Line: line})
		return ast.WalkContinue, nil
	})

	return items
}

// firstSegmentStart finds the byte offset of the first source segment under n.
// Nested lists are not descended into: an empty bullet whose only content is
// a sublist has no source line of its own, and its children report their own
// lines when the walk reaches them.
func firstSegmentStart(n ast.Node) (int, bool) {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(0).Start, true
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if _, isList := child.(*ast.List); isList {
			continue
		}
		if offset, ok := firstSegmentStart(child); ok {
			return offset, true
		}
	}
	return 0, false
}

// computeLineStarts computes the byte offset of each line start.
func computeLineStarts(content string) []int {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// offsetToLine converts a byte offset to a 0-indexed line number.
func offsetToLine(lineStarts []int, offset int) int {
	for i := len(lineStarts) - 1; i >= 0; i-- {
		if lineStarts[i] <= offset {
			return i
		}
	}
	return 0
}
