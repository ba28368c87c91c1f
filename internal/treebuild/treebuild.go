// Package treebuild assembles heading-leveled outlines into node trees.
package treebuild

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/treerag/internal/doctree"
	"github.com/dgallion1/treerag/internal/outline"
)

// ErrEmptyOutline is returned when an outline has no headings and no text.
var ErrEmptyOutline = errors.New("empty outline")

// PrefaceTitle names the synthetic node holding text that precedes the first
// heading of an outline that has headings.
const PrefaceTitle = "Preface"

// Build turns an outline into a tree named name. Each heading opens a node
// whose children are the following headings of greater level, up to the next
// heading of equal or lesser level. Body lines belong to the most recent node.
// Lines inside ``` fences are always body.
func Build(text, name string) (*doctree.Tree, error) {
	lines := strings.Split(text, "\n")

	var (
		roots   []*doctree.Node
		stack   []*doctree.Node
		body    = map[*doctree.Node][]string{}
		preface []string
		inFence bool
	)

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		if !inFence {
			if level, title, ok := outline.ParseHeading(line); ok {
				n := &doctree.Node{Title: title, Level: level}
				for len(stack) > 0 && stack[len(stack)-1].Level >= level {
					stack = stack[:len(stack)-1]
				}
				if len(stack) == 0 {
					roots = append(roots, n)
				} else {
					parent := stack[len(stack)-1]
					parent.Children = append(parent.Children, n)
				}
				stack = append(stack, n)
				continue
			}
		}
		if len(stack) == 0 {
			preface = append(preface, line)
			continue
		}
		top := stack[len(stack)-1]
		body[top] = append(body[top], line)
	}

	doctree.Walk(roots, func(n *doctree.Node, _ int) bool {
		n.Text = strings.TrimSpace(strings.Join(body[n], "\n"))
		return true
	})

	if pre := strings.TrimSpace(strings.Join(preface, "\n")); pre != "" {
		title := PrefaceTitle
		if len(roots) == 0 {
			title = name
		}
		roots = append([]*doctree.Node{{Title: title, Level: 1, Text: pre}}, roots...)
	}

	if len(roots) == 0 {
		return nil, fmt.Errorf("build tree %q: %w", name, ErrEmptyOutline)
	}

	AssignNodeIDs(roots)
	return &doctree.Tree{Name: name, Structure: roots}, nil
}

// AssignNodeIDs numbers nodes in pre-order as zero-padded four digit ids
// starting at 0000.
func AssignNodeIDs(roots []*doctree.Node) {
	counter := 0
	doctree.Walk(roots, func(n *doctree.Node, _ int) bool {
		n.NodeID = fmt.Sprintf("%04d", counter)
		counter++
		return true
	})
}
