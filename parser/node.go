package parser

import (
	"sort"
	"strings"

	"github.com/erraggy/xmltools/xmlerrors"
)

// Node is one parsed element: a sanitized name, its attributes, its own
// character data, and the child elements it exclusively owns.
//
// The parent back-reference is a relation used only for cycle detection; it
// never carries ownership, so dropping a subtree releases it regardless of
// back-references.
type Node struct {
	// Name is the sanitized tag name
	Name string
	// Attributes maps sanitized attribute names to sanitized values.
	// A duplicate name within one tag overwrites the earlier value.
	Attributes map[string]string
	// Text is the node's own character data after entity resolution and
	// sanitization, with surrounding whitespace trimmed
	Text string
	// Children holds the child elements in document order
	Children []*Node

	parent *Node
	depth  int
}

func newNode(name string, depth int) *Node {
	return &Node{
		Name:       name,
		Attributes: make(map[string]string),
		depth:      depth,
	}
}

// Depth returns the number of ancestors above this node (root = 0).
func (n *Node) Depth() int {
	return n.depth
}

// Parent returns the node this one is attached to, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// AddChild attaches child to n, setting the child's back-reference. The
// attachment is rejected if it would create a cycle through the parent
// chain, in which case the back-reference is rolled back and no tree is
// modified.
func (n *Node) AddChild(child *Node) error {
	prev := child.parent
	child.parent = n
	if child.hasCircularReference() {
		child.parent = prev
		return &xmlerrors.SyntaxError{Message: "circular reference detected"}
	}
	n.Children = append(n.Children, child)
	return nil
}

// hasCircularReference walks the parent chain and reports whether any node
// repeats.
func (n *Node) hasCircularReference() bool {
	visited := make(map[*Node]struct{})
	for cur := n; cur != nil; cur = cur.parent {
		if _, ok := visited[cur]; ok {
			return true
		}
		visited[cur] = struct{}{}
	}
	return false
}

// Query descends the '/'-delimited sequence of child tag names and returns
// the text content of the final match. Any step without a matching child
// yields the empty string. The first matching child wins at each step; this
// is a minimal single-result accessor, not a query language.
func (n *Node) Query(path string) string {
	if n == nil {
		return ""
	}
	cur := n
	for part := range strings.SplitSeq(path, "/") {
		if part == "" {
			continue
		}
		var next *Node
		for _, c := range cur.Children {
			if c.Name == part {
				next = c
				break
			}
		}
		if next == nil {
			return ""
		}
		cur = next
	}
	return cur.Text
}

// Walk visits n and every descendant in document order, calling fn for
// each node. Returning false from fn prunes that node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Render pretty-prints the subtree rooted at n. Childless, textless nodes
// render self-closing; attributes render in sorted order so output is
// deterministic. The output re-parses to an equivalent tree and is intended
// for diagnostics and tests.
func (n *Node) Render() string {
	var b strings.Builder
	n.render(&b, 0)
	return b.String()
}

func (n *Node) render(b *strings.Builder, indentLevel int) {
	indent := strings.Repeat("  ", indentLevel)
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(n.Name)

	names := make([]string, 0, len(n.Attributes))
	for name := range n.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(n.Attributes[name])
		b.WriteByte('"')
	}

	if len(n.Children) == 0 && n.Text == "" {
		b.WriteString("/>\n")
		return
	}

	b.WriteByte('>')
	b.WriteString(n.Text)
	if len(n.Children) > 0 {
		b.WriteByte('\n')
		for _, child := range n.Children {
			child.render(b, indentLevel+1)
		}
		b.WriteString(indent)
	}
	b.WriteString("</")
	b.WriteString(n.Name)
	b.WriteString(">\n")
}
