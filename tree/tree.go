// Package tree provides the ordered, labeled hierarchy the crawl writes
// into: unique node identifiers, parent links, and two-phase labels (set at
// creation, optionally appended to once rollup counts are known).
package tree

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Node is a single entry in the tree. Nodes are owned by their Tree and have
// no existence outside it.
type Node struct {
	ID     string
	Label  string
	Parent *Node

	children []*Node
}

// Tree is a rooted hierarchy of labeled nodes with unique identifiers.
type Tree struct {
	root    *Node
	nodes   map[string]*Node
	autoSeq int
}

// New creates a tree containing only the root node.
func New(rootLabel, rootID string) *Tree {
	root := &Node{ID: rootID, Label: rootLabel}
	return &Tree{
		root:  root,
		nodes: map[string]*Node{rootID: root},
	}
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Size returns the total number of nodes, including the root.
func (t *Tree) Size() int {
	return len(t.nodes)
}

// Node looks up a node by identifier.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// CreateNode adds a child with the given label under parentID. id must be
// unique across the whole tree; pass an empty id to have one generated for
// annotation nodes that are never looked up again.
func (t *Tree) CreateNode(label, id, parentID string) error {
	parent, ok := t.nodes[parentID]
	if !ok {
		return fmt.Errorf("parent node %q not found", parentID)
	}
	if id == "" {
		t.autoSeq++
		id = fmt.Sprintf("~%d", t.autoSeq)
	}
	if _, exists := t.nodes[id]; exists {
		return fmt.Errorf("node %q already exists", id)
	}

	n := &Node{ID: id, Label: label, Parent: parent}
	t.nodes[id] = n
	parent.children = append(parent.children, n)
	return nil
}

// AppendLabel finalizes a node's label by appending text to it. Label
// mutation is the only change a node undergoes after creation.
func (t *Tree) AppendLabel(id, text string) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("node %q not found", id)
	}
	n.Label += text
	return nil
}

// Render writes an indented text representation, children in creation order.
func (t *Tree) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	t.render(bw, t.root, 0)
	return bw.Flush()
}

func (t *Tree) render(w *bufio.Writer, n *Node, depth int) {
	fmt.Fprintf(w, "%s%s\n", strings.Repeat("    ", depth), n.Label)
	for _, child := range n.children {
		t.render(w, child, depth+1)
	}
}
