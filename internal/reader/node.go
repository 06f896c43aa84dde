package reader

import "github.com/joshuapare/cratekit/pkg/types"

// NoParent marks the root node's parent index.
const NoParent = int64(-1)

// notPlaced marks nodes the hierarchy walk has not reached yet; reaching
// one twice would mean the jump table encodes a cycle.
const notPlaced = int64(-2)

// Node is one entry in the decoded path hierarchy, indexed by path index.
// Child order follows the on-disk depth-first order.
type Node struct {
	Parent     int64
	Path       types.Path
	Children   []uint32
	ChildNames []string
}

func newUnplacedNode() Node {
	return Node{Parent: notPlaced}
}

// Placed reports whether the hierarchy walk has assigned this node.
func (n Node) Placed() bool { return n.Parent != notPlaced }

// AddChild appends a child in traversal order.
func (n *Node) AddChild(name string, pathIndex uint32) {
	n.Children = append(n.Children, pathIndex)
	n.ChildNames = append(n.ChildNames, name)
}
