package scene

import "github.com/Faultbox/logo-teaser/pkg/math"

// Node is a transform in the scene graph. Rotation is Euler XYZ in radians.
// A node may carry a mesh and any number of children.
type Node struct {
	Name     string
	Position math.Vec3
	Rotation math.Vec3
	Scale    math.Vec3
	Mesh     *Mesh
	Visible  bool

	parent   *Node
	children []*Node
}

// NewNode creates a visible node with unit scale.
func NewNode(name string) *Node {
	return &Node{
		Name:    name,
		Scale:   math.Vec3{X: 1, Y: 1, Z: 1},
		Visible: true,
	}
}

// Add attaches child to n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n. It is a no-op if child is not a direct child.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Parent returns the parent node or nil for roots.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the direct children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// LocalMatrix returns T * R * S for this node.
func (n *Node) LocalMatrix() math.Mat4 {
	return math.Compose(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix returns the node's transform composed with all ancestors.
func (n *Node) WorldMatrix() math.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// Traverse calls fn for n and every descendant, depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// WorldBounds returns the world-space box enclosing every mesh under n.
func (n *Node) WorldBounds() math.Box3 {
	return n.accumulate(n.WorldMatrix())
}

// ParentBounds returns the box enclosing every mesh under n, expressed in the
// frame of n's parent (n's own transform applied, ancestors ignored).
func (n *Node) ParentBounds() math.Box3 {
	return n.accumulate(n.LocalMatrix())
}

func (n *Node) accumulate(m math.Mat4) math.Box3 {
	b := math.EmptyBox3()
	if n.Mesh != nil {
		b = b.Union(n.Mesh.Bounds.Transform(m))
	}
	for _, c := range n.children {
		b = b.Union(c.accumulate(m.Mul(c.LocalMatrix())))
	}
	return b
}
