// Package scene provides the scene graph the teaser renders: a root node,
// the rig the logo hangs from, and the lights that shade it.
package scene

import (
	"github.com/Faultbox/logo-teaser/internal/engine/lighting"
	"github.com/Faultbox/logo-teaser/pkg/math"
)

// RigName is the name of the node whose rotation the motion controller drives.
const RigName = "rig"

// Scene holds everything drawn in one frame.
type Scene struct {
	Root        *Node
	Rig         *Node
	Light       lighting.Directional
	Environment *lighting.Environment
	ClearColor  [3]float32

	model *Node
}

// NewScene creates a scene with an empty rig posed at base.
func NewScene(base math.Vec3, light lighting.Directional) *Scene {
	root := NewNode("root")
	rig := NewNode(RigName)
	rig.Rotation = base
	root.Add(rig)

	return &Scene{
		Root:        root,
		Rig:         rig,
		Light:       light,
		Environment: lighting.DefaultEnvironment(),
	}
}

// SetModel replaces the rig's content with model. A nil model clears it.
func (s *Scene) SetModel(model *Node) {
	if s.model != nil {
		s.Rig.Remove(s.model)
	}
	s.model = model
	if model != nil {
		s.Rig.Add(model)
	}
}

// Model returns the node attached by SetModel, or nil.
func (s *Scene) Model() *Node {
	return s.model
}

// SetEnvironment installs env as the ambient term. Nil restores the default.
func (s *Scene) SetEnvironment(env *lighting.Environment) {
	if env == nil {
		env = lighting.DefaultEnvironment()
	}
	s.Environment = env
}

// Meshes returns every visible mesh with its world matrix.
func (s *Scene) Meshes() []Drawable {
	var out []Drawable
	s.Root.Traverse(func(n *Node) {
		if n.Mesh == nil || !n.Visible {
			return
		}
		out = append(out, Drawable{Node: n, Model: n.WorldMatrix()})
	})
	return out
}

// Drawable pairs a mesh-carrying node with its world transform.
type Drawable struct {
	Node  *Node
	Model math.Mat4
}
