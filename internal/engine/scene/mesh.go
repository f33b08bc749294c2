package scene

import (
	gomath "math"

	"github.com/Faultbox/logo-teaser/pkg/math"
)

// Vertex is a mesh vertex as uploaded to the GPU (position + normal, tightly packed).
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// DefaultColor is the base colour of meshes without a material: polished silver.
var DefaultColor = [3]float32{0.91, 0.92, 0.92}

// Mesh holds indexed triangle geometry in the owning node's local frame.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   math.Box3
	Color    [3]float32
}

// NewMesh builds a mesh and computes its local bounds.
func NewMesh(vertices []Vertex, indices []uint32) *Mesh {
	m := &Mesh{Vertices: vertices, Indices: indices, Color: DefaultColor}
	m.UpdateBounds()
	return m
}

// UpdateBounds recomputes Bounds from the vertex positions.
func (m *Mesh) UpdateBounds() {
	b := math.EmptyBox3()
	for _, v := range m.Vertices {
		b = b.ExpandByPoint(math.Vec3{X: v.Position[0], Y: v.Position[1], Z: v.Position[2]})
	}
	m.Bounds = b
}

// TriangleCount returns the number of indexed triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// ComputeNormals replaces vertex normals with area-weighted smooth normals.
// Degenerate triangles contribute nothing; vertices without any contribution get +Y.
func (m *Mesh) ComputeNormals() {
	acc := make([][3]float32, len(m.Vertices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(i0) >= len(m.Vertices) || int(i1) >= len(m.Vertices) || int(i2) >= len(m.Vertices) {
			continue
		}
		p0 := m.Vertices[i0].Position
		p1 := m.Vertices[i1].Position
		p2 := m.Vertices[i2].Position
		e1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		e2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		n := cross(e1, e2)
		for _, idx := range [3]uint32{i0, i1, i2} {
			acc[idx][0] += n[0]
			acc[idx][1] += n[1]
			acc[idx][2] += n[2]
		}
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = normalize(acc[i])
	}
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v [3]float32) [3]float32 {
	length := float32(gomath.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if length < 0.0001 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{v[0] / length, v[1] / length, v[2] / length}
}
