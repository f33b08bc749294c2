// Package debug provides debug visualization utilities.
package debug

import "github.com/Faultbox/logo-teaser/pkg/math"

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// GenerateBBoxWireframeVertices creates line vertices for a wireframe bounding box.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
func GenerateBBoxWireframeVertices(minX, minY, minZ, maxX, maxY, maxZ float32) []float32 {
	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// BoxWireframe returns wireframe vertices for b grown by padding on every side.
// Empty boxes yield nil.
func BoxWireframe(b math.Box3, padding float32) []float32 {
	if b.IsEmpty() {
		return nil
	}
	lo := b.Min.Sub(math.Vec3{X: padding, Y: padding, Z: padding})
	hi := b.Max.Add(math.Vec3{X: padding, Y: padding, Z: padding})
	return GenerateBBoxWireframeVertices(lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
}
