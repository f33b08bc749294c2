package assets

import (
	"bytes"
	"context"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/logo-teaser/internal/engine/scene"
	"github.com/Faultbox/logo-teaser/pkg/math"
)

// LoadModel loads a glTF 2.0 model (.glb, or .gltf with embedded or
// sibling buffers) and bakes its default scene into a single mesh node.
func (p *Pipeline) LoadModel(ctx context.Context, rawURL string) (*scene.Node, error) {
	doc, err := p.openDocument(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	mesh, err := bakeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", rawURL, err)
	}

	node := scene.NewNode("model")
	node.Mesh = mesh

	size := mesh.Bounds.Size()
	p.log.Info("model loaded",
		zap.String("url", rawURL),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Float32("size_x", size.X),
		zap.Float32("size_y", size.Y),
		zap.Float32("size_z", size.Z),
	)
	return node, nil
}

func (p *Pipeline) openDocument(ctx context.Context, rawURL string) (*gltf.Document, error) {
	switch ext := extension(rawURL); ext {
	case ".glb", ".gltf":
	default:
		return nil, fmt.Errorf("%w: model %q", ErrUnsupported, ext)
	}

	// Local .gltf files may reference sibling .bin files; let the library resolve them.
	if loc, err := parseLocation(rawURL); err == nil && loc.path != "" && extension(rawURL) == ".gltf" {
		doc, err := gltf.Open(loc.path)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", rawURL, err)
		}
		return doc, nil
	}

	data, err := p.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	return doc, nil
}

// baker accumulates world-space triangles from a glTF node hierarchy.
type baker struct {
	doc      *gltf.Document
	vertices []scene.Vertex
	indices  []uint32
	color    *[3]float32
}

func bakeDocument(doc *gltf.Document) (mesh *scene.Mesh, err error) {
	// modeler slices buffers by the offsets the file declares.
	defer func() {
		if r := recover(); r != nil {
			mesh, err = nil, fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	b := &baker{doc: doc}
	for _, root := range sceneRoots(doc) {
		if err := b.walk(root, math.Identity(), 0); err != nil {
			return nil, err
		}
	}
	if len(b.indices) == 0 {
		return nil, ErrNoGeometry
	}

	mesh = scene.NewMesh(b.vertices, b.indices)
	if b.color != nil {
		mesh.Color = *b.color
	}
	return mesh, nil
}

// sceneRoots returns the root nodes of the default scene, or of the first
// scene, or every parentless node when the document has no scenes.
func sceneRoots(doc *gltf.Document) []*gltf.Node {
	var roots []*gltf.Node
	if len(doc.Scenes) > 0 {
		s := doc.Scenes[0]
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			s = doc.Scenes[*doc.Scene]
		}
		for _, idx := range s.Nodes {
			if int(idx) < len(doc.Nodes) {
				roots = append(roots, doc.Nodes[idx])
			}
		}
		return roots
	}

	isChild := make(map[*gltf.Node]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(doc.Nodes) {
				isChild[doc.Nodes[c]] = true
			}
		}
	}
	for _, n := range doc.Nodes {
		if !isChild[n] {
			roots = append(roots, n)
		}
	}
	return roots
}

// maxDepth guards against cyclic node graphs in malformed files.
const maxDepth = 64

func (b *baker) walk(n *gltf.Node, parent math.Mat4, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("node hierarchy deeper than %d", maxDepth)
	}
	world := parent.Mul(nodeMatrix(n))

	if n.Mesh != nil && int(*n.Mesh) < len(b.doc.Meshes) {
		for _, prim := range b.doc.Meshes[*n.Mesh].Primitives {
			if err := b.addPrimitive(prim, world); err != nil {
				return fmt.Errorf("mesh %q: %w", b.doc.Meshes[*n.Mesh].Name, err)
			}
		}
	}

	for _, c := range n.Children {
		if int(c) >= len(b.doc.Nodes) {
			continue
		}
		if err := b.walk(b.doc.Nodes[c], world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

var identity64 = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// nodeMatrix returns the node's local transform: its matrix when one is set,
// otherwise T * R * S.
func nodeMatrix(n *gltf.Node) math.Mat4 {
	if n.Matrix != identity64 && n.Matrix != [16]float64{} {
		return math.FromFloat64(n.Matrix)
	}
	t := n.TranslationOrDefault()
	s := n.ScaleOrDefault()
	r := math.QuatFromFloat64(n.RotationOrDefault()).Normalize()
	return math.Translate(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul(r.ToMat4()).
		Mul(math.Scale(float32(s[0]), float32(s[1]), float32(s[2])))
}

// addPrimitive appends one triangle-list primitive, transformed by world.
// Points, lines and strips are skipped.
func (b *baker) addPrimitive(prim *gltf.Primitive, world math.Mat4) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil
	}
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil
	}

	posAcr, err := b.accessor(posIdx)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(b.doc, posAcr, nil)
	if err != nil {
		return fmt.Errorf("reading positions: %w", err)
	}

	var indices []uint32
	if prim.Indices != nil {
		idxAcr, err := b.accessor(*prim.Indices)
		if err != nil {
			return fmt.Errorf("indices: %w", err)
		}
		if indices, err = modeler.ReadIndices(b.doc, idxAcr, nil); err != nil {
			return fmt.Errorf("reading indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	indices = indices[:len(indices)-len(indices)%3]
	if len(indices) == 0 {
		return nil
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return fmt.Errorf("index %d out of range (%d vertices)", idx, len(positions))
		}
	}

	local := &scene.Mesh{Vertices: make([]scene.Vertex, len(positions)), Indices: indices}
	for i, pos := range positions {
		local.Vertices[i].Position = pos
	}
	if nrmIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		nrmAcr, err := b.accessor(nrmIdx)
		if err != nil {
			return fmt.Errorf("normals: %w", err)
		}
		normals, err := modeler.ReadNormal(b.doc, nrmAcr, nil)
		if err != nil {
			return fmt.Errorf("reading normals: %w", err)
		}
		if len(normals) != len(positions) {
			return fmt.Errorf("%d normals for %d positions", len(normals), len(positions))
		}
		for i, nrm := range normals {
			local.Vertices[i].Normal = nrm
		}
	} else {
		local.ComputeNormals()
	}

	base := uint32(len(b.vertices))
	for _, v := range local.Vertices {
		pos := world.TransformPoint(v.Position)
		nrm := math.Vec3{X: 0, Y: 1, Z: 0}
		if d := world.TransformDirection(v.Normal); d != [3]float32{} {
			nrm = math.Vec3{X: d[0], Y: d[1], Z: d[2]}.Normalize()
		}
		b.vertices = append(b.vertices, scene.Vertex{Position: pos, Normal: nrm.Array()})
	}
	for _, idx := range indices {
		b.indices = append(b.indices, base+idx)
	}

	if b.color == nil {
		b.color = b.materialColor(prim)
	}
	return nil
}

func (b *baker) accessor(idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(b.doc.Accessors) || b.doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("%w: accessor %d of %d", ErrMalformed, idx, len(b.doc.Accessors))
	}
	return b.doc.Accessors[idx], nil
}

// materialColor returns the base colour factor of the primitive's material, if any.
func (b *baker) materialColor(prim *gltf.Primitive) *[3]float32 {
	if prim.Material == nil || int(*prim.Material) >= len(b.doc.Materials) {
		return nil
	}
	pbr := b.doc.Materials[*prim.Material].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		return nil
	}
	f := pbr.BaseColorFactor
	return &[3]float32{float32(f[0]), float32(f[1]), float32(f[2])}
}
