package math

// Box3 is an axis-aligned bounding box.
// An empty box has Min > Max on every axis; see EmptyBox3.
type Box3 struct {
	Min Vec3
	Max Vec3
}

// EmptyBox3 returns a box that contains nothing; expanding it by any point yields that point.
func EmptyBox3() Box3 {
	return Box3{
		Min: Vec3{1e30, 1e30, 1e30},
		Max: Vec3{-1e30, -1e30, -1e30},
	}
}

// IsEmpty reports whether the box contains no points.
func (b Box3) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// ExpandByPoint grows the box to contain p.
func (b Box3) ExpandByPoint(p Vec3) Box3 {
	return Box3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b Box3) Union(other Box3) Box3 {
	if other.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return other
	}
	return Box3{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Size returns the per-axis extent. Empty boxes have zero size.
func (b Box3) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint. Empty boxes are centered at the origin.
func (b Box3) Center() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Scale(0.5)
}

// Corners returns the eight corners of the box.
func (b Box3) Corners() [8]Vec3 {
	lo, hi := b.Min, b.Max
	return [8]Vec3{
		{lo.X, lo.Y, lo.Z}, {hi.X, lo.Y, lo.Z},
		{lo.X, hi.Y, lo.Z}, {hi.X, hi.Y, lo.Z},
		{lo.X, lo.Y, hi.Z}, {hi.X, lo.Y, hi.Z},
		{lo.X, hi.Y, hi.Z}, {hi.X, hi.Y, hi.Z},
	}
}

// Transform returns the axis-aligned box enclosing b after applying m to its corners.
func (b Box3) Transform(m Mat4) Box3 {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox3()
	for _, c := range b.Corners() {
		out = out.ExpandByPoint(m.TransformVec3(c))
	}
	return out
}
