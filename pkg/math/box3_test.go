package math

import (
	"math"
	"testing"
)

func TestEmptyBox3(t *testing.T) {
	b := EmptyBox3()
	if !b.IsEmpty() {
		t.Fatal("EmptyBox3 should be empty")
	}
	if b.Size() != (Vec3{}) || b.Center() != (Vec3{}) {
		t.Errorf("empty box size/center = %v/%v, want zero", b.Size(), b.Center())
	}
}

func TestBox3ExpandAndMeasure(t *testing.T) {
	b := EmptyBox3().
		ExpandByPoint(Vec3{-1, 0, 2}).
		ExpandByPoint(Vec3{3, 4, 6})
	if got := b.Size(); got != (Vec3{4, 4, 4}) {
		t.Errorf("Size() = %v, want (4,4,4)", got)
	}
	if got := b.Center(); got != (Vec3{1, 2, 4}) {
		t.Errorf("Center() = %v, want (1,2,4)", got)
	}
}

func TestBox3Union(t *testing.T) {
	a := Box3{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}
	b := Box3{Min: Vec3{-1, 2, 0}, Max: Vec3{0, 3, 5}}
	u := a.Union(b)
	want := Box3{Min: Vec3{-1, 0, 0}, Max: Vec3{1, 3, 5}}
	if u != want {
		t.Errorf("Union() = %v, want %v", u, want)
	}
	if a.Union(EmptyBox3()) != a || EmptyBox3().Union(a) != a {
		t.Error("union with empty box should be identity")
	}
}

func TestBox3TransformRotation(t *testing.T) {
	b := Box3{Min: Vec3{-2, -1, -0.5}, Max: Vec3{2, 1, 0.5}}
	r := b.Transform(RotateZ(float32(math.Pi / 2)))
	size := r.Size()
	if abs(size.X-2) > 1e-5 || abs(size.Y-4) > 1e-5 || abs(size.Z-1) > 1e-5 {
		t.Errorf("rotated size = %v, want (2,4,1)", size)
	}
}
