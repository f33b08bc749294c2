package lighting

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/mdouchement/hdr/codec/rgbe"
)

func TestSunDirectionMatchesKeyLight(t *testing.T) {
	// A light at (5,5,5) sits at azimuth 45 degrees, elevation atan(1/sqrt(2)).
	elevation := float32(math.Atan(1/math.Sqrt2) * 180 / math.Pi)
	d := SunDirection(45, elevation)
	want := float32(1 / math.Sqrt(3))
	for i, c := range d {
		if math.Abs(float64(c-want)) > 1e-4 {
			t.Errorf("component %d = %f, want %f", i, c, want)
		}
	}
}

func TestDirectionalRadiance(t *testing.T) {
	l := NewDirectional(0, 90, 1.2)
	r := l.Radiance()
	if r != [3]float32{1.2, 1.2, 1.2} {
		t.Errorf("Radiance() = %v, want 1.2 on every channel", r)
	}
	if math.Abs(float64(l.Direction[1]-1)) > 1e-6 {
		t.Errorf("elevation 90 should point straight up, got %v", l.Direction)
	}
}

func TestEnvironmentFromImageSplitsSkyAndGround(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			c := color.RGBA{0, 0, 255, 255}
			if y >= 16 {
				c = color.RGBA{255, 0, 0, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	env := EnvironmentFromImage(img)
	if env.Width != 64 || env.Height != 32 {
		t.Errorf("size = %dx%d, want 64x32", env.Width, env.Height)
	}
	if env.Sky[2] < 0.9 || env.Sky[0] > 0.1 {
		t.Errorf("sky = %v, want mostly blue", env.Sky)
	}
	if env.Ground[0] < 0.9 || env.Ground[2] > 0.1 {
		t.Errorf("ground = %v, want mostly red", env.Ground)
	}
	if math.Abs(float64(env.Ambient[0]-0.5)) > 0.05 || math.Abs(float64(env.Ambient[2]-0.5)) > 0.05 {
		t.Errorf("ambient = %v, want an even red/blue mix", env.Ambient)
	}
}

func TestEnvironmentFromEmptyImage(t *testing.T) {
	env := EnvironmentFromImage(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if env.Ambient != DefaultAmbient {
		t.Errorf("empty image ambient = %v, want default", env.Ambient)
	}
}

func TestEnvironmentFromRadianceClampsHighlights(t *testing.T) {
	// 4x4 flat RGBE: two rows of a 4.0 white softbox over two rows of 0.25 grey.
	data := []byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 4 +X 4\n")
	for i := 0; i < 8; i++ {
		data = append(data, 128, 128, 128, 131)
	}
	for i := 0; i < 8; i++ {
		data = append(data, 128, 128, 128, 127)
	}
	img, err := rgbe.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("rgbe.Decode: %v", err)
	}

	env := EnvironmentFromImage(img)
	if env.Width != 4 || env.Height != 4 {
		t.Errorf("size = %dx%d, want 4x4", env.Width, env.Height)
	}
	for c := 0; c < 3; c++ {
		if env.Sky[c] < 0.99 || env.Sky[c] > 1 {
			t.Errorf("sky[%d] = %f, want highlight clamped to 1", c, env.Sky[c])
		}
		if math.Abs(float64(env.Ground[c]-0.25)) > 0.01 {
			t.Errorf("ground[%d] = %f, want 0.25", c, env.Ground[c])
		}
	}
}
