package lighting

import (
	"image"

	"github.com/mdouchement/hdr"
	"golang.org/x/image/draw"
)

// probeSize is the edge length the environment image is reduced to before averaging.
const probeSize = 16

// hdrTaps is the number of samples per axis taken inside each probe cell of
// a high dynamic range image.
const hdrTaps = 4

// DefaultAmbient is used when no environment map is loaded.
var DefaultAmbient = [3]float32{0.08, 0.08, 0.09}

// Environment is an image-based lighting term reduced to what the teaser shader uses:
// a uniform ambient colour and a sky/ground split for a cheap hemisphere reflection.
type Environment struct {
	Ambient [3]float32
	Sky     [3]float32
	Ground  [3]float32
	Width   int
	Height  int
}

// DefaultEnvironment returns the ambient used before (or without) an environment map.
func DefaultEnvironment() *Environment {
	return &Environment{Ambient: DefaultAmbient, Sky: DefaultAmbient, Ground: DefaultAmbient}
}

// EnvironmentFromImage downsamples an equirectangular image and derives the
// average colour plus the upper (sky) and lower (ground) half averages.
func EnvironmentFromImage(img image.Image) *Environment {
	b := img.Bounds()
	if b.Empty() {
		return DefaultEnvironment()
	}
	if h, ok := img.(hdr.Image); ok {
		return environmentFromHDR(h)
	}

	probe := image.NewRGBA(image.Rect(0, 0, probeSize, probeSize))
	draw.ApproxBiLinear.Scale(probe, probe.Bounds(), img, b, draw.Src, nil)

	var all, sky, ground [3]float32
	for y := 0; y < probeSize; y++ {
		for x := 0; x < probeSize; x++ {
			off := probe.PixOffset(x, y)
			px := [3]float32{
				float32(probe.Pix[off]) / 255,
				float32(probe.Pix[off+1]) / 255,
				float32(probe.Pix[off+2]) / 255,
			}
			for c := 0; c < 3; c++ {
				all[c] += px[c]
				if y < probeSize/2 {
					sky[c] += px[c]
				} else {
					ground[c] += px[c]
				}
			}
		}
	}

	n := float32(probeSize * probeSize)
	half := n / 2
	env := &Environment{Width: b.Dx(), Height: b.Dy()}
	for c := 0; c < 3; c++ {
		env.Ambient[c] = all[c] / n
		env.Sky[c] = sky[c] / half
		env.Ground[c] = ground[c] / half
	}
	return env
}

// environmentFromHDR averages linear radiance over the same probe grid.
// Samples are clamped to 1 so small bright sources (studio softboxes, the sun)
// cannot flood the ambient term.
func environmentFromHDR(img hdr.Image) *Environment {
	b := img.Bounds()
	steps := probeSize * hdrTaps

	var all, sky, ground [3]float64
	var nSky, nGround int
	for sy := 0; sy < steps; sy++ {
		y := b.Min.Y + (2*sy+1)*b.Dy()/(2*steps)
		for sx := 0; sx < steps; sx++ {
			x := b.Min.X + (2*sx+1)*b.Dx()/(2*steps)
			r, g, bl, _ := img.HDRAt(x, y).HDRRGBA()
			px := [3]float64{clamp01(r), clamp01(g), clamp01(bl)}
			upper := sy < steps/2
			for c := 0; c < 3; c++ {
				all[c] += px[c]
				if upper {
					sky[c] += px[c]
				} else {
					ground[c] += px[c]
				}
			}
			if upper {
				nSky++
			} else {
				nGround++
			}
		}
	}

	env := &Environment{Width: b.Dx(), Height: b.Dy()}
	for c := 0; c < 3; c++ {
		env.Ambient[c] = float32(all[c] / float64(nSky+nGround))
		env.Sky[c] = float32(sky[c] / float64(nSky))
		env.Ground[c] = float32(ground[c] / float64(nGround))
	}
	return env
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
