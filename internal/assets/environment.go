package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/ftrvxmtrx/tga"
	"github.com/mdouchement/hdr/codec/rgbe"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	"github.com/Faultbox/logo-teaser/internal/engine/lighting"
)

// LoadEnvironment decodes an equirectangular image (Radiance HDR, PNG, JPEG,
// WebP, TGA or BMP) and reduces it to the ambient term the renderer shades
// with. OpenEXR and KTX2 are reported as ErrUnsupported.
func (p *Pipeline) LoadEnvironment(ctx context.Context, rawURL string) (*lighting.Environment, error) {
	switch ext := extension(rawURL); ext {
	case ".exr", ".ktx2":
		return nil, fmt.Errorf("%w: environment %q", ErrUnsupported, ext)
	}

	data, err := p.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	img, format, err := decodeImage(data, extension(rawURL))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", rawURL, err)
	}

	env := lighting.EnvironmentFromImage(img)
	p.log.Info("environment loaded",
		zap.String("url", rawURL),
		zap.String("format", format),
		zap.Int("width", env.Width),
		zap.Int("height", env.Height),
	)
	return env, nil
}

type imageDecoder struct {
	format string
	match  func(data []byte, ext string) bool
	decode func(io.Reader) (image.Image, error)
}

// decoders are tried in order. TGA has no magic number, so it is selected by
// extension only and must stay last.
var decoders = []imageDecoder{
	{"hdr", func(d []byte, _ string) bool {
		return bytes.HasPrefix(d, []byte("#?RADIANCE")) || bytes.HasPrefix(d, []byte("#?RGBE"))
	}, rgbe.Decode},
	{"png", magic("\x89PNG\r\n\x1a\n"), png.Decode},
	{"jpeg", magic("\xff\xd8"), jpeg.Decode},
	{"webp", func(d []byte, _ string) bool {
		return len(d) >= 12 && string(d[:4]) == "RIFF" && string(d[8:12]) == "WEBP"
	}, webp.Decode},
	{"bmp", magic("BM"), bmp.Decode},
	{"tga", func(_ []byte, ext string) bool { return ext == ".tga" }, tga.Decode},
}

func magic(prefix string) func([]byte, string) bool {
	return func(d []byte, _ string) bool {
		return bytes.HasPrefix(d, []byte(prefix))
	}
}

// decodeImage picks a decoder by content, falling back to the extension.
func decodeImage(data []byte, ext string) (image.Image, string, error) {
	for _, d := range decoders {
		if !d.match(data, ext) {
			continue
		}
		img, err := d.decode(bytes.NewReader(data))
		if err != nil {
			return nil, d.format, err
		}
		return img, d.format, nil
	}
	return nil, "", fmt.Errorf("%w: environment image %q", ErrUnsupported, ext)
}
