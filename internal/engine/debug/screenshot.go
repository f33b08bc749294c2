package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
)

// ScreenshotCapture writes framebuffer captures to disk as PNG or WebP.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	ext       string
}

// NewScreenshotCapture creates a new screenshot capture handler writing
// timestamped PNG files.
func NewScreenshotCapture(outputDir, prefix string) *ScreenshotCapture {
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		ext:       ".png",
	}
}

// SetOutputDir sets the output directory for screenshots.
func (sc *ScreenshotCapture) SetOutputDir(dir string) {
	sc.outputDir = dir
}

// SetFormat selects the encoding for timestamped captures: "png" or "webp".
func (sc *ScreenshotCapture) SetFormat(format string) error {
	ext := "." + strings.TrimPrefix(strings.ToLower(format), ".")
	if _, err := encoderFor(ext); err != nil {
		return err
	}
	sc.ext = ext
	return nil
}

// GenerateFilename generates a screenshot filename without saving.
func (sc *ScreenshotCapture) GenerateFilename() string {
	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s%s", sc.prefix, timestamp, sc.ext)
	if sc.outputDir != "" {
		filename = filepath.Join(sc.outputDir, filename)
	}
	return filename
}

// CaptureFromPixels writes raw framebuffer pixels to a timestamped file and
// returns its path. See FlipPixels for the expected layout.
func (sc *ScreenshotCapture) CaptureFromPixels(pixels []byte, width, height int) (string, error) {
	filename := sc.GenerateFilename()
	if err := SavePixels(filename, pixels, width, height); err != nil {
		return "", err
	}
	return filename, nil
}

// SavePixels writes raw framebuffer pixels to path, encoded by its extension.
func SavePixels(path string, pixels []byte, width, height int) error {
	img, err := FlipPixels(pixels, width, height)
	if err != nil {
		return err
	}
	return SaveImage(path, img)
}

// FlipPixels converts bottom-up RGBA rows, as glReadPixels returns them,
// into a top-down image. pixels must hold width*height*4 bytes.
func FlipPixels(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid capture size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		srcOffset := (height - 1 - y) * rowSize
		dstOffset := y * img.Stride
		copy(img.Pix[dstOffset:dstOffset+rowSize], pixels[srcOffset:srcOffset+rowSize])
	}
	return img, nil
}

// SaveImage encodes img to path as PNG or WebP depending on the extension,
// creating parent directories as needed.
func SaveImage(path string, img image.Image) error {
	encode, err := encoderFor(filepath.Ext(path))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := encode(file, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return file.Close()
}

func encoderFor(ext string) (func(*os.File, image.Image) error, error) {
	switch strings.ToLower(ext) {
	case ".png":
		return func(f *os.File, img image.Image) error { return png.Encode(f, img) }, nil
	case ".webp":
		return func(f *os.File, img image.Image) error { return nativewebp.Encode(f, img, nil) }, nil
	default:
		return nil, fmt.Errorf("unsupported screenshot format %q (want .png or .webp)", ext)
	}
}
