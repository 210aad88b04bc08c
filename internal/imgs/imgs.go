// Package imgs materializes pixel rows as grayscale png files.
package imgs

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/drakos74/digits-embed/internal/metrics"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDir is the default directory for the image cache.
	DefaultDir = "/tmp/umap-mnist-imgs"

	fileName = "%04d.png"
)

// Materializer writes one image file per sample.
// Existing files are never rewritten, so repeated calls are idempotent.
type Materializer struct {
	Dir    string
	Width  int
	Height int
	// Scale enlarges the images by the given factor, values below 2 keep the original size.
	Scale int
}

// New creates a new materializer for images of the given size.
func New(dir string, width, height int) *Materializer {
	return &Materializer{
		Dir:    dir,
		Width:  width,
		Height: height,
		Scale:  1,
	}
}

// Path returns the file path of the image at the given index.
func (m *Materializer) Path(i int) string {
	return filepath.Join(m.Dir, fmt.Sprintf(fileName, i))
}

// Write writes every row as an image and returns the image paths in the row order.
func (m *Materializer) Write(rows [][]float64) ([]string, error) {

	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", m.Width, m.Height)
	}

	if err := os.MkdirAll(m.Dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("could not make dir: %s: %w", m.Dir, err)
	}

	var written, skipped int
	paths := make([]string, len(rows))
	for i, pixels := range rows {
		p := m.Path(i)
		paths[i] = p
		if _, err := os.Stat(p); err == nil {
			skipped++
			continue
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("could not check image '%s': %w", p, err)
		}
		img, err := m.Image(pixels)
		if err != nil {
			return nil, fmt.Errorf("could not create image for row %d: %w", i, err)
		}
		if err := imaging.Save(img, p); err != nil {
			return nil, fmt.Errorf("could not save image '%s': %w", p, err)
		}
		written++
	}

	metrics.Observer.Images(written, skipped)
	log.Info().
		Str("dir", m.Dir).
		Int("written", written).
		Int("skipped", skipped).
		Msg("materialized images")

	return paths, nil
}

// Image creates the grayscale image for the given pixels.
// Pixels are expected in [0,1] and are inverted, so 0 is white and 1 is black.
func (m *Materializer) Image(pixels []float64) (image.Image, error) {
	if len(pixels) != m.Width*m.Height {
		return nil, fmt.Errorf("expected %d pixels for a %dx%d image but got %d",
			m.Width*m.Height, m.Width, m.Height, len(pixels))
	}
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for k, p := range pixels {
		img.SetGray(k%m.Width, k/m.Width, color.Gray{Y: Gray(p)})
	}
	if m.Scale > 1 {
		return imaging.Resize(img, m.Width*m.Scale, m.Height*m.Scale, imaging.NearestNeighbor), nil
	}
	return img, nil
}

// Gray converts a pixel value in [0,1] into its inverted gray level.
func Gray(p float64) uint8 {
	v := int(255 - p*255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
