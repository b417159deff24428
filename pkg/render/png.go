package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/matzehuels/localitree/pkg/errors"
)

// MaxPixels bounds the size of a rasterized image. The default canvas is
// millions of pixels wide, so it must be shrunk before it can be converted.
const MaxPixels = 64 << 20

// ToPNG rasterizes SVG bytes with the given scale factor. A scale of 2.0
// produces a 2x resolution image.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %g", scale)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse svg")
	}

	w := math.Ceil(icon.ViewBox.W * scale)
	h := math.Ceil(icon.ViewBox.H * scale)
	if w < 1 || h < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "svg has an empty view box")
	}
	if w*h > MaxPixels {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"png of %.0fx%.0f pixels exceeds the %d pixel limit; reduce the canvas or scale", w, h, MaxPixels)
	}

	width, height := int(w), int(h)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	icon.SetTarget(0, 0, w, h)

	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	dasher := rasterx.NewDasher(width, height, scanner)
	icon.Draw(dasher, 1.0)

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}
