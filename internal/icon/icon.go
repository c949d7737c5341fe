// Package icon rasterizes the extension icon and points a manifest at it.
package icon

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Sizes are the pixel sizes a browser extension ships.
var Sizes = []int{16, 32, 48, 128}

// Label is drawn in the middle of the icon.
const Label = "AI"

var (
	gradientStart = color.RGBA{R: 0x63, G: 0x66, B: 0xF1, A: 0xFF}
	gradientEnd   = color.RGBA{R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF}
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847

var boldFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(gobold.TTF)
})

// Render draws a size×size icon: a gradient disc on a transparent canvas
// with the label in white bold at 40% of the size.
func Render(size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid icon size %d", size)
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	s := float32(size)
	r := s / 2
	k := kappa * r
	z := vector.NewRasterizer(size, size)
	z.MoveTo(r, 0)
	z.CubeTo(r+k, 0, s, r-k, s, r)
	z.CubeTo(s, r+k, r+k, s, r, s)
	z.CubeTo(r-k, s, 0, r+k, 0, r)
	z.CubeTo(0, r-k, r-k, 0, r, 0)
	z.ClosePath()
	z.Draw(img, img.Bounds(), diagonalGradient{size: size}, image.Point{})

	if err := drawLabel(img, size); err != nil {
		return nil, err
	}
	return img, nil
}

func drawLabel(img draw.Image, size int) error {
	f, err := boldFont()
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size) * 0.4,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{Dst: img, Src: image.White, Face: face}
	width := d.MeasureString(Label)
	m := face.Metrics()
	center := fixed.I(size) / 2
	d.Dot = fixed.Point26_6{
		X: center - width/2,
		Y: center + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(Label)
	return nil
}

// diagonalGradient runs from the top-left corner to the bottom-right.
type diagonalGradient struct {
	size int
}

func (g diagonalGradient) ColorModel() color.Model { return color.RGBAModel }

func (g diagonalGradient) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.size, g.size)
}

func (g diagonalGradient) At(x, y int) color.Color {
	t := (float64(x) + float64(y) + 1) / float64(2*g.size)
	if t > 1 {
		t = 1
	}
	return color.RGBA{
		R: lerp(gradientStart.R, gradientEnd.R, t),
		G: lerp(gradientStart.G, gradientEnd.G, t),
		B: lerp(gradientStart.B, gradientEnd.B, t),
		A: 0xFF,
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

// Encode renders the icon at size and writes it as PNG.
func Encode(w io.Writer, size int) error {
	img, err := Render(size)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
