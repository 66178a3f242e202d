// Package placeholder renders the flat cover images used for articles that
// arrive without one.
package placeholder

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Default image size in pixels.
const (
	DefaultWidth  = 400
	DefaultHeight = 200
	// MaxLabel is the longest label drawn; longer text is cut.
	MaxLabel = 48
)

// palette holds the background colors labels are hashed onto.
var palette = []string{"#1f2937", "#1e3a8a", "#065f46", "#7c2d12", "#581c87", "#334155"}

// Renderer draws labelled placeholder PNGs.
type Renderer struct {
	Width  int
	Height int
	// Scale enlarges the fixed-size bitmap font.
	Scale float64
}

// NewRenderer creates a 400x200 renderer.
func NewRenderer() *Renderer {
	return &Renderer{Width: DefaultWidth, Height: DefaultHeight, Scale: 2}
}

// PNG renders label centered on a flat background. An empty label shows
// the image size, as the old hosted placeholder service did.
func (r *Renderer) PNG(label string) ([]byte, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = fmt.Sprintf("%dx%d", r.Width, r.Height)
	}
	if runes := []rune(label); len(runes) > MaxLabel {
		label = string(runes[:MaxLabel])
	}

	dc := gg.NewContext(r.Width, r.Height)
	dc.SetHexColor(Background(label))
	dc.Clear()

	dc.SetColor(color.RGBA{255, 255, 255, 40})
	dc.DrawRectangle(0, float64(r.Height)-6, float64(r.Width), 6)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(color.White)
	scale := r.Scale
	if scale <= 0 {
		scale = 1
	}
	// Shrink until the label fits horizontally.
	for scale > 1 {
		w, _ := dc.MeasureString(label)
		if w*scale <= float64(r.Width)-20 {
			break
		}
		scale -= 0.5
	}
	dc.Push()
	dc.ScaleAbout(scale, scale, float64(r.Width)/2, float64(r.Height)/2)
	dc.DrawStringAnchored(label, float64(r.Width)/2, float64(r.Height)/2, 0.5, 0.5)
	dc.Pop()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

// Background picks a stable palette color for label.
func Background(label string) string {
	h := fnv.New32a()
	h.Write([]byte(label))
	return palette[h.Sum32()%uint32(len(palette))]
}
