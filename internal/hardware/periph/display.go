package periph

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// DisplayAddress is the I2C address of the SSD1306 module
const DisplayAddress = 0x3C

// textSize is the em size in pixels; status rows are 10 px apart
const textSize = 8

// drawer is the part of periph's display.Drawer the text display needs
type drawer interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// TextDisplay renders text into a 1-bit frame and pushes it to the panel on Flush
type TextDisplay struct {
	dev   drawer
	frame *image1bit.VerticalLSB
	face  font.Face
}

// NewTextDisplay creates a text display for an SSD1306 (or any periph display.Drawer)
func NewTextDisplay(dev drawer) (*TextDisplay, error) {
	face, err := newTextFace()
	if err != nil {
		return nil, err
	}
	return &TextDisplay{
		dev:   dev,
		frame: image1bit.NewVerticalLSB(dev.Bounds()),
		face:  face,
	}, nil
}

func newTextFace() (font.Face, error) {
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse display font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    textSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create display face: %w", err)
	}
	return face, nil
}

// Clear blanks the frame
func (d *TextDisplay) Clear() {
	for i := range d.frame.Pix {
		d.frame.Pix[i] = 0
	}
}

// DrawText draws text with its top-left corner at (x, y); text past the edge is clipped
func (d *TextDisplay) DrawText(text string, x, y int16) {
	ascent := d.face.Metrics().Ascent.Ceil()
	fd := font.Drawer{
		Dst:  d.frame,
		Src:  &image.Uniform{C: image1bit.On},
		Face: d.face,
		Dot:  fixed.P(int(x), int(y)+ascent),
	}
	fd.DrawString(text)
}

// Flush sends the frame to the panel
func (d *TextDisplay) Flush() error {
	if err := d.dev.Draw(d.frame.Bounds(), d.frame, image.Point{}); err != nil {
		return fmt.Errorf("failed to draw frame: %w", err)
	}
	return nil
}
