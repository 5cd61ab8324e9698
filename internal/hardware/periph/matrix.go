package periph

import (
	"fmt"
)

// pixelWriter is satisfied by *nrzled.Dev
type pixelWriter interface {
	Write(pixels []byte) (int, error)
}

// Matrix shows one colour on every LED of a WS2812 strip or matrix
type Matrix struct {
	dev    pixelWriter
	pixels int
	buf    []byte
}

// NewMatrix creates a matrix of n pixels
func NewMatrix(dev pixelWriter, pixels int) *Matrix {
	return &Matrix{
		dev:    dev,
		pixels: pixels,
		buf:    make([]byte, pixels*3),
	}
}

// SetColor fills the whole matrix with one colour
func (m *Matrix) SetColor(r, g, b uint8) error {
	for i := 0; i < m.pixels; i++ {
		m.buf[i*3] = r
		m.buf[i*3+1] = g
		m.buf[i*3+2] = b
	}
	if _, err := m.dev.Write(m.buf); err != nil {
		return fmt.Errorf("failed to write matrix: %w", err)
	}
	return nil
}
