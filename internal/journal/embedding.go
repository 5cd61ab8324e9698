package journal

import (
	"math"

	"github.com/pgvector/pgvector-go"

	"github.com/saaga0h/colorlux/internal/color"
)

// Embed maps the RGB channels of a sample onto the unit sphere so cosine distance compares
// chromaticity regardless of intensity. A black sample has no direction and reports false.
func Embed(s color.Sample) (pgvector.Vector, bool) {
	r, g, b := float64(s.R), float64(s.G), float64(s.B)
	norm := math.Sqrt(r*r + g*g + b*b)
	if norm == 0 {
		return pgvector.Vector{}, false
	}

	return pgvector.NewVector([]float32{
		float32(r / norm),
		float32(g / norm),
		float32(b / norm),
	}), true
}

// CosineDistance computes cosine distance between two normalized vectors
func CosineDistance(v1, v2 pgvector.Vector) float64 {
	a, b := v1.Slice(), v2.Slice()
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}

	// Clamp to [0, 1] to handle floating point errors
	return math.Max(0, math.Min(1, 1.0-dot))
}

func channels(s color.Sample) []int64 {
	return []int64{int64(s.R), int64(s.G), int64(s.B), int64(s.C)}
}

func sampleFromChannels(ch []int64) color.Sample {
	var s color.Sample
	if len(ch) == 4 {
		s = color.Sample{R: uint16(ch[0]), G: uint16(ch[1]), B: uint16(ch[2]), C: uint16(ch[3])}
	}
	return s
}
