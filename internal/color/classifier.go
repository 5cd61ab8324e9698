package color

// Thresholds are empirically tuned against the GY-33 sensor. They are asymmetric on purpose
// and are compared in float32, like the firmware they were tuned on.
const (
	darkTotal = 100

	whiteMinRatio = 0.6

	pairHigh = 0.8
	pairLow  = 0.5

	dominanceMargin = 1.2

	shareDominant   = 0.45
	shareYellowG    = 0.3
	shareYellowB    = 0.25
	shareOtherLimit = 0.3
)

// Classify derives the colour label of a raw R/G/B reading. It is total over all inputs and
// the order of the rules decides ties.
func Classify(r, g, b uint16) Label {
	rf, gf, bf := float32(r), float32(g), float32(b)

	// Near-zero readings carry no colour and would divide by ~0 below
	total := rf + gf + bf
	if total < darkTotal {
		return Dark
	}

	maxv := max(rf, gf, bf)
	minv := min(rf, gf, bf)

	rRel := rf / maxv
	gRel := gf / maxv
	bRel := bf / maxv

	if minv > whiteMinRatio*maxv {
		return White
	}

	// Two channels dominate, the third is small
	if rRel > pairHigh && gRel > pairHigh && bRel < pairLow {
		return Yellow
	}
	if rRel > pairHigh && bRel > pairHigh && gRel < pairLow {
		return Magenta
	}
	if gRel > pairHigh && bRel > pairHigh && rRel < pairLow {
		return Cyan
	}

	// One channel dominates with a 20% margin
	if rf > dominanceMargin*gf && rf > dominanceMargin*bf {
		return Red
	}
	if gf > dominanceMargin*rf && gf > dominanceMargin*bf {
		return Green
	}
	if bf > dominanceMargin*rf && bf > dominanceMargin*gf {
		return Blue
	}

	return labelByShare(rf/total, gf/total, bf/total)
}

// labelByShare decides on each channel's share of the total reading
func labelByShare(rShare, gShare, bShare float32) Label {
	if rShare > shareDominant && gShare > shareYellowG && bShare < shareYellowB {
		return Yellow
	}
	if gShare > shareDominant && rShare < shareOtherLimit && bShare < shareOtherLimit {
		return Green
	}
	if bShare > shareDominant && rShare < shareOtherLimit && gShare < shareOtherLimit {
		return Blue
	}
	return Undefined
}

// Saturation returns (max-min)/max as a percentage in [0,100]; 0 when all channels are 0
func Saturation(r, g, b uint16) float64 {
	maxv := max(r, g, b)
	minv := min(r, g, b)
	if maxv == 0 {
		return 0
	}

	return float64(float32(maxv-minv) / float32(maxv) * 100)
}
