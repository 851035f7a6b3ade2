package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:	Turn interleaved 8 bit I/Q samples into amplitudes.
 *
 * Description:	The receiver delivers unsigned bytes centred on 127.
 *		Rather than doing a square root per sample, every
 *		possible (|i-127|, |q-127|) pair is computed once
 *		into a 129 x 129 table.
 *
 *		The 1.405 factor stretches the largest possible
 *		distance (128 * sqrt(2)) to just under 255 so the
 *		whole 8 bit range gets used.
 *
 *------------------------------------------------------------------*/

import "math"

const magnitudeScale = 1.405

const magnitudeSide = 129

// MagnitudeTable is indexed by ci*129 + cq.
var MagnitudeTable [magnitudeSide * magnitudeSide]uint8

func init() {
	for ci := range magnitudeSide {
		for cq := range magnitudeSide {
			MagnitudeTable[ci*magnitudeSide+cq] = magnitudeEntry(ci, cq)
		}
	}
}

func magnitudeEntry(ci int, cq int) uint8 {
	return uint8(math.Round(math.Sqrt(float64(ci*ci+cq*cq)) * magnitudeScale))
}

func centredDistance(b byte) int {
	var d = int(b) - 127
	if d < 0 {
		d = -d
	}

	return d
}

// ComputeMagnitude returns one amplitude per I/Q pair.  A trailing odd byte is ignored.
func ComputeMagnitude(iq []byte) []uint8 {
	return ComputeMagnitudeInto(nil, iq)
}

// ComputeMagnitudeInto is ComputeMagnitude reusing dst when it is big enough.
func ComputeMagnitudeInto(dst []uint8, iq []byte) []uint8 {
	var n = len(iq) / 2

	if cap(dst) < n {
		dst = make([]uint8, n)
	}

	dst = dst[:n]

	for j := range n {
		var ci = centredDistance(iq[2*j])
		var cq = centredDistance(iq[2*j+1])
		dst[j] = MagnitudeTable[ci*magnitudeSide+cq]
	}

	return dst
}

// Sanitize replaces zero amplitudes with one so the ratio tests never divide by zero.
func Sanitize(mag []uint8) {
	for i, m := range mag {
		if m == 0 {
			mag[i] = 1
		}
	}
}
