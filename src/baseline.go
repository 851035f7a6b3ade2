package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:	Suggest thresholds from what was actually received.
 *
 * Description:	In calibration mode every accepted message donates the
 *		samples that the detector treated as pulse, as noise
 *		away from a pulse and as noise touching a pulse.  The
 *		means of those become recommended --mpa, --mnf and
 *		--mnfc values.
 *
 *------------------------------------------------------------------*/

import "gonum.org/v1/gonum/stat"

type Baseline struct {
	Pulse           []uint8
	NoiseFloor      []uint8
	NoiseFloorClose []uint8
}

func (b *Baseline) Reset() {
	b.Pulse = b.Pulse[:0]
	b.NoiseFloor = b.NoiseFloor[:0]
	b.NoiseFloorClose = b.NoiseFloorClose[:0]
}

func pick(dst []uint8, m []uint8, offsets ...int) []uint8 {
	for _, k := range offsets {
		dst = append(dst, m[k])
	}

	return dst
}

// Add records the evidence samples of an accepted message.  The offsets are the
// ones the detector looked at for that kind of message.
func (b *Baseline) Add(mag []uint8, msg Message) {
	var m = mag[msg.Start:]

	if msg.Kind == ModeS {
		b.Pulse = pick(b.Pulse, m, 0, 1, 5, 6)
		b.NoiseFloor = pick(b.NoiseFloor, m, 3)
		b.NoiseFloorClose = pick(b.NoiseFloorClose, m, 2, 4, 7, 8)

		return
	}

	var p3 = msg.p3()
	var p4 = p3 + p4AfterP3

	b.Pulse = pick(b.Pulse, m, 0, 1, p3, p3+1)
	b.NoiseFloor = append(b.NoiseFloor, m[3:p3-1]...)
	b.NoiseFloor = pick(b.NoiseFloor, m, p3+3, p3+4)
	b.NoiseFloorClose = pick(b.NoiseFloorClose, m, 2, p3-1, p3+2)

	switch msg.Variant {
	case AllCall:
		b.Pulse = pick(b.Pulse, m, p4, p4+1)
	case AllCallCompat:
		b.Pulse = pick(b.Pulse, m, p4, p4+1, p4+2, p4+3)
	case Plain:
	}
}

// Estimate summarises one accumulator.  OK is false when there were two samples or fewer.
type Estimate struct {
	Mean    int
	StdDev  float64
	Samples int
	OK      bool
}

func estimate(samples []uint8) Estimate {
	var e = Estimate{Samples: len(samples)} //nolint:exhaustruct
	if len(samples) <= 2 {
		return e
	}

	var sum = 0
	var x = make([]float64, len(samples))

	for i, s := range samples {
		sum += int(s)
		x[i] = float64(s)
	}

	e.Mean = sum / len(samples)
	_, e.StdDev = stat.MeanStdDev(x, nil)
	e.OK = true

	return e
}

type Recommendation struct {
	MinPeakAmp         Estimate
	MaxNoiseFloor      Estimate
	MaxNoiseFloorClose Estimate
}

func (b *Baseline) Recommend() Recommendation {
	return Recommendation{
		MinPeakAmp:         estimate(b.Pulse),
		MaxNoiseFloor:      estimate(b.NoiseFloor),
		MaxNoiseFloorClose: estimate(b.NoiseFloorClose),
	}
}

func (r Recommendation) Any() bool {
	return r.MinPeakAmp.OK || r.MaxNoiseFloor.OK || r.MaxNoiseFloorClose.OK
}

// Apply returns cfg with every available recommendation filled in.
func (r Recommendation) Apply(cfg DetectConfig) DetectConfig {
	if r.MinPeakAmp.OK {
		cfg.MinPeakAmp = uint8(r.MinPeakAmp.Mean) //nolint:gosec
	}

	if r.MaxNoiseFloor.OK {
		cfg.MaxNoiseFloor = uint8(r.MaxNoiseFloor.Mean) //nolint:gosec
	}

	if r.MaxNoiseFloorClose.OK {
		cfg.MaxNoiseFloorClose = uint8(r.MaxNoiseFloorClose.Mean) //nolint:gosec
	}

	return cfg
}
