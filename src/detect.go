package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:	Find SSR uplink interrogations in an amplitude sequence.
 *
 * Description:	At 2.5 Msps one sample is 0.4 us and the 0.8 us
 *		interrogation pulses show up as pairs of samples.
 *		Every interrogation begins with P1 at offsets 0 and 1.
 *		What follows tells them apart:
 *
 *		Mode S		P2 at 5, 6 (2 us after P1).
 *		Mode A		P3 at 20, 21 (8 us after P1).
 *		Mode C		P3 at 52, 53 (21 us after P1).
 *
 *		A Mode A or C interrogation may carry a P4 pulse 2 us
 *		after P3.  A short one (0.8 us) makes it an All-Call,
 *		a long one (1.6 us) an All-Call in compatibility mode.
 *
 *		Each test below is a predicate over the window and the
 *		thresholds.  The scan tries them in a fixed order and
 *		the first match wins:
 *
 *			precondition -> Mode S -> Mode A -> Mode C -> P4
 *
 *		Comparisons at the tie boundaries are the same
 *		everywhere:  a pulse must be strictly greater than
 *		noise + margin and strictly greater than the minimum
 *		peak amplitude, a noise sample may equal its noise
 *		floor limit and a noise/pulse ratio may equal its
 *		ceiling.
 *
 *		Windows that run past the end of the sequence fail.
 *		Samples past the end are absent, not zero.
 *
 *------------------------------------------------------------------*/

import "fmt"

type Detector struct {
	cfg DetectConfig
}

// NewDetector refuses any tuning other than UplinkTuning.  The pulse geometry is
// expressed in samples and only holds at that sample rate.
func NewDetector(cfg DetectConfig, tuning Tuning) (*Detector, error) {
	if tuning != UplinkTuning {
		return nil, fmt.Errorf("%s: %w", tuning, ErrUnsupportedTuning)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Detector{cfg: cfg}, nil
}

func (d *Detector) Config() DetectConfig {
	return d.cfg
}

// Scan is the mutable state of one detection cycle.  It belongs to the caller.
type Scan struct {
	Messages []Message
	Order    OrderLog
	Counts   Counts
	Baseline *Baseline // nil unless calibrating
}

func NewScan(calibrate bool) *Scan {
	var s = &Scan{} //nolint:exhaustruct
	if calibrate {
		s.Baseline = &Baseline{} //nolint:exhaustruct
	}

	return s
}

// Reset empties the scan for the next cycle, keeping allocated storage.
func (s *Scan) Reset() {
	s.Messages = s.Messages[:0]
	s.Order.Reset()
	s.Counts = Counts{} //nolint:exhaustruct

	if s.Baseline != nil {
		s.Baseline.Reset()
	}
}

func (s *Scan) accept(mag []uint8, msg Message) {
	s.Messages = append(s.Messages, msg)
	s.Order.Append(msg.OrderCode())
	s.Counts.Add(msg)

	if s.Baseline != nil {
		s.Baseline.Add(mag, msg)
	}
}

// ScanAmplitudes runs one detection pass into a fresh Scan.
func ScanAmplitudes(cfg DetectConfig, tuning Tuning, mag []uint8, calibrate bool) (*Scan, error) {
	var d, err = NewDetector(cfg, tuning)
	if err != nil {
		return nil, err
	}

	var s = NewScan(calibrate)
	d.Scan(mag, s)

	return s, nil
}

/*------------------------------------------------------------------
 *
 * Name:	Scan
 *
 * Purpose:	Run the detector over a whole amplitude sequence.
 *
 * Inputs:	mag	- Amplitudes.  Zeros are replaced by ones in place.
 *
 *		scan	- Results are appended here.
 *
 * Description:	The cursor moves one sample on a rejection and by the
 *		message specific amount on an acceptance so pulses that
 *		belong to an accepted message are never matched again.
 *
 *------------------------------------------------------------------*/

func (d *Detector) Scan(mag []uint8, scan *Scan) {
	Sanitize(mag)

	var i = 0
	for i < len(mag) {
		i = d.step(mag, i, scan)
	}
}

// step examines position i and returns the next cursor position.
func (d *Detector) step(mag []uint8, i int, scan *Scan) int {
	var msg, ok = d.classify(mag, i)
	if !ok {
		return i + 1
	}

	scan.accept(mag, msg)

	return i + msg.Skip()
}

func (d *Detector) classify(mag []uint8, i int) (Message, bool) {
	if !d.precondition(mag, i) {
		return Message{}, false //nolint:exhaustruct
	}

	if d.modeS(mag, i) {
		return Message{Kind: ModeS, Variant: Plain, Start: i}, true
	}

	var msg = Message{Start: i} //nolint:exhaustruct

	switch {
	case d.modeAC(mag, i, modeAP3):
		msg.Kind = ModeA
	case d.modeAC(mag, i, modeCP3):
		msg.Kind = ModeC
	default:
		return Message{}, false //nolint:exhaustruct
	}

	var p4 = i + msg.p3() + p4AfterP3

	switch {
	case d.shortP4(mag, p4):
		msg.Variant = AllCall
	case d.longP4(mag, p4):
		msg.Variant = AllCallCompat
	default:
		msg.Variant = Plain
	}

	return msg, true
}

// above is true when pulse clears noise by more than margin.
func above(pulse uint8, noise uint8, margin uint8) bool {
	return int(pulse) > int(noise)+int(margin)
}

// within is true when noise/pulse does not exceed ceiling.
func within(noise uint8, pulse uint8, ceiling float64) bool {
	return float64(noise)/float64(pulse) <= ceiling
}

func (d *Detector) peak(p uint8) bool {
	return p > d.cfg.MinPeakAmp
}

/*
 * P1 at 0 and 1 must stand clear of 2, 3, 4 and 7, which are quiet
 * in every interrogation format.  This throws away nearly every
 * position before the longer tests run.
 */
func (d *Detector) precondition(mag []uint8, i int) bool {
	if i+modeSWindow > len(mag) {
		return false
	}

	var c = &d.cfg
	var m = mag[i : i+modeSWindow]

	for _, p := range m[0:2] {
		if !d.peak(p) {
			return false
		}

		if !above(p, m[2], c.Diff) || !above(p, m[3], c.Diff) ||
			!above(p, m[4], c.Diff) || !above(p, m[7], c.Diff) {
			return false
		}

		if !within(m[2], p, c.DiffRatioClose) || !within(m[3], p, c.DiffRatio) {
			return false
		}
	}

	return m[2] <= c.MaxNoiseFloorClose && m[3] <= c.MaxNoiseFloor
}

/*
 * Mode S preamble.  P2 at 5 and 6 against the quiet samples around it:
 * 3 is two samples away, 2, 4, 7 and 8 touch a pulse.
 */
func (d *Detector) modeS(mag []uint8, i int) bool {
	if i+modeSWindow > len(mag) {
		return false
	}

	var c = &d.cfg
	var m = mag[i : i+modeSWindow]
	var touching = [...]int{2, 4, 7, 8}

	for _, p := range m[5:7] {
		if !d.peak(p) || !above(p, m[3], c.Diff) || !within(m[3], p, c.DiffRatio) {
			return false
		}

		for _, k := range touching {
			if !above(p, m[k], c.DiffClose) || !within(m[k], p, c.DiffRatioClose) {
				return false
			}
		}
	}

	for _, p := range m[0:2] {
		if !within(m[4], p, c.DiffRatioClose) || !within(m[7], p, c.DiffRatioClose) {
			return false
		}
	}

	if m[3] > c.MaxNoiseFloor {
		return false
	}

	for _, k := range touching {
		if m[k] > c.MaxNoiseFloorClose {
			return false
		}
	}

	return true
}

/*
 * Mode A and Mode C share a shape and differ only in where P3 sits.
 * Between P1 and P3 (3 .. p3-2) everything must be quiet.  The samples
 * touching a pulse (2, p3-1, p3+2) get the close margins, p3+3 the
 * loose ones and p3+4 the close margin against the loose noise floor.
 */
func (d *Detector) modeAC(mag []uint8, i int, p3 int) bool {
	var end = i + p3 + 5
	if end > len(mag) {
		return false
	}

	var c = &d.cfg
	var m = mag[i:end]
	var touching = [...]int{2, p3 - 1, p3 + 2}

	for _, p := range m[p3 : p3+2] {
		if !d.peak(p) {
			return false
		}

		for _, n := range m[3 : p3-1] {
			if !above(p, n, c.Diff) || !within(n, p, c.DiffRatio) {
				return false
			}
		}

		for _, k := range touching {
			if !above(p, m[k], c.DiffClose) || !within(m[k], p, c.DiffRatioClose) {
				return false
			}
		}

		if !above(p, m[p3+3], c.Diff) || !within(m[p3+3], p, c.DiffRatio) {
			return false
		}

		if !above(p, m[p3+4], c.DiffClose) {
			return false
		}
	}

	for _, n := range m[3 : p3-1] {
		if n > c.MaxNoiseFloor {
			return false
		}
	}

	return m[p3-1] <= c.MaxNoiseFloorClose && m[p3+2] <= c.MaxNoiseFloorClose &&
		m[p3+3] <= c.MaxNoiseFloor && m[p3+4] <= c.MaxNoiseFloor
}

/*
 * P4 tests.  p4 is the absolute index where P4 would start.  Only
 * ratios and limits are checked, P4 may be weaker than P1 and P3.
 */
func (d *Detector) shortP4(mag []uint8, p4 int) bool {
	if p4+4 > len(mag) {
		return false
	}

	var c = &d.cfg

	for _, p := range mag[p4 : p4+2] {
		if !d.peak(p) {
			return false
		}

		if !within(mag[p4-3], p, c.DiffRatioCloseP4) || !within(mag[p4-1], p, c.DiffRatioCloseP4) ||
			!within(mag[p4+2], p, c.DiffRatioCloseP4) {
			return false
		}

		if !within(mag[p4-2], p, c.DiffRatioP4) || !within(mag[p4+3], p, c.DiffRatioP4) {
			return false
		}
	}

	return mag[p4-3] <= c.MaxNoiseFloorClose && mag[p4-1] <= c.MaxNoiseFloorClose &&
		mag[p4+2] <= c.MaxNoiseFloorClose && mag[p4-2] <= c.MaxNoiseFloor
}

func (d *Detector) longP4(mag []uint8, p4 int) bool {
	if p4+5 > len(mag) {
		return false
	}

	var c = &d.cfg

	for _, p := range mag[p4 : p4+4] {
		if !d.peak(p) {
			return false
		}

		if !within(mag[p4-3], p, c.DiffRatioCloseP4) || !within(mag[p4-1], p, c.DiffRatioCloseP4) ||
			!within(mag[p4+4], p, c.DiffRatioCloseP4) {
			return false
		}

		if !within(mag[p4-2], p, c.DiffRatioP4) {
			return false
		}
	}

	return mag[p4-3] <= c.MaxNoiseFloorClose && mag[p4-1] <= c.MaxNoiseFloorClose &&
		mag[p4+4] <= c.MaxNoiseFloorClose && mag[p4-2] <= c.MaxNoiseFloor
}
