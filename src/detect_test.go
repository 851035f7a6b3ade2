package dump1030

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	testNoise = 10
	testPulse = 100
)

func quiet(n int) []uint8 {
	var mag = make([]uint8, n)
	for i := range mag {
		mag[i] = testNoise
	}

	return mag
}

func put(mag []uint8, at int, offsets ...int) []uint8 {
	for _, k := range offsets {
		mag[at+k] = testPulse
	}

	return mag
}

func testDetector(t *testing.T) *Detector {
	t.Helper()

	var d, err = NewDetector(DefaultDetectConfig(), UplinkTuning)
	require.NoError(t, err)

	return d
}

func Test_NewDetectorRejectsOtherTunings(t *testing.T) {
	var _, err = NewDetector(DefaultDetectConfig(), DownlinkTuning)
	require.ErrorIs(t, err, ErrUnsupportedTuning)

	_, err = NewDetector(DefaultDetectConfig(), Tuning{FrequencyHz: 1030000000, SampleRate: 2000000})
	require.ErrorIs(t, err, ErrUnsupportedTuning)

	var bad = DefaultDetectConfig()
	bad.DiffRatio = 0
	_, err = NewDetector(bad, UplinkTuning)
	require.ErrorIs(t, err, ErrInvalidRatio)
}

func Test_ModeAPlain(t *testing.T) {
	var d = testDetector(t)
	var mag = put(quiet(100), 5, 0, 1, 20, 21)
	var scan = NewScan(false)

	var next = d.step(mag, 5, scan)

	assert.Equal(t, 5+23, next)
	require.Len(t, scan.Messages, 1)
	assert.Equal(t, Message{Kind: ModeA, Variant: Plain, Start: 5}, scan.Messages[0])
	assert.Equal(t, 1, scan.Counts.ModeA)
	assert.Equal(t, 1, scan.Counts.Total)
	assert.Equal(t, []OrderCode{11}, scan.Order.Codes())

	var full = NewScan(false)
	d.Scan(put(quiet(100), 5, 0, 1, 20, 21), full)
	assert.Equal(t, scan.Messages, full.Messages)
	assert.Equal(t, scan.Counts, full.Counts)
}

func Test_ModeAAllCall(t *testing.T) {
	var d = testDetector(t)
	var mag = put(quiet(100), 5, 0, 1, 20, 21, 25, 26)
	var scan = NewScan(false)

	var next = d.step(mag, 5, scan)

	assert.Equal(t, 5+27, next)
	require.Len(t, scan.Messages, 1)
	assert.Equal(t, AllCall, scan.Messages[0].Variant)
	assert.Equal(t, 1, scan.Counts.ModeAAllCall)
	assert.Equal(t, 0, scan.Counts.ModeA)
	assert.Equal(t, []OrderCode{21}, scan.Order.Codes())
}

func Test_ModeAAllCallCompat(t *testing.T) {
	var d = testDetector(t)
	var mag = put(quiet(100), 5, 0, 1, 20, 21, 25, 26, 27, 28)
	var scan = NewScan(false)

	var next = d.step(mag, 5, scan)

	assert.Equal(t, 5+29, next)
	require.Len(t, scan.Messages, 1)
	assert.Equal(t, AllCallCompat, scan.Messages[0].Variant)
	assert.Equal(t, 1, scan.Counts.ModeAAllCallCompat)
	assert.Equal(t, []OrderCode{31}, scan.Order.Codes())
}

func Test_ModeCVariants(t *testing.T) {
	var d = testDetector(t)

	var tests = []struct {
		name    string
		extra   []int
		variant Variant
		skip    int
		code    OrderCode
	}{
		{"plain", nil, Plain, 56, 12},
		{"all-call", []int{57, 58}, AllCall, 59, 22},
		{"compat", []int{57, 58, 59, 60}, AllCallCompat, 61, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mag = put(put(quiet(150), 5, 0, 1, 52, 53), 5, tt.extra...)
			var scan = NewScan(false)

			assert.Equal(t, 5+tt.skip, d.step(mag, 5, scan))
			require.Len(t, scan.Messages, 1)
			assert.Equal(t, Message{Kind: ModeC, Variant: tt.variant, Start: 5}, scan.Messages[0])
			assert.Equal(t, []OrderCode{tt.code}, scan.Order.Codes())
		})
	}
}

func Test_ModeS(t *testing.T) {
	var d = testDetector(t)
	var mag = put(quiet(100), 5, 0, 1, 5, 6)
	var scan = NewScan(false)

	assert.Equal(t, 5+49, d.step(mag, 5, scan))
	require.Len(t, scan.Messages, 1)
	assert.Equal(t, ModeS, scan.Messages[0].Kind)
	assert.Equal(t, 1, scan.Counts.ModeS)
	assert.Equal(t, []OrderCode{3}, scan.Order.Codes())
}

func Test_ModeSWinsOverModeA(t *testing.T) {
	var d = testDetector(t)
	var mag = put(quiet(100), 5, 0, 1, 5, 6, 20, 21)
	var scan = NewScan(false)

	d.Scan(mag, scan)

	require.Len(t, scan.Messages, 1)
	assert.Equal(t, ModeS, scan.Messages[0].Kind)
	assert.Equal(t, 0, scan.Counts.ModeA)
	assert.Equal(t, 0, scan.Counts.ModeC)
}

func Test_TruncatedWindows(t *testing.T) {
	var d = testDetector(t)

	// Mode A geometry needs 25 samples from the start.
	var scan = NewScan(false)
	d.Scan(put(quiet(29), 5, 0, 1, 20, 21), scan)
	assert.Empty(t, scan.Messages)

	// Room for the geometry but not for a P4 test: plain.
	scan = NewScan(false)
	d.Scan(put(quiet(31), 5, 0, 1, 20, 21), scan)
	require.Len(t, scan.Messages, 1)
	assert.Equal(t, Plain, scan.Messages[0].Variant)
}

func Test_EmptyAndUniform(t *testing.T) {
	var d = testDetector(t)

	for _, mag := range [][]uint8{nil, {}, quiet(1000), make([]uint8, 1000)} {
		var scan = NewScan(true)
		d.Scan(mag, scan)

		assert.Empty(t, scan.Messages)
		assert.Equal(t, Counts{}, scan.Counts) //nolint:exhaustruct
		assert.Equal(t, 0, scan.Order.Len())
		assert.False(t, scan.Baseline.Recommend().Any())
	}
}

func Test_ScanSanitizes(t *testing.T) {
	var d = testDetector(t)
	var mag = []uint8{0, 5, 0, 0, 7, 0, 0, 0, 0, 0, 3}

	d.Scan(mag, NewScan(false))

	assert.NotContains(t, mag, uint8(0))
}

func Test_TieBoundaries(t *testing.T) {
	assert.False(t, above(20, 10, 10))
	assert.True(t, above(21, 10, 10))
	assert.True(t, above(255, 250, 4))
	assert.False(t, above(255, 250, 5))

	assert.True(t, within(25, 100, 0.25))
	assert.False(t, within(26, 100, 0.25))
}

func Test_MinPeakAmp(t *testing.T) {
	var cfg = DefaultDetectConfig()
	cfg.MinPeakAmp = testPulse

	var d, err = NewDetector(cfg, UplinkTuning)
	require.NoError(t, err)

	var scan = NewScan(false)
	d.Scan(put(quiet(100), 5, 0, 1, 20, 21), scan)
	assert.Empty(t, scan.Messages)

	cfg.MinPeakAmp = testPulse - 1
	d, err = NewDetector(cfg, UplinkTuning)
	require.NoError(t, err)

	d.Scan(put(quiet(100), 5, 0, 1, 20, 21), scan)
	assert.Len(t, scan.Messages, 1)
}

func Test_NoiseFloorLimit(t *testing.T) {
	var cfg = DefaultDetectConfig()
	cfg.MaxNoiseFloor = testNoise - 1

	var d, err = NewDetector(cfg, UplinkTuning)
	require.NoError(t, err)

	var scan = NewScan(false)
	d.Scan(put(quiet(100), 5, 0, 1, 20, 21), scan)
	assert.Empty(t, scan.Messages)

	cfg.MaxNoiseFloor = testNoise
	d, err = NewDetector(cfg, UplinkTuning)
	require.NoError(t, err)

	d.Scan(put(quiet(100), 5, 0, 1, 20, 21), scan)
	assert.Len(t, scan.Messages, 1)
}

func Test_BackToBack(t *testing.T) {
	var d = testDetector(t)
	var mag = quiet(400)

	put(mag, 0, 0, 1, 5, 6)
	put(mag, 60, 0, 1, 20, 21)
	put(mag, 100, 0, 1, 52, 53, 57, 58)
	put(mag, 200, 0, 1, 20, 21, 25, 26, 27, 28)

	var scan = NewScan(false)
	d.Scan(mag, scan)

	assert.Equal(t, []Message{
		{Kind: ModeS, Variant: Plain, Start: 0},
		{Kind: ModeA, Variant: Plain, Start: 60},
		{Kind: ModeC, Variant: AllCall, Start: 100},
		{Kind: ModeA, Variant: AllCallCompat, Start: 200},
	}, scan.Messages)
	assert.Equal(t, []OrderCode{3, 11, 22, 31}, scan.Order.Codes())
	assert.Equal(t, Counts{Total: 4, ModeA: 1, ModeS: 1, ModeCAllCall: 1, ModeAAllCallCompat: 1}, scan.Counts) //nolint:exhaustruct
}

func drawAmplitudes(t *rapid.T) []uint8 {
	// A small alphabet makes matches likely enough to be interesting.
	return rapid.SliceOfN(rapid.SampledFrom([]uint8{0, 1, testNoise, 40, testPulse}), 0, 600).Draw(t, "mag")
}

func Test_ScanDeterministic(t *testing.T) {
	var d = testDetector(t)

	rapid.Check(t, func(t *rapid.T) {
		var mag = drawAmplitudes(t)

		var a = NewScan(true)
		d.Scan(append([]uint8(nil), mag...), a)

		var b = NewScan(true)
		d.Scan(append([]uint8(nil), mag...), b)

		assert.Equal(t, a.Messages, b.Messages)
		assert.Equal(t, a.Counts, b.Counts)
		assert.Equal(t, a.Order.Codes(), b.Order.Codes())
		assert.Equal(t, a.Baseline, b.Baseline)
	})
}

func Test_ScanCursorAdvances(t *testing.T) {
	var d = testDetector(t)

	rapid.Check(t, func(t *rapid.T) {
		var mag = drawAmplitudes(t)
		Sanitize(mag)

		for i := range mag {
			var scratch = NewScan(false)
			var next = d.step(mag, i, scratch)

			if len(scratch.Messages) == 0 {
				assert.Equal(t, i+1, next)
			} else {
				assert.Equal(t, i+scratch.Messages[0].Skip(), next)
			}
		}

		var scan = NewScan(false)
		d.Scan(mag, scan)

		assert.Equal(t, len(scan.Messages), scan.Counts.Total)
		assert.Equal(t, len(scan.Messages), scan.Order.Len())

		var c = scan.Counts
		assert.Equal(t, c.Total, c.ModeA+c.ModeC+c.ModeS+c.ModeAAllCall+c.ModeCAllCall+c.ModeAAllCallCompat+c.ModeCAllCallCompat)

		for k := 1; k < len(scan.Messages); k++ {
			var prev = scan.Messages[k-1]
			assert.GreaterOrEqual(t, scan.Messages[k].Start, prev.Start+prev.Skip())
		}

		for k, msg := range scan.Messages {
			assert.Equal(t, msg.OrderCode(), scan.Order.Codes()[k])
		}
	})
}

func Test_ScanAmplitudes(t *testing.T) {
	var scan, err = ScanAmplitudes(DefaultDetectConfig(), UplinkTuning, put(quiet(100), 5, 0, 1, 5, 6), false)
	require.NoError(t, err)
	assert.Equal(t, 1, scan.Counts.ModeS)
	assert.Nil(t, scan.Baseline)

	_, err = ScanAmplitudes(DefaultDetectConfig(), DownlinkTuning, nil, false)
	require.ErrorIs(t, err, ErrUnsupportedTuning)
}

func Test_ScanReset(t *testing.T) {
	var d = testDetector(t)
	var scan = NewScan(true)

	d.Scan(put(quiet(100), 5, 0, 1, 20, 21), scan)
	require.Len(t, scan.Messages, 1)
	require.NotEmpty(t, scan.Baseline.Pulse)

	scan.Reset()

	assert.Empty(t, scan.Messages)
	assert.Equal(t, 0, scan.Order.Len())
	assert.Equal(t, Counts{}, scan.Counts) //nolint:exhaustruct
	assert.Empty(t, scan.Baseline.Pulse)
}
