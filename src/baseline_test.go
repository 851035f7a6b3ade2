package dump1030

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BaselineModeA(t *testing.T) {
	var d = testDetector(t)
	var mag = put(quiet(100), 5, 0, 1, 20, 21)
	mag[5+3] = 12
	mag[5+2] = 14

	var scan = NewScan(true)
	d.Scan(mag, scan)
	require.Len(t, scan.Messages, 1)

	assert.Equal(t, []uint8{100, 100, 100, 100}, scan.Baseline.Pulse)
	assert.Len(t, scan.Baseline.NoiseFloor, 16+2)
	assert.Equal(t, []uint8{14, 10, 10}, scan.Baseline.NoiseFloorClose)

	var rec = scan.Baseline.Recommend()

	assert.Equal(t, Estimate{Mean: 100, StdDev: 0, Samples: 4, OK: true}, rec.MinPeakAmp)
	assert.Equal(t, 10, rec.MaxNoiseFloor.Mean) // 182 / 18 truncated
	assert.Equal(t, 11, rec.MaxNoiseFloorClose.Mean)
	assert.Greater(t, rec.MaxNoiseFloorClose.StdDev, 0.0)
}

func Test_BaselineVariantsAddP4(t *testing.T) {
	var d = testDetector(t)

	var scan = NewScan(true)
	d.Scan(put(quiet(100), 5, 0, 1, 20, 21, 25, 26), scan)
	assert.Len(t, scan.Baseline.Pulse, 6)

	scan = NewScan(true)
	d.Scan(put(quiet(100), 5, 0, 1, 20, 21, 25, 26, 27, 28), scan)
	assert.Len(t, scan.Baseline.Pulse, 8)

	scan = NewScan(true)
	d.Scan(put(quiet(150), 5, 0, 1, 52, 53), scan)
	assert.Len(t, scan.Baseline.Pulse, 4)
	assert.Len(t, scan.Baseline.NoiseFloor, 48+2)
	assert.Len(t, scan.Baseline.NoiseFloorClose, 3)
}

func Test_BaselineModeSNeedsMoreThanTwo(t *testing.T) {
	var d = testDetector(t)
	var scan = NewScan(true)

	d.Scan(put(quiet(100), 5, 0, 1, 5, 6), scan)

	var rec = scan.Baseline.Recommend()

	assert.True(t, rec.MinPeakAmp.OK)
	assert.True(t, rec.MaxNoiseFloorClose.OK)
	assert.False(t, rec.MaxNoiseFloor.OK, "a single Mode S gives one far noise sample")
	assert.Equal(t, 1, rec.MaxNoiseFloor.Samples)
}

func Test_RecommendationApply(t *testing.T) {
	var rec = Recommendation{
		MinPeakAmp:         Estimate{Mean: 90, StdDev: 1, Samples: 8, OK: true},
		MaxNoiseFloor:      Estimate{Mean: 0, StdDev: 0, Samples: 2, OK: false},
		MaxNoiseFloorClose: Estimate{Mean: 20, StdDev: 2, Samples: 6, OK: true},
	}

	var cfg = rec.Apply(DefaultDetectConfig())

	assert.Equal(t, uint8(90), cfg.MinPeakAmp)
	assert.Equal(t, uint8(255), cfg.MaxNoiseFloor)
	assert.Equal(t, uint8(20), cfg.MaxNoiseFloorClose)
	assert.Equal(t, uint8(10), cfg.Diff)
	assert.True(t, rec.Any())
	assert.False(t, Recommendation{}.Any()) //nolint:exhaustruct
}
