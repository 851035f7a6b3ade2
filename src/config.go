package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:	Detection thresholds and program options.
 *
 * Description:	DetectConfig is handed by value to the detector and
 *		never changes during a scan.  Config holds everything
 *		else the command line can set.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math"
)

type DetectConfig struct {
	Diff               uint8   `yaml:"diff"`
	DiffClose          uint8   `yaml:"diff_close"`
	DiffRatio          float64 `yaml:"diff_ratio"`
	DiffRatioClose     float64 `yaml:"diff_ratio_close"`
	DiffRatioP4        float64 `yaml:"diff_ratio_p4"`
	DiffRatioCloseP4   float64 `yaml:"diff_ratio_close_p4"`
	MinPeakAmp         uint8   `yaml:"min_peak_amp"`
	MaxNoiseFloor      uint8   `yaml:"max_noise_floor"`
	MaxNoiseFloorClose uint8   `yaml:"max_noise_floor_close"`
}

func DefaultDetectConfig() DetectConfig {
	return DetectConfig{
		Diff:               10,
		DiffClose:          5,
		DiffRatio:          0.25,
		DiffRatioClose:     0.75,
		DiffRatioP4:        0.5,
		DiffRatioCloseP4:   1.5,
		MinPeakAmp:         0,
		MaxNoiseFloor:      255,
		MaxNoiseFloorClose: 255,
	}
}

func (c DetectConfig) Validate() error {
	var ratios = []struct {
		name  string
		value float64
	}{
		{"diff_ratio", c.DiffRatio},
		{"diff_ratio_close", c.DiffRatioClose},
		{"diff_ratio_p4", c.DiffRatioP4},
		{"diff_ratio_close_p4", c.DiffRatioCloseP4},
	}

	for _, r := range ratios {
		if !(r.value > 0) || math.IsInf(r.value, 0) {
			return fmt.Errorf("%s = %v: %w", r.name, r.value, ErrInvalidRatio)
		}
	}

	return nil
}

type Tuning struct {
	FrequencyHz uint32
	SampleRate  uint32
}

func (t Tuning) String() string {
	return fmt.Sprintf("%.3f MHz at %.3f Msps", float64(t.FrequencyHz)/1e6, float64(t.SampleRate)/1e6)
}

var (
	UplinkTuning   = Tuning{FrequencyHz: 1030000000, SampleRate: 2500000}
	DownlinkTuning = Tuning{FrequencyHz: 1090000000, SampleRate: 2000000}
)

const (
	DefaultBufferSize = 262144
	BufferSizeStep    = 16384
	MinBufferSize     = 512
)

// RoundBufferSize applies the --size rules.  Sizes of a step or more are rounded down
// to a multiple of the step, anything from the minimum up is kept (made even so it
// holds whole I/Q pairs) and anything smaller gets the default.
func RoundBufferSize(n int) int {
	switch {
	case n >= BufferSizeStep:
		return n - n%BufferSizeStep
	case n >= MinBufferSize:
		return n &^ 1
	default:
		return DefaultBufferSize
	}
}

const DefaultRTLTCPAddr = "127.0.0.1:1234"

type Config struct {
	Detect DetectConfig
	Tuning Tuning

	File        string // empty means use the rtl_tcp device
	RTLTCPAddr  string
	DeviceIndex int
	GainDB      float64
	AutoGain    bool
	MaxGain     bool // no --gain given
	AGC         bool

	// Raw buffer size in bytes.  Zero, only allowed with a file, means the whole file.
	Size int

	Baseline      bool
	BaselineOut   string
	PrintOrder    bool
	PrintMessages bool
	PrintAll      bool
	Continuous    bool

	TimestampFormat string
	LogFile         string
	LogDir          string

	MetricsAddr string
	DNSSD       bool
	DNSSDName   string

	MQTTBroker string
	MQTTTopic  string
}

func DefaultConfig() Config {
	return Config{ //nolint:exhaustruct
		Detect:     DefaultDetectConfig(),
		Tuning:     UplinkTuning,
		RTLTCPAddr: DefaultRTLTCPAddr,
		MaxGain:    true,
		MQTTTopic:  "dump1030/stats",
	}
}

func (c Config) Validate() error {
	if err := c.Detect.Validate(); err != nil {
		return err
	}

	if c.File == "" && c.RTLTCPAddr == "" {
		return ErrNoInput
	}

	if c.File == "" && c.Size == 0 {
		return fmt.Errorf("device mode needs a buffer size: %w", ErrNoInput)
	}

	if c.LogFile != "" && c.LogDir != "" {
		return ErrLogConflict
	}

	return nil
}
