package dump1030

import "errors"

var (
	ErrUnsupportedTuning   = errors.New("detector only supports 1030 MHz at 2.5 Msps")
	ErrDownlinkUnsupported = errors.New("downlink (1090 MHz) detection is not implemented")
	ErrInvalidRatio        = errors.New("ratio thresholds must be positive")
	ErrInvalidGain         = errors.New("gain must be a number of dB or \"auto\"")
	ErrNoInput             = errors.New("no input file and no rtl_tcp address")
	ErrNoDevices           = errors.New("no supported RTL-SDR devices found")
	ErrLogConflict         = errors.New("use only one of the log file and the log directory")
	ErrShortBlock          = errors.New("device delivered a short block")
	ErrMQTTTimeout         = errors.New("timed out")
)
