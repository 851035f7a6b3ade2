package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:	Stream I/Q samples from an RTL-SDR dongle served by rtl_tcp.
 *
 * Description:	The dongle is tuned to the uplink frequency and sample
 *		rate, then fixed size blocks are read off the socket.
 *		Gain is given in dB and sent in tenths of dB.  With no
 *		gain at all the highest gain step the tuner offers is
 *		used.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"

	"github.com/bemasher/rtltcp"
)

type RTLTCPSource struct {
	Addr        string
	DeviceIndex int
	Tuning      Tuning
	Size        int
	GainDB      float64
	AutoGain    bool
	MaxGain     bool
	AGC         bool
	Continuous  bool
}

func (s *RTLTCPSource) tune(sdr *rtltcp.SDR) error {
	if err := sdr.SetSampleRate(s.Tuning.SampleRate); err != nil {
		return fmt.Errorf("setting sample rate: %w", err)
	}

	if err := sdr.SetCenterFreq(s.Tuning.FrequencyHz); err != nil {
		return fmt.Errorf("setting centre frequency: %w", err)
	}

	switch {
	case s.AutoGain:
		// Gain mode 0 is the tuner's own automatic gain.
		if err := sdr.SetGainMode(false); err != nil {
			return fmt.Errorf("setting gain mode: %w", err)
		}

		logger.Info("using automatic gain control")
	case s.MaxGain && sdr.Info.GainCount > 0:
		if err := sdr.SetGainMode(true); err != nil {
			return fmt.Errorf("setting gain mode: %w", err)
		}

		if err := sdr.SetGainByIndex(sdr.Info.GainCount - 1); err != nil {
			return fmt.Errorf("setting gain: %w", err)
		}

		logger.Info("using maximum available gain", "steps", sdr.Info.GainCount)
	default:
		if err := sdr.SetGainMode(true); err != nil {
			return fmt.Errorf("setting gain mode: %w", err)
		}

		var tenths = uint32(math.Round(s.GainDB * 10)) //nolint:gosec
		if err := sdr.SetGain(tenths); err != nil {
			return fmt.Errorf("setting gain: %w", err)
		}

		logger.Info("setting gain", "dB", float64(tenths)/10)
	}

	if s.AGC {
		if err := sdr.SetAGCMode(true); err != nil {
			return fmt.Errorf("enabling RTL AGC: %w", err)
		}
	}

	return nil
}

func (s *RTLTCPSource) Stream(ctx context.Context, out chan<- Block) error {
	var addr, resolveErr = net.ResolveTCPAddr("tcp", s.Addr)
	if resolveErr != nil {
		return fmt.Errorf("rtl_tcp address %q: %w", s.Addr, resolveErr)
	}

	var sdr rtltcp.SDR

	if err := sdr.Connect(addr); err != nil {
		return &DeviceError{Addr: s.Addr, Index: s.DeviceIndex, Err: err}
	}
	defer sdr.Close()

	logger.Info("connected to rtl_tcp", "addr", s.Addr, "tuner", sdr.Info.Tuner)

	if err := s.tune(&sdr); err != nil {
		return &DeviceError{Addr: s.Addr, Index: s.DeviceIndex, Err: err}
	}

	// Reads block, closing the connection is the only way to interrupt them.
	var stop = context.AfterFunc(ctx, func() { _ = sdr.Close() })
	defer stop()

	for {
		var buf = make([]byte, s.Size)

		if _, err := io.ReadFull(sdr, buf); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("%w: %w", ErrShortBlock, err)
			}

			return fmt.Errorf("reading samples: %w", err)
		}

		if err := sendBlock(ctx, out, NewBlock(buf)); err != nil {
			return err
		}

		if !s.Continuous {
			return nil
		}
	}
}

// DeviceError means the device could not be opened or set up.
type DeviceError struct {
	Addr  string
	Index int
	Err   error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("RTL-SDR device %d via rtl_tcp at %s: %v", e.Index, e.Addr, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
