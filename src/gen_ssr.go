package dump1030

/*------------------------------------------------------------------
 *
 * Name:	gen_ssr
 *
 * Purpose:	Test program for generating SSR interrogations.
 *
 * Description:	Writes a capture file of 8 bit I/Q samples, as rtl_sdr
 *		would record at 1030 MHz and 2.5 Msps, holding the
 *		requested number of each interrogation type.  Messages
 *		are written in a fixed order: Mode A, Mode C, Mode S,
 *		then the All-Call and compatibility variants.
 *
 * Examples:	gen_ssr -o z.bin --mode-a 5 --mode-s 3
 *		dump1030 -f z.bin --order
 *
 *		With a little noise, compressed:
 *
 *		gen_ssr -o z.bin.zst --mode-c 10 --jitter 3
 *		dump1030 -f z.bin.zst
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/pflag"
)

// Every message gets a slot this many samples long, the rest of it is noise.
const genSlot = 200

// Quiet samples before the first message.
const genLeadIn = 20

// Mode S P6 data block.
const (
	modeSP6Start = 9
	modeSP6End   = 48
)

type Synth struct {
	Pulse  uint8
	Noise  uint8
	Jitter int // noise varies by up to this much either way
	Seed   uint64
}

// pulseOffsets lists the samples of msg that carry a pulse, relative to P1.
func pulseOffsets(msg Message) []int {
	if msg.Kind == ModeS {
		var offs = []int{0, 1, 5, 6}
		for k := modeSP6Start; k < modeSP6End; k++ {
			offs = append(offs, k)
		}

		return offs
	}

	var p3 = msg.p3()
	var p4 = p3 + p4AfterP3
	var offs = []int{0, 1, p3, p3 + 1}

	switch msg.Variant {
	case AllCall:
		offs = append(offs, p4, p4+1)
	case AllCallCompat:
		offs = append(offs, p4, p4+1, p4+2, p4+3)
	case Plain:
	}

	return offs
}

// Amplitudes lays the messages out one per slot.  The Start of each message
// is filled in with where it was put.
func (s Synth) Amplitudes(msgs []Message) []uint8 {
	var rng = rand.New(rand.NewPCG(s.Seed, s.Seed^0x1030)) //nolint:gosec
	var mag = make([]uint8, genLeadIn+len(msgs)*genSlot)

	for i := range mag {
		var n = int(s.Noise)
		if s.Jitter > 0 {
			n += rng.IntN(2*s.Jitter+1) - s.Jitter
		}

		mag[i] = uint8(max(1, min(255, n))) //nolint:gosec
	}

	for i := range msgs {
		msgs[i].Start = genLeadIn + i*genSlot

		for _, k := range pulseOffsets(msgs[i]) {
			mag[msgs[i].Start+k] = s.Pulse
		}
	}

	return mag
}

// AmplitudesToIQ picks, for every amplitude, an I/Q pair that the magnitude
// table maps back to it or to the nearest value it can produce.  The sign of I
// alternates, like a carrier would.
func AmplitudesToIQ(mag []uint8) []byte {
	var iq = make([]byte, 2*len(mag))

	for j, a := range mag {
		var ci = min(128, int(math.Round(float64(a)/magnitudeScale)))

		var i = 127 + ci
		if j%2 == 1 && ci <= 127 {
			i = 127 - ci
		}

		iq[2*j] = byte(i)
		iq[2*j+1] = 127
	}

	return iq
}

func parseMessageCounts(counts map[string]*int) []Message {
	var order = []struct {
		flag string
		msg  Message
	}{
		{"mode-a", Message{Kind: ModeA, Variant: Plain, Start: 0}},
		{"mode-c", Message{Kind: ModeC, Variant: Plain, Start: 0}},
		{"mode-s", Message{Kind: ModeS, Variant: Plain, Start: 0}},
		{"mode-a-allcall", Message{Kind: ModeA, Variant: AllCall, Start: 0}},
		{"mode-c-allcall", Message{Kind: ModeC, Variant: AllCall, Start: 0}},
		{"mode-a-compat", Message{Kind: ModeA, Variant: AllCallCompat, Start: 0}},
		{"mode-c-compat", Message{Kind: ModeC, Variant: AllCallCompat, Start: 0}},
	}

	var msgs []Message

	for _, o := range order {
		for range *counts[o.flag] {
			msgs = append(msgs, o.msg)
		}
	}

	return msgs
}

func writeCapture(path string, iq []byte) error {
	var f, err = os.Create(path)
	if err != nil {
		return err
	}

	var w io.WriteCloser = f

	if strings.HasSuffix(path, ".zst") {
		var zw, zErr = zstd.NewWriter(f)
		if zErr != nil {
			f.Close()

			return zErr
		}

		if _, err := zw.Write(iq); err != nil {
			zw.Close()
			f.Close()

			return err
		}

		if err := zw.Close(); err != nil {
			f.Close()

			return err
		}

		return f.Close()
	}

	if _, err := w.Write(iq); err != nil {
		w.Close()

		return err
	}

	return w.Close()
}

func GenSSRMain() {
	var counts = map[string]*int{
		"mode-a":         pflag.IntP("mode-a", "a", 0, "Number of Mode A interrogations."),
		"mode-c":         pflag.IntP("mode-c", "c", 0, "Number of Mode C interrogations."),
		"mode-s":         pflag.IntP("mode-s", "s", 0, "Number of Mode S interrogations."),
		"mode-a-allcall": pflag.Int("mode-a-allcall", 0, "Number of Mode A All-Call interrogations."),
		"mode-c-allcall": pflag.Int("mode-c-allcall", 0, "Number of Mode C All-Call interrogations."),
		"mode-a-compat":  pflag.Int("mode-a-compat", 0, "Number of Mode A All-Call (Compatibility Mode) interrogations."),
		"mode-c-compat":  pflag.Int("mode-c-compat", 0, "Number of Mode C All-Call (Compatibility Mode) interrogations."),
	}
	var pulse = pflag.Uint8P("pulse", "p", 100, "Pulse amplitude.")
	var noise = pflag.Uint8P("noise", "n", 10, "Noise floor amplitude.")
	var jitter = pflag.IntP("jitter", "j", 0, "Vary the noise floor randomly by up to this much.")
	var seed = pflag.Uint64("seed", 1, "Random seed for the noise.")
	var outputFile = pflag.StringP("output-file", "o", "", "Write I/Q samples to this file.  A .zst name compresses it.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Generate an I/Q capture holding SSR interrogations.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Example:  gen_ssr -o x.bin -a 3 -s 2\n")
	}

	// !!! PARSE !!!
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if *outputFile == "" {
		fmt.Fprintf(os.Stderr, "An output file is required.\n")
		pflag.Usage()
		os.Exit(1)
	}

	if *jitter < 0 || int(*noise)+*jitter >= int(*pulse) {
		fmt.Fprintf(os.Stderr, "Noise plus jitter must stay below the pulse amplitude.\n")
		os.Exit(1)
	}

	var msgs = parseMessageCounts(counts)

	var synth = Synth{Pulse: *pulse, Noise: *noise, Jitter: *jitter, Seed: *seed}
	var iq = AmplitudesToIQ(synth.Amplitudes(msgs))

	if err := writeCapture(*outputFile, iq); err != nil {
		fmt.Fprintf(os.Stderr, "Can't write %s: %s\n", *outputFile, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d interrogations, %d samples, to %s\n", len(msgs), len(iq)/2, *outputFile)
}
