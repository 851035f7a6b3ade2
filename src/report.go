package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:	Human readable output of a detection cycle.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lestrrat-go/strftime"
)

type ReportOptions struct {
	Continuous    bool
	PrintOrder    bool
	PrintMessages bool
	PrintAll      bool
	Baseline      bool

	// strftime pattern.  When set every report starts with a time stamp line.
	TimestampFormat string
}

type Reporter struct {
	w         io.Writer
	opts      ReportOptions
	timestamp *strftime.Strftime
	now       func() time.Time
}

func NewReporter(w io.Writer, opts ReportOptions) (*Reporter, error) {
	var r = &Reporter{w: w, opts: opts, timestamp: nil, now: time.Now}

	if opts.TimestampFormat != "" {
		var f, err = strftime.New(opts.TimestampFormat)
		if err != nil {
			return nil, fmt.Errorf("timestamp format %q: %w", opts.TimestampFormat, err)
		}

		r.timestamp = f
	}

	return r, nil
}

/*------------------------------------------------------------------
 *
 * Name:	Report
 *
 * Purpose:	Print everything that was asked for about one cycle.
 *
 * Inputs:	mag	- Amplitudes the scan ran over.
 *
 *		scan	- Results of the cycle.
 *
 *		stats	- Already updated with this cycle.
 *
 *		rawBytes - Size of the raw buffer the cycle came from.
 *
 *------------------------------------------------------------------*/

func (r *Reporter) Report(mag []uint8, scan *Scan, stats *Stats, rawBytes int) {
	if r.timestamp != nil {
		fmt.Fprintf(r.w, "[%s]\n", r.timestamp.FormatString(r.now()))
	}

	if r.opts.PrintAll {
		amplitudeDump(r.w, mag)
		fmt.Fprintf(r.w, "\n")
	}

	if r.opts.PrintMessages {
		for _, msg := range scan.Messages {
			r.printMessage(mag, msg)
		}
	}

	r.printStats(stats, rawBytes)

	if r.opts.PrintOrder && scan.Order.Len() > 0 {
		fmt.Fprintf(r.w, "Sequence of recognized modes in message:\n")

		for _, line := range scan.Order.Summarize() {
			fmt.Fprintf(r.w, "%s\n", line)
		}
	}

	if r.opts.Baseline && scan.Baseline != nil {
		r.printRecommendation(scan.Baseline.Recommend())
	}
}

func (r *Reporter) printMessage(mag []uint8, msg Message) {
	var end = min(msg.Start+msg.Window(), len(mag))
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s message starting from sample number: %d ", msg.Label(), msg.Start)

	for _, m := range mag[msg.Start:end] {
		fmt.Fprintf(&sb, " %d", m)
	}

	fmt.Fprintf(r.w, "%s\n\n", sb.String())
}

func countLine(w io.Writer, label string, n int) {
	fmt.Fprintf(w, "%-58s %s\n", label+":", humanize.Comma(int64(n)))
}

func printCounts(w io.Writer, totalLabel string, c Counts) {
	countLine(w, totalLabel, c.Total)
	countLine(w, "Mode A messages recognized", c.ModeA)
	countLine(w, "Mode C messages recognized", c.ModeC)
	countLine(w, "Mode A All-Call messages recognized", c.ModeAAllCall)
	countLine(w, "Mode C All-Call messages recognized", c.ModeCAllCall)
	countLine(w, "Mode A All-Call (Compatibility Mode) messages recognized", c.ModeAAllCallCompat)
	countLine(w, "Mode C All-Call (Compatibility Mode) messages recognized", c.ModeCAllCallCompat)
	countLine(w, "Mode S messages recognized", c.ModeS)
	fmt.Fprintf(w, "\n")
}

func (r *Reporter) printStats(stats *Stats, rawBytes int) {
	if stats.Cycle.Total == 0 {
		if !r.opts.Continuous {
			fmt.Fprintf(r.w, "No messages detected.\n")
		}

		return
	}

	fmt.Fprintf(r.w, "Statistics of measured data with length of %s bytes:\n", humanize.Comma(int64(rawBytes)))
	printCounts(r.w, "Messages recognized in total", stats.Cycle)

	if r.opts.Continuous {
		fmt.Fprintf(r.w, "Cumulative statistics so far (%s cycles):\n", humanize.Comma(int64(stats.Cycles)))
		printCounts(r.w, "Messages recognized in total", stats.Cumulative)
	}
}

func (r *Reporter) printRecommendation(rec Recommendation) {
	var lines = []struct {
		label string
		e     Estimate
	}{
		{"Recommended minimum pulse amplitude (mpa)", rec.MinPeakAmp},
		{"Recommended maximum noise floor (mnf)", rec.MaxNoiseFloor},
		{"Recommended maximum close pulse proximity noise floor (mnfc)", rec.MaxNoiseFloorClose},
	}

	for _, l := range lines {
		if l.e.OK {
			fmt.Fprintf(r.w, "%s: %d (std dev %.1f over %s samples)\n", l.label, l.e.Mean, l.e.StdDev, humanize.Comma(int64(l.e.Samples)))
		}
	}
}
