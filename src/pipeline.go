package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:	Connect acquisition to analysis.
 *
 * Description:	The source runs in its own goroutine and hands filled
 *		buffers over a channel with room for one.  While the
 *		analysis side is busy with a buffer the source can fill
 *		one more and then blocks, so there is never more than a
 *		single buffer waiting.
 *
 *		Analysis turns the buffer into amplitudes, gives the
 *		raw buffer back, scans, reports and then tells every
 *		sink about the cycle.  A scan is never interrupted.
 *		Cancelling the context stops the source between
 *		buffers.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"time"
)

// CycleResult describes one finished cycle.  Scan is only valid during the call.
type CycleResult struct {
	Index    int
	Time     time.Time
	RawBytes int
	Scan     *Scan
	Stats    Stats
	Elapsed  time.Duration
	Bypassed bool
}

type CycleSink interface {
	Cycle(res CycleResult)
}

type Pipeline struct {
	Source Source

	// Nil when the tuning can't be handled.  Cycles still run but find nothing.
	Detector *Detector

	Reporter  *Reporter // optional
	Sinks     []CycleSink
	Calibrate bool

	Stats Stats
}

func (p *Pipeline) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var blocks = make(chan Block, 1)
	var acquired = make(chan error, 1)

	go func() {
		defer close(blocks)
		acquired <- p.Source.Stream(ctx, blocks)
	}()

	var scan = NewScan(p.Calibrate)
	var mag []uint8

	for b := range blocks {
		mag = ComputeMagnitudeInto(mag, b.Data)

		var raw = len(b.Data)
		b.Release()

		p.analyse(mag, raw, scan)
	}

	var err = <-acquired
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func (p *Pipeline) analyse(mag []uint8, raw int, scan *Scan) {
	var start = time.Now()

	scan.Reset()

	if p.Detector != nil {
		p.Detector.Scan(mag, scan)
	}

	p.Stats.Record(scan.Counts)

	var res = CycleResult{
		Index:    p.Stats.Cycles,
		Time:     start,
		RawBytes: raw,
		Scan:     scan,
		Stats:    p.Stats,
		Elapsed:  time.Since(start),
		Bypassed: p.Detector == nil,
	}

	logger.Debug("cycle done", "cycle", res.Index, "samples", len(mag), "messages", scan.Counts.Total, "elapsed", res.Elapsed)

	if p.Reporter != nil {
		p.Reporter.Report(mag, scan, &p.Stats, raw)
	}

	for _, s := range p.Sinks {
		s.Cycle(res)
	}
}
