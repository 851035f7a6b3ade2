package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:	Export detection counters for Prometheus.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	messages     *prometheus.CounterVec // by mode and variant
	cycles       prometheus.Counter
	samples      prometheus.Counter
	lastCycle    *prometheus.GaugeVec // messages in the latest cycle, by mode and variant
	scanSeconds  prometheus.Histogram
	bypassed     prometheus.Counter
	lastActivity prometheus.Gauge
}

func NewMetrics() *Metrics {
	var reg = prometheus.NewRegistry()
	var f = promauto.With(reg)

	return &Metrics{
		registry: reg,
		messages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dump1030_messages_total",
				Help: "SSR interrogations recognized",
			},
			[]string{"mode", "variant"},
		),
		cycles: f.NewCounter(prometheus.CounterOpts{
			Name: "dump1030_cycles_total",
			Help: "Buffers analysed",
		}),
		samples: f.NewCounter(prometheus.CounterOpts{
			Name: "dump1030_samples_total",
			Help: "Amplitude samples scanned",
		}),
		lastCycle: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dump1030_cycle_messages",
				Help: "Interrogations recognized in the latest cycle",
			},
			[]string{"mode", "variant"},
		),
		scanSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "dump1030_cycle_seconds",
			Help:    "Time spent scanning and reporting one buffer",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		bypassed: f.NewCounter(prometheus.CounterOpts{
			Name: "dump1030_cycles_bypassed_total",
			Help: "Buffers skipped because the tuning is unsupported",
		}),
		lastActivity: f.NewGauge(prometheus.GaugeOpts{
			Name: "dump1030_last_message_timestamp_seconds",
			Help: "Unix time of the latest cycle with at least one interrogation",
		}),
	}
}

var countSeries = []struct {
	mode    string
	variant string
	get     func(Counts) int
}{
	{"A", "plain", func(c Counts) int { return c.ModeA }},
	{"C", "plain", func(c Counts) int { return c.ModeC }},
	{"S", "plain", func(c Counts) int { return c.ModeS }},
	{"A", "all_call", func(c Counts) int { return c.ModeAAllCall }},
	{"C", "all_call", func(c Counts) int { return c.ModeCAllCall }},
	{"A", "all_call_compat", func(c Counts) int { return c.ModeAAllCallCompat }},
	{"C", "all_call_compat", func(c Counts) int { return c.ModeCAllCallCompat }},
}

func (m *Metrics) Cycle(res CycleResult) {
	m.cycles.Inc()
	m.samples.Add(float64(res.RawBytes / 2))
	m.scanSeconds.Observe(res.Elapsed.Seconds())

	if res.Bypassed {
		m.bypassed.Inc()
	}

	var c = res.Scan.Counts

	for _, s := range countSeries {
		var n = s.get(c)
		m.messages.WithLabelValues(s.mode, s.variant).Add(float64(n))
		m.lastCycle.WithLabelValues(s.mode, s.variant).Set(float64(n))
	}

	if c.Total > 0 {
		m.lastActivity.Set(float64(res.Time.Unix()))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}) //nolint:exhaustruct
}

// Serve listens on addr until ctx is done.  It returns the port actually bound,
// which matters when addr asks for port 0.
func (m *Metrics) Serve(ctx context.Context, addr string) (int, error) {
	var ln, err = net.Listen("tcp", addr)
	if err != nil {
		return 0, err
	}

	var mux = http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	var srv = &http.Server{ //nolint:exhaustruct
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		var serveErr = srv.Serve(ln)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "err", serveErr)
		}
	}()

	context.AfterFunc(ctx, func() {
		var shutdownCtx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})

	logger.Info("serving metrics", "addr", ln.Addr().String())

	return ln.Addr().(*net.TCPAddr).Port, nil
}
