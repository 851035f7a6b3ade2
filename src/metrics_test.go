package dump1030

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MetricsCycle(t *testing.T) {
	var m = NewMetrics()

	var first = cycleWith(1,
		Message{Kind: ModeA, Variant: Plain, Start: 0},
		Message{Kind: ModeA, Variant: Plain, Start: 40},
		Message{Kind: ModeC, Variant: AllCallCompat, Start: 80},
	)
	first.Time = time.Unix(1700000000, 0)
	first.RawBytes = 1000

	m.Cycle(first)

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.messages.WithLabelValues("A", "plain")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.messages.WithLabelValues("C", "all_call_compat")), 0)
	assert.InDelta(t, 500.0, testutil.ToFloat64(m.samples), 0)
	assert.InDelta(t, 1.7e9, testutil.ToFloat64(m.lastActivity), 0)

	var second = cycleWith(2)
	second.Time = time.Unix(1700000100, 0)
	second.Bypassed = true

	m.Cycle(second)

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.cycles), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.bypassed), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.messages.WithLabelValues("A", "plain")), 0)
	assert.InDelta(t, 0.0, testutil.ToFloat64(m.lastCycle.WithLabelValues("A", "plain")), 0)
	assert.InDelta(t, 1.7e9, testutil.ToFloat64(m.lastActivity), 0, "unchanged by an empty cycle")
}

func Test_MetricsHandler(t *testing.T) {
	var m = NewMetrics()
	m.Cycle(cycleWith(1, Message{Kind: ModeS, Variant: Plain, Start: 0}))

	var rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dump1030_messages_total{mode="S",variant="plain"} 1`)
	assert.Contains(t, rec.Body.String(), "dump1030_cycles_total 1")
}

func Test_MetricsServe(t *testing.T) {
	var ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	var m = NewMetrics()

	var port, err = m.Serve(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	require.NotZero(t, port)

	var resp, getErr = http.Get(fmt.Sprintf("http://127.0.0.1:%d/metrics", port)) //nolint:noctx
	require.NoError(t, getErr)
	defer resp.Body.Close()

	var body, readErr = io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	assert.Contains(t, string(body), "dump1030_cycles_total 0")
}
