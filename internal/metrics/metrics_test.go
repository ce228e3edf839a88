package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCall(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCall("ping", 200, OutcomeSuccess, 20*time.Millisecond)
	m.ObserveCall("ping", 200, OutcomeSuccess, 30*time.Millisecond)
	m.ObserveCall("ping", 400, OutcomeFailure, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CallsTotal.WithLabelValues("ping", "200", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallsTotal.WithLabelValues("ping", "400", OutcomeFailure)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CallDuration))
}

func TestObserveUpload(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveUpload(OutcomeSuccess, 2048, time.Second)
	m.ObserveUpload(OutcomeFailure, 0, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadsTotal.WithLabelValues(OutcomeFailure)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCall("ping", 200, OutcomeSuccess, time.Millisecond)
		m.ObserveUpload(OutcomeSuccess, 1, time.Millisecond)
	})
}
