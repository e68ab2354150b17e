package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_BookingCounters(t *testing.T) {
	m := NewWithRegistry("booking", prometheus.NewRegistry())

	m.BookingCreated()
	m.BookingCreated()
	m.BookingConflict("create")
	m.BookingCancelled("customer")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingsCreatedTotal.WithLabelValues("booking")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingConflictsTotal.WithLabelValues("booking", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingCancellationsTotal.WithLabelValues("booking", "customer")))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.BookingCreated()
		m.BookingConflict("create")
		m.BookingCancelled("owner")
	})
	assert.Equal(t, "", m.Service())
}
