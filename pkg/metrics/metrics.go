package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса.
// Все методы безопасно вызывать у nil-указателя: метрики могут быть выключены в конфиге.
type Metrics struct {
	service string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueriesTotal    *prometheus.CounterVec
	DBQueryDuration   *prometheus.HistogramVec
	DBOpenConnections *prometheus.GaugeVec

	BookingsCreatedTotal      *prometheus.CounterVec
	BookingConflictsTotal     *prometheus.CounterVec
	BookingCancellationsTotal *prometheus.CounterVec
}

// New регистрирует метрики в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует метрики в переданном реестре
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		service: serviceName,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "route"}),
		DBQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries",
		}, []string{"service", "operation", "status"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation"}),
		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections",
			Help: "Database connection pool state",
		}, []string{"service", "state"}),
		BookingsCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of created bookings",
		}, []string{"service"}),
		BookingConflictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_conflicts_total",
			Help: "Booking attempts rejected because of an overlapping booking",
		}, []string{"service", "operation"}),
		BookingCancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_cancellations_total",
			Help: "Total number of cancelled bookings",
		}, []string{"service", "actor_role"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueriesTotal,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.BookingsCreatedTotal,
		m.BookingConflictsTotal,
		m.BookingCancellationsTotal,
	)

	return m
}

// Service возвращает имя сервиса, которым помечаются метрики
func (m *Metrics) Service() string {
	if m == nil {
		return ""
	}
	return m.service
}

func (m *Metrics) BookingCreated() {
	if m == nil {
		return
	}
	m.BookingsCreatedTotal.WithLabelValues(m.service).Inc()
}

func (m *Metrics) BookingConflict(operation string) {
	if m == nil {
		return
	}
	m.BookingConflictsTotal.WithLabelValues(m.service, operation).Inc()
}

func (m *Metrics) BookingCancelled(actorRole string) {
	if m == nil {
		return
	}
	m.BookingCancellationsTotal.WithLabelValues(m.service, actorRole).Inc()
}
