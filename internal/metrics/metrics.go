package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Technical metrics
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	ResponseTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_time_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: []float64{0.1, 0.5, 1, 2, 5},
	}, []string{"method", "path"})

	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_cache_requests_total",
		Help: "Table reads served from or missed by the read cache",
	}, []string{"table", "result"})

	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_errors_total",
		Help: "Failed store operations",
	}, []string{"op"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sessions_active",
		Help: "Sessions currently held by the in-memory session store",
	})

	LiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "live_subscribers",
		Help: "Connected websocket subscribers of the booking feed",
	})

	// Business metrics
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registrations_total",
		Help: "Total number of registered farmers and corporates",
	}, []string{"role"})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logins_total",
		Help: "Login attempts by role and result",
	}, []string{"role", "result"})

	SlotsBooked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slots_booked_total",
		Help: "Total number of pickup slots booked",
	})

	QuantityBooked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantity_booked_tonnes_total",
		Help: "Total produce quantity booked, in tonnes",
	})

	PaymentsUpdated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_updated_total",
		Help: "Payment status changes by new status",
	}, []string{"status"})

	AdviceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advice_requests_total",
		Help: "Advisory requests by source (model or fallback)",
	}, []string{"source"})
)
