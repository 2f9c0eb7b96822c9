package delivery

import (
	"time"

	"rental-notify/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// deliveriesTotal tracks ledger writes per channel and resulting status
	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_deliveries_total",
			Help: "Total number of delivery attempts recorded in the ledger",
		},
		[]string{"channel", "status"},
	)

	// providerCallDuration tracks provider gateway call duration
	providerCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notify_provider_call_duration_seconds",
			Help:    "Provider gateway call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"channel"},
	)
	// receiptsTotal tracks webhook receipt patches applied to the ledger
	receiptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_receipts_total",
			Help: "Total number of provider receipt events applied",
		},
		[]string{"channel", "status"},
	)
)

func recordDelivery(ch entity.Channel, status string) {
	deliveriesTotal.WithLabelValues(string(ch), status).Inc()
}

func observeProviderCall(ch entity.Channel, d time.Duration) {
	providerCallDuration.WithLabelValues(string(ch)).Observe(d.Seconds())
}

func recordReceipt(ch entity.Channel, status string) {
	receiptsTotal.WithLabelValues(string(ch), status).Inc()
}
