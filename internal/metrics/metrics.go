package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_operations_total",
			Help: "Total number of order operations",
		},
		[]string{"operation", "status"},
	)

	channelPeers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_channel_peers",
			Help: "Connected realtime channel peers",
		},
	)

	channelDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_channel_dropped_messages_total",
			Help: "Messages dropped because a peer's buffer was full",
		},
	)

	productCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_product_cache_lookups_total",
			Help: "Product cache lookups by result",
		},
		[]string{"result"},
	)
)

func ObserveHTTPRequest(method, path, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}

func RecordOrderOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	orderOperations.WithLabelValues(operation, status).Inc()
}

func ChannelPeerConnected()    { channelPeers.Inc() }
func ChannelPeerDisconnected() { channelPeers.Dec() }
func ChannelMessageDropped()   { channelDropped.Inc() }

// RecordCacheLookup counts hit, miss and error results.
func RecordCacheLookup(result string) {
	productCache.WithLabelValues(result).Inc()
}
