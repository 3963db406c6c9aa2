package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the VMC keymap service
type Metrics struct {
	// UDP packet metrics
	PacketsReceived  prometheus.Counter
	PacketsProcessed prometheus.Counter
	PacketsDropped   prometheus.Counter
	ParseErrors      prometheus.Counter
	QueueSize        prometheus.Gauge
	PacketSize       prometheus.Histogram

	// OSC message metrics
	MessagesDecoded *prometheus.CounterVec
	MessagesMatched prometheus.Counter
	MessagesIgnored prometheus.Counter

	// Key action metrics
	KeyPresses       *prometheus.CounterVec
	KeyPressFailures *prometheus.CounterVec

	// Source metrics
	ActiveSources prometheus.Gauge

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the default registry
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers all metrics with reg
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PacketsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "vmc_packets_received_total",
			Help: "Total number of UDP packets received",
		}),
		PacketsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "vmc_packets_processed_total",
			Help: "Total number of UDP packets decoded without error",
		}),
		PacketsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "vmc_packets_dropped_total",
			Help: "Total number of UDP packets dropped because the queue was full",
		}),
		ParseErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "vmc_parse_errors_total",
			Help: "Total number of packets discarded as malformed OSC",
		}),
		QueueSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vmc_packet_queue_size",
			Help: "Current number of packets in processing queue",
		}),
		PacketSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vmc_packet_size_bytes",
			Help:    "Size of received UDP packets",
			Buckets: prometheus.ExponentialBuckets(16, 2, 12), // 16B to 32KB
		}),

		MessagesDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vmc_osc_messages_decoded_total",
			Help: "Total number of OSC messages decoded, by packet kind",
		}, []string{"packet_kind"}),
		MessagesMatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "vmc_controller_reports_total",
			Help: "Total number of /VMC/Ext/Con reports decoded",
		}),
		MessagesIgnored: factory.NewCounter(prometheus.CounterOpts{
			Name: "vmc_osc_messages_ignored_total",
			Help: "Total number of well-formed OSC messages that were not controller reports",
		}),

		KeyPresses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vmc_key_presses_total",
			Help: "Total number of synthesized key presses",
		}, []string{"key"}),
		KeyPressFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vmc_key_press_failures_total",
			Help: "Total number of key presses the backend failed to inject",
		}, []string{"key"}),

		ActiveSources: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vmc_active_sources",
			Help: "Current number of OSC senders seen within the source timeout",
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vmc_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vmc_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vmc_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordPacketReceived increments the packets received counter
func (m *Metrics) RecordPacketReceived(size int) {
	m.PacketsReceived.Inc()
	m.PacketSize.Observe(float64(size))
}

// RecordPacketDropped increments the dropped packets counter
func (m *Metrics) RecordPacketDropped() {
	m.PacketsDropped.Inc()
}

// RecordPacketProcessed records a decoded packet and its messages
func (m *Metrics) RecordPacketProcessed(kind string, messages, matched, ignored int) {
	m.PacketsProcessed.Inc()
	m.RecordMessages(kind, messages, matched, ignored)
}

// RecordMessages adds message counts without counting a processed packet
func (m *Metrics) RecordMessages(kind string, messages, matched, ignored int) {
	if messages > 0 {
		m.MessagesDecoded.WithLabelValues(kind).Add(float64(messages))
	}
	if matched > 0 {
		m.MessagesMatched.Add(float64(matched))
	}
	if ignored > 0 {
		m.MessagesIgnored.Add(float64(ignored))
	}
}

// RecordParseError increments the parse errors counter
func (m *Metrics) RecordParseError() {
	m.ParseErrors.Inc()
}

// SetQueueSize sets the current queue size
func (m *Metrics) SetQueueSize(size int) {
	m.QueueSize.Set(float64(size))
}

// RecordKeyPress increments the key press counter
func (m *Metrics) RecordKeyPress(key string) {
	m.KeyPresses.WithLabelValues(key).Inc()
}

// RecordKeyPressFailure increments the key press failure counter
func (m *Metrics) RecordKeyPressFailure(key string) {
	m.KeyPressFailures.WithLabelValues(key).Inc()
}

// SetActiveSources sets the current number of tracked sources
func (m *Metrics) SetActiveSources(count int) {
	m.ActiveSources.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
