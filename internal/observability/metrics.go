package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	adminRequestsTotal  *prometheus.CounterVec
	adminLatencySeconds *prometheus.HistogramVec
	adminErrorsTotal    *prometheus.CounterVec

	participationTransitionsTotal *prometheus.CounterVec
	notificationsPublishedTotal   *prometheus.CounterVec
	sseClientsActive              prometheus.Gauge
	chatConnectionsActive         prometheus.Gauge
	chatMessagesTotal             *prometheus.CounterVec
	trackerSessionsActive         prometheus.Gauge
	trackerSamplesTotal           prometheus.Counter
	routeImagesTotal              *prometheus.CounterVec
	assistantRequestsTotal        *prometheus.CounterVec
	assistantLatencySeconds       prometheus.Histogram
	uploadRequestsTotal           *prometheus.CounterVec
	uploadRejectedTotal           *prometheus.CounterVec
	uploadLatencySeconds          prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		participationTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "participation_transitions_total",
			Help: "Event participation transitions by operation and outcome.",
		}, []string{"operation", "result"})

		notificationsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Notifications pushed to live subscribers by type.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notifications_sse_clients_active",
			Help: "Number of connected notification streams.",
		})

		chatConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_connections_active",
			Help: "Number of open group chat websockets.",
		})

		chatMessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Chat messages delivered to rooms by origin.",
		}, []string{"origin"})

		trackerSessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_sessions_active",
			Help: "Number of hikes currently being tracked.",
		})

		trackerSamplesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_samples_total",
			Help: "Location samples accepted by live trackers.",
		})

		routeImagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_route_images_total",
			Help: "Route summary image generation attempts by result.",
		}, []string{"result"})

		assistantRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_requests_total",
			Help: "Assistant chat completions by outcome.",
		}, []string{"outcome"})

		assistantLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "assistant_latency_seconds",
			Help:    "Assistant reply latency including retries.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16},
		})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_requests_total",
			Help: "Upload attempts by result.",
		}, []string{"result"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_rejected_total",
			Help: "Rejected uploads by reason.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upload_latency_seconds",
			Help:    "Time spent storing uploads.",
			Buckets: prometheus.DefBuckets,
		})

		prometheus.MustRegister(
			adminRequestsTotal, adminLatencySeconds, adminErrorsTotal,
			participationTransitionsTotal, notificationsPublishedTotal, sseClientsActive,
			chatConnectionsActive, chatMessagesTotal,
			trackerSessionsActive, trackerSamplesTotal, routeImagesTotal,
			assistantRequestsTotal, assistantLatencySeconds,
			uploadRequestsTotal, uploadRejectedTotal, uploadLatencySeconds,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// ParticipationTransitions counts workflow transitions.
func ParticipationTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return participationTransitionsTotal
}

// NotificationsPublishedTotal counts notifications pushed to subscribers.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublishedTotal
}

// SSEClientsActive tracks open notification streams.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}

// ChatConnections tracks open chat websockets.
func ChatConnections() prometheus.Gauge {
	RegisterMetrics()
	return chatConnectionsActive
}

// ChatMessages counts delivered chat messages.
func ChatMessages() *prometheus.CounterVec {
	RegisterMetrics()
	return chatMessagesTotal
}

// TrackerSessions tracks live hike trackers.
func TrackerSessions() prometheus.Gauge {
	RegisterMetrics()
	return trackerSessionsActive
}

// TrackerSamples counts accepted location samples.
func TrackerSamples() prometheus.Counter {
	RegisterMetrics()
	return trackerSamplesTotal
}

// RouteImages counts route image enrichment attempts.
func RouteImages() *prometheus.CounterVec {
	RegisterMetrics()
	return routeImagesTotal
}

// AssistantRequests counts assistant completions.
func AssistantRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return assistantRequestsTotal
}

// AssistantLatency observes assistant reply latency.
func AssistantLatency() prometheus.Histogram {
	RegisterMetrics()
	return assistantLatencySeconds
}

// UploadRequests counts upload attempts.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected counts rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency observes upload storage latency.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}
