package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                         sync.Once
	metricsRouter                *chi.Mux
	activityProcessingDuration   *prometheus.HistogramVec
	pollerDurationHistogram      *prometheus.HistogramVec
	dbLatency                    *prometheus.HistogramVec
	broadcastDurationHistogram   *prometheus.HistogramVec
	connectedSubscribersGauge    prometheus.Gauge
	trackedUsersGauge            prometheus.Gauge
	totalVolumeGauge             prometheus.Gauge
	failedBroadcastSendCounter   prometheus.Counter
	leaderChangeCounter          prometheus.Counter
	queueDeliveryRejectedCounter prometheus.Counter
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5}

	activityProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "activity_event_processing_duration_seconds",
			Help:    "Histogram of activity event processing durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"activity_type", "status"},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_latency_seconds",
			Help:    "Histogram of database operation durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	broadcastDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "broadcast_duration_seconds",
			Help:    "Histogram of delta broadcast durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"message_type"},
	)

	connectedSubscribersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "connected_subscribers",
			Help: "The current number of live websocket subscribers.",
		},
	)

	trackedUsersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracked_users",
			Help: "The current number of users in the rank index.",
		},
	)

	totalVolumeGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "total_volume_usd",
			Help: "Cumulative tracked volume in USD across all users.",
		},
	)

	failedBroadcastSendCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "failed_broadcast_send_count",
			Help: "The total number of subscriber sends that failed and led to pruning.",
		},
	)

	leaderChangeCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "leader_change_count",
			Help: "The total number of leaderboard leader changes.",
		},
	)

	queueDeliveryRejectedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_delivery_rejected_count",
			Help: "The total number of activity deliveries dropped as malformed.",
		},
	)

	prometheus.MustRegister(
		activityProcessingDuration,
		pollerDurationHistogram,
		dbLatency,
		broadcastDurationHistogram,
		connectedSubscribersGauge,
		trackedUsersGauge,
		totalVolumeGauge,
		failedBroadcastSendCounter,
		leaderChangeCounter,
		queueDeliveryRejectedCounter,
	)
}

func RecordActivityProcessingDuration(d time.Duration, activityType string, failure bool) {
	if activityProcessingDuration == nil {
		return
	}
	status := Success
	if failure {
		status = Error
	}
	activityProcessingDuration.WithLabelValues(activityType, status.String()).Observe(d.Seconds())
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	if dbLatency == nil {
		return
	}
	status := Success
	if failure {
		status = Error
	}
	dbLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

// RecordPollerDuration wraps a poll method so every invocation is timed and
// labeled with its outcome.
func RecordPollerDuration(pollerType string, pollMethod func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		startTime := time.Now()
		err := pollMethod(ctx)

		if pollerDurationHistogram != nil {
			status := Success
			if err != nil {
				status = Error
			}
			pollerDurationHistogram.WithLabelValues(pollerType, status.String()).Observe(time.Since(startTime).Seconds())
		}
		return err
	}
}

func RecordBroadcastDuration(d time.Duration, messageType string) {
	if broadcastDurationHistogram == nil {
		return
	}
	broadcastDurationHistogram.WithLabelValues(messageType).Observe(d.Seconds())
}

func RecordConnectedSubscribers(count int) {
	if connectedSubscribersGauge == nil {
		return
	}
	connectedSubscribersGauge.Set(float64(count))
}

func RecordTrackedUsers(count int) {
	if trackedUsersGauge == nil {
		return
	}
	trackedUsersGauge.Set(float64(count))
}

func RecordTotalVolume(volumeUsd float64) {
	if totalVolumeGauge == nil {
		return
	}
	totalVolumeGauge.Set(volumeUsd)
}

func RecordFailedBroadcastSend() {
	if failedBroadcastSendCounter == nil {
		return
	}
	failedBroadcastSendCounter.Inc()
}

func RecordLeaderChange() {
	if leaderChangeCounter == nil {
		return
	}
	leaderChangeCounter.Inc()
}

func RecordRejectedQueueDelivery() {
	if queueDeliveryRejectedCounter == nil {
		return
	}
	queueDeliveryRejectedCounter.Inc()
}
