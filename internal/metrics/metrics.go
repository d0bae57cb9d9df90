package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "churchcal"

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	feedFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_fetches_total",
		Help:      "ICS feed fetches by result",
	}, []string{"result"})

	feedFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feed_fetch_duration_seconds",
		Help:      "ICS feed fetch duration in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	eventsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "events_returned",
		Help:      "Number of events in each calendar-events response",
		Buckets:   []float64{0, 1, 5, 10, 15, 20, 50},
	})

	feedUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_up",
		Help:      "1 if the last scheduled feed probe succeeded",
	})

	feedEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_events",
		Help:      "Upcoming events seen by the last successful feed probe",
	})

	lastProbe = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_last_probe_timestamp_seconds",
		Help:      "Unix time of the last scheduled feed probe",
	})
)

// Fetch results.
const (
	FetchOK     = "ok"
	FetchStatus = "status"
	FetchError  = "error"
)

func RecordRequest(method, route string, status int, d time.Duration) {
	requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordFetch(result string, d time.Duration) {
	feedFetchesTotal.WithLabelValues(result).Inc()
	feedFetchDuration.Observe(d.Seconds())
}

func RecordEventsReturned(n int) {
	eventsReturned.Observe(float64(n))
}

// RecordProbe stores the outcome of a scheduled feed probe. The event gauge
// keeps its previous value when the probe failed.
func RecordProbe(ok bool, events int, at time.Time) {
	lastProbe.Set(float64(at.Unix()))
	if !ok {
		feedUp.Set(0)
		return
	}
	feedUp.Set(1)
	feedEvents.Set(float64(events))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
