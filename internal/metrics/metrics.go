// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "workout_api"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	workoutsComposed  prometheus.Counter
	exercisesComposed prometheus.Counter
	exercisesOrphaned prometheus.Counter
}

// New creates the collectors on a private registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		workoutsComposed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workouts_composed_total",
			Help:      "Workout templates built from a list of new exercises.",
		}),
		exercisesComposed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "composed_exercises_total",
			Help:      "Exercises created as part of a composed workout.",
		}),
		exercisesOrphaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphaned_exercises_total",
			Help:      "Exercises left without a template after a failed composition.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.workoutsComposed,
		m.exercisesComposed,
		m.exercisesOrphaned,
	)
	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WorkoutComposed records a successful composition of n exercises.
func (m *Metrics) WorkoutComposed(n int) {
	if m == nil {
		return
	}
	m.workoutsComposed.Inc()
	m.exercisesComposed.Add(float64(n))
}

// ExercisesOrphaned records exercises left behind by a failed composition.
func (m *Metrics) ExercisesOrphaned(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.exercisesOrphaned.Add(float64(n))
}

// Middleware records request counts and latency. Routes are labelled with
// their pattern, not the raw path, to keep cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
