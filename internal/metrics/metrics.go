// Package metrics records check runs as Prometheus metrics, written to a
// node-exporter textfile so a cron-driven check can be scraped.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/folio/pkg/core"
)

const namespace = "folio"

// Recorder holds the collectors of one process on a private registry.
type Recorder struct {
	registry  *prometheus.Registry
	documents *prometheus.GaugeVec
	issues    *prometheus.CounterVec
	duration  prometheus.Gauge
	lastRun   prometheus.Gauge
}

// NewRecorder creates a Recorder with its collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: namespace, Name: "documents_total", Help: "Documents seen by the last check, by state."},
			[]string{"state"},
		),
		issues: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "issues_total", Help: "Contract issues found, by severity and code."},
			[]string{"severity", "code"},
		),
		duration: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "scan_duration_seconds", Help: "Duration of the last full check."},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "last_check_timestamp_seconds", Help: "Unix time the last check finished."},
		),
	}
	r.registry.MustRegister(r.documents, r.issues, r.duration, r.lastRun)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records a check report.
func (r *Recorder) Observe(report core.Report) {
	s := report.Summary
	r.documents.WithLabelValues("valid").Set(float64(s.Documents - s.Invalid))
	r.documents.WithLabelValues("invalid").Set(float64(s.Invalid))
	r.documents.WithLabelValues("draft").Set(float64(s.Drafts))

	for _, res := range report.Results {
		for _, issue := range res.Issues {
			r.issues.WithLabelValues(string(issue.Severity), issue.Code).Inc()
		}
	}

	r.duration.Set(report.Duration.Seconds())
	if !s.CheckedAt.IsZero() {
		r.lastRun.Set(float64(s.CheckedAt.Unix()))
	}
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
