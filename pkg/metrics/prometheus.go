package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fitsTotal        *prometheus.CounterVec
	fitDuration      prometheus.Histogram
	campaignDuration prometheus.Histogram
	skippedTransits  *prometheus.CounterVec
	refinedPeriod    *prometheus.GaugeVec
	errorsTotal      *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ttvpull_single_fits_total",
				Help: "Total number of single-transit fits by outcome",
			},
			[]string{"outcome"},
		),
		fitDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ttvpull_single_fit_duration_seconds",
				Help:    "Duration of one single-transit fit call",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
		),
		campaignDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ttvpull_campaign_duration_seconds",
				Help:    "End-to-end duration of an analysis campaign",
				Buckets: []float64{10, 30, 60, 300, 900, 1800, 3600, 7200},
			},
		),
		skippedTransits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ttvpull_skipped_transits_total",
				Help: "Observations excluded from the epoched sequence",
			},
			[]string{"planet"},
		),
		refinedPeriod: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ttvpull_refined_period_days",
				Help: "Refit orbital period per planet",
			},
			[]string{"planet"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ttvpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordFit records one finished single-transit fit.
func (r *Recorder) RecordFit(outcome string, seconds float64) {
	r.fitsTotal.WithLabelValues(outcome).Inc()
	r.fitDuration.Observe(seconds)
}

// RecordCampaign records one finished campaign.
func (r *Recorder) RecordCampaign(seconds float64) {
	r.campaignDuration.Observe(seconds)
}

// RecordSkipped records excluded observations for a planet.
func (r *Recorder) RecordSkipped(planet string, n int) {
	r.skippedTransits.WithLabelValues(planet).Add(float64(n))
}

// RecordRefinedPeriod records the refit period for a planet.
func (r *Recorder) RecordRefinedPeriod(planet string, days float64) {
	r.refinedPeriod.WithLabelValues(planet).Set(days)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
