// Package metrics exposes Prometheus metrics for scrape runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "salgspriser"

// Geocode outcomes.
const (
	OutcomeHit       = "hit"
	OutcomeNoMatch   = "no_match"
	OutcomeOutBounds = "out_of_bounds"
	OutcomeError     = "error"
	OutcomeCached    = "cached"
)

type Provider struct {
	reg      *prometheus.Registry
	Pipeline *Pipeline
}

// Pipeline groups the counters the scrape pipeline updates.
type Pipeline struct {
	PagesFetched   prometheus.Counter
	ListingsParsed prometheus.Counter
	GeocodeResults *prometheus.CounterVec
	Upstream       *prometheus.HistogramVec
}

func Init(version string) *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	build := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build info for this binary (value is always 1).",
		},
		[]string{"version"},
	)
	reg.MustRegister(build)
	if version == "" {
		version = "dev"
	}
	build.WithLabelValues(version).Set(1)

	p := NewPipeline()
	p.MustRegister(reg)
	return &Provider{reg: reg, Pipeline: p}
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		PagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Result pages fetched from the listing site.",
		}),
		ListingsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_parsed_total",
			Help:      "Listing rows extracted from result pages.",
		}),
		GeocodeResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_results_total",
			Help:      "Geocoder lookups by outcome.",
		}, []string{"outcome"}),
		Upstream: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Latency of upstream HTTP calls in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"upstream"}),
	}
}

func (p *Pipeline) MustRegister(r prometheus.Registerer) {
	r.MustRegister(p.PagesFetched, p.ListingsParsed, p.GeocodeResults, p.Upstream)
}

// ObserveUpstream records the duration of one call. Safe on a nil Pipeline.
func (p *Pipeline) ObserveUpstream(upstream string, start time.Time) {
	if p == nil {
		return
	}
	p.Upstream.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
}

func (p *Pipeline) IncPages() {
	if p != nil {
		p.PagesFetched.Inc()
	}
}

func (p *Pipeline) AddListings(n int) {
	if p != nil {
		p.ListingsParsed.Add(float64(n))
	}
}

func (p *Pipeline) IncGeocode(outcome string) {
	if p != nil {
		p.GeocodeResults.WithLabelValues(outcome).Inc()
	}
}

func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}
