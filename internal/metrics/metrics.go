// Package metrics exposes the service counters in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flaromlab/internal/catalog"
)

const namespace = "flaromlab"

// Recorder owns a private registry so tests and multiple servers do not
// collide on the global one.
type Recorder struct {
	registry      *prometheus.Registry
	shards        *prometheus.CounterVec
	formulasSaved prometheus.Counter
	requests      *prometheus.CounterVec
}

// New builds a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		shards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_shards_total",
			Help:      "Dataset shards loaded, by entity and result.",
		}, []string{"entity", "result"}),
		formulasSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "formulas_saved_total",
			Help:      "Formulas saved through the composer.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.shards,
		r.formulasSaved,
		r.requests,
	)
	return r
}

// ObserveShard counts one shard load. Its signature matches catalog.Loader.OnShard.
func (r *Recorder) ObserveShard(ref catalog.SourceRef, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	r.shards.WithLabelValues(string(ref.Entity), result).Inc()
}

// FormulaSaved counts a persisted formula.
func (r *Recorder) FormulaSaved() { r.formulasSaved.Inc() }

// ObserveRequest counts one served request.
func (r *Recorder) ObserveRequest(route string, code int) {
	r.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }
