// Package telemetry holds the Prometheus counters of the curve library
// in a private registry.
package telemetry

import (
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	registry = prometheus.NewRegistry()

	verifyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curves_verify_total",
		Help: "Signature verifications by scheme and result",
	}, []string{"scheme", "result"})

	precomputeCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curves_precompute_cache_total",
		Help: "Lookups in the decoded point and pairing precompute cache",
	}, []string{"result"})

	wnafTables = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curves_wnaf_tables_total",
		Help: "wNAF precomputation tables built per curve",
	}, []string{"curve"})
)

func init() {
	registry.MustRegister(verifyTotal, precomputeCache, wnafTables)
}

// Registry returns the registry holding every counter of this package.
func Registry() *prometheus.Registry { return registry }

// ObserveVerify counts one verification outcome.
func ObserveVerify(scheme string, ok bool) {
	result := "invalid"
	if ok {
		result = "valid"
	}
	verifyTotal.WithLabelValues(scheme, result).Inc()
}

// ObserveCache counts a cache hit or miss.
func ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	precomputeCache.WithLabelValues(result).Inc()
}

// ObserveTable counts a wNAF table build on curve.
func ObserveTable(curve string) {
	wnafTables.WithLabelValues(curve).Inc()
}

// Sample is one counter value with its labels.
type Sample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// Snapshot gathers the current counter values sorted by name.
func Snapshot() ([]Sample, error) {
	families, err := registry.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Value: m.GetCounter().GetValue()}
			if len(m.GetLabel()) > 0 {
				s.Labels = make(map[string]string, len(m.GetLabel()))
				for _, l := range m.GetLabel() {
					s.Labels[l.GetName()] = l.GetValue()
				}
			}
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Serve exposes Handler on addr under /metrics until the listener fails.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	log.WithField("addr", addr).Info("serving metrics")
	return http.ListenAndServe(addr, mux)
}
