package metrics

import (
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusSink fans Points out to lazily-registered Prometheus gauges,
// one per distinct metric name, tagged by the point's tag keys. It is
// grounded on internal/server/metrics.go's promauto wiring, generalized
// from that file's fixed set of HTTP/OCR metrics to the dynamic metric
// names the core engine records (spec.md §6).
type PrometheusSink struct {
	registerer prometheus.Registerer

	mu     sync.Mutex
	gauges map[string]*prometheus.GaugeVec
}

// NewPrometheusSink builds a sink registering its gauges against reg. If
// reg is nil, prometheus.DefaultRegisterer is used (the same registry
// internal/server/metrics.go registers its HTTP counters against, so a
// single /metrics scrape sees both).
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusSink{registerer: reg, gauges: make(map[string]*prometheus.GaugeVec)}
}

// RecordPoint sets the gauge for p.Name (creating it on first use) to
// p.Value, labeled by p.Tags's keys in sorted order.
func (s *PrometheusSink) RecordPoint(p Point) {
	keys := make([]string, 0, len(p.Tags))
	for k := range p.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	g := s.gaugeFor(p.Name, keys)
	if g == nil {
		return
	}
	labels := make(prometheus.Labels, len(p.Tags))
	for k, v := range p.Tags {
		labels[k] = v
	}
	g.With(labels).Set(p.Value)
}

func (s *PrometheusSink) gaugeFor(name string, labelKeys []string) *prometheus.GaugeVec {
	key := name + "|" + strings.Join(labelKeys, ",")

	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.gauges[key]; ok {
		return g
	}
	g := promauto.With(s.registerer).NewGaugeVec(prometheus.GaugeOpts{
		Name: prometheusName(name),
		Help: "SpeedReader metric " + name,
	}, labelKeys)
	s.gauges[key] = g
	return g
}

// prometheusName converts a dotted spec.md metric name ("speedreader.
// inference.duration") into a Prometheus-legal identifier
// ("speedreader_inference_duration").
func prometheusName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}
