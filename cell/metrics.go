package cell

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts cell cache activity; a nil *Metrics records nothing
type Metrics struct {
	Requests  prometheus.Counter
	Coalesced prometheus.Counter
	Failures  prometheus.Counter
	Evictions prometheus.Counter
	Abandoned prometheus.Counter
	InFlight  prometheus.Gauge
	CacheHits *prometheus.CounterVec
}

// NewMetrics builds unregistered collectors under the given namespace
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cell_fetch_requests_total",
			Help:      "Total transport fetches started",
		}),
		Coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cell_fetch_coalesced_total",
			Help:      "Fetch requests joined to an in-flight unit",
		}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cell_fetch_failures_total",
			Help:      "Fetches that ended with an error",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cell_evictions_total",
			Help:      "Cells evicted after the debounce window",
		}),
		Abandoned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cell_fetch_abandoned_total",
			Help:      "In-flight fetches abandoned on eviction",
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cell_fetch_in_flight",
			Help:      "Fetch units currently in flight",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cell_cache_lookups_total",
			Help:      "Payload cache lookups by tier and result",
		}, []string{"tier", "result"}),
	}
}

// Register adds every collector to reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.Requests, m.Coalesced, m.Failures, m.Evictions, m.Abandoned, m.InFlight, m.CacheHits,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) requested() {
	if m != nil {
		m.Requests.Inc()
	}
}

func (m *Metrics) coalesced() {
	if m != nil {
		m.Coalesced.Inc()
	}
}

func (m *Metrics) failed() {
	if m != nil {
		m.Failures.Inc()
	}
}

func (m *Metrics) abandoned() {
	if m != nil {
		m.Abandoned.Inc()
	}
}

func (m *Metrics) lookup(tier string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheHits.WithLabelValues(tier, result).Inc()
}

func (m *Metrics) inFlight(delta float64) {
	if m != nil {
		m.InFlight.Add(delta)
	}
}

// Evicted records n evictions
func (m *Metrics) Evicted(n int) {
	if m != nil && n > 0 {
		m.Evictions.Add(float64(n))
	}
}
