package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts price quotes served, labelled by pricing branch.
	QuoteTotal *prometheus.CounterVec
	// CartOpsTotal counts cart mutations by operation and outcome.
	CartOpsTotal *prometheus.CounterVec
	// CatalogCacheTotal counts catalog cache lookups by layer and result.
	CatalogCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_quote_total",
			Help:      "Count of price quotes served by pricing branch.",
		}, []string{"mode"})
		CartOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Count of cart operations by kind and outcome.",
		}, []string{"op", "result"})
		CatalogCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Count of catalog cache lookups by layer and result.",
		}, []string{"layer", "result"})
		reg.MustRegister(QuoteTotal, CartOpsTotal, CatalogCacheTotal)
	})
}

// ObserveQuote records a served quote. Safe to call before registration.
func ObserveQuote(mode string) {
	if QuoteTotal == nil {
		return
	}
	QuoteTotal.WithLabelValues(mode).Inc()
}

// ObserveCartOp records a cart operation outcome. Safe to call before registration.
func ObserveCartOp(op, result string) {
	if CartOpsTotal == nil {
		return
	}
	CartOpsTotal.WithLabelValues(op, result).Inc()
}

// ObserveCatalogCache records a cache lookup outcome. Safe to call before registration.
func ObserveCatalogCache(layer, result string) {
	if CatalogCacheTotal == nil {
		return
	}
	CatalogCacheTotal.WithLabelValues(layer, result).Inc()
}
