package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "promo"

// Registry 独立注册表，避免与全局默认注册表冲突
var Registry = prometheus.NewRegistry()

var (
	evaluations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotion_evaluations_total",
		Help:      "Promotion evaluations by operation.",
	}, []string{"operation"})

	rulesSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotion_rules_skipped_total",
		Help:      "Rules skipped during evaluation or snapshot build, by reason.",
	}, []string{"reason"})

	snapshotCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotion_snapshot_cache_total",
		Help:      "Promotion snapshot lookups by cache layer and result.",
	}, []string{"layer", "result"})

	rateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_rate_limited_total",
		Help:      "Requests rejected by the rate limiter, by rule.",
	}, []string{"rule"})

	evaluationRules = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "promotion_evaluation_rules",
		Help:      "Number of rules in the snapshot used for an evaluation.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		evaluations,
		rulesSkipped,
		snapshotCache,
		rateLimited,
		evaluationRules,
	)
}

// Handler 返回 /metrics 处理器
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// ObserveEvaluation 记录一次计算及其使用的规则数
func ObserveEvaluation(operation string, ruleCount int) {
	evaluations.WithLabelValues(operation).Inc()
	evaluationRules.Observe(float64(ruleCount))
}

// ObserveRuleSkipped 记录被跳过的规则
func ObserveRuleSkipped(reason string) {
	rulesSkipped.WithLabelValues(reason).Inc()
}

// ObserveSnapshotCache 记录快照缓存命中情况
func ObserveSnapshotCache(layer, result string) {
	snapshotCache.WithLabelValues(layer, result).Inc()
}

// ObserveRateLimited 记录被限流拒绝的请求
func ObserveRateLimited(rule string) {
	rateLimited.WithLabelValues(rule).Inc()
}
