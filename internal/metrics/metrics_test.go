package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok && want == pair.GetValue() {
			matched++
		}
	}
	return matched == len(labels)
}

func TestObserveCounters(t *testing.T) {
	before := counterValue(t, "promo_promotion_snapshot_cache_total", map[string]string{"layer": "local", "result": "hit"})
	ObserveSnapshotCache("local", "hit")
	ObserveSnapshotCache("local", "hit")
	after := counterValue(t, "promo_promotion_snapshot_cache_total", map[string]string{"layer": "local", "result": "hit"})
	if after-before != 2 {
		t.Fatalf("expected 2 increments, got %v", after-before)
	}

	ObserveRateLimited("evaluate")
	if got := counterValue(t, "promo_http_rate_limited_total", map[string]string{"rule": "evaluate"}); got < 1 {
		t.Fatalf("rate limited counter not incremented: %v", got)
	}

	ObserveRuleSkipped("config")
	if got := counterValue(t, "promo_promotion_rules_skipped_total", map[string]string{"reason": "config"}); got < 1 {
		t.Fatalf("skipped counter not incremented: %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveEvaluation("evaluate_cart", 3)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `promo_promotion_evaluations_total{operation="evaluate_cart"}`) {
		t.Fatalf("evaluation counter missing from output")
	}
	if !strings.Contains(body, "promo_promotion_evaluation_rules_bucket") {
		t.Fatalf("histogram missing from output")
	}
}
