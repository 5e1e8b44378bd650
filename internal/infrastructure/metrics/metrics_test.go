package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.BidsPlaced == nil || m.HTTPRequests == nil || m.PayoutsCompleted == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.BidsPlaced.WithLabelValues("item").Inc()
	m.PayoutsCompleted.Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}

	if got := testutil.ToFloat64(m.BidsPlaced.WithLabelValues("item")); got != 1 {
		t.Fatalf("expected 1 bid, got %v", got)
	}
}

func TestNewUsesSeparateRegistries(t *testing.T) {
	// Registering twice on the same registry would panic.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
