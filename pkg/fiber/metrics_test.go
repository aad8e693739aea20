package fiber

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

func TestMetricsRecordCommits(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))
	r, host := newTestReconciler(t, WithMetrics(m))

	render(t, r, host, vdom.Div(vdom.P("a")))

	if got := testutil.ToFloat64(m.commits); got != 1 {
		t.Errorf("commits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.units); got != 4 {
		t.Errorf("units = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.tags.WithLabelValues("placement")); got != 3 {
		t.Errorf("placements = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.slices.WithLabelValues("committed")); got != 1 {
		t.Errorf("committed slices = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.liveFibers); got != 4 {
		t.Errorf("live fibers = %v, want 4", got)
	}

	render(t, r, host, vdom.Div(vdom.P("b")))
	if got := testutil.ToFloat64(m.tags.WithLabelValues("update")); got != 3 {
		t.Errorf("updates = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.liveFibers); got != 4 {
		t.Errorf("live fibers after rerender = %v, want 4", got)
	}

	if n, err := testutil.GatherAndCount(reg); err != nil || n == 0 {
		t.Errorf("GatherAndCount = %d, %v", n, err)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.recordUnits(1)
	m.recordSlice("committed")
	m.recordCommit(CommitStats{})
	m.recordEffect("effect")
	m.setLive(1)
}
