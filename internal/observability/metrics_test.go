package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_IsolatedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.LaunchesTotal.WithLabelValues("ok").Inc()
	m.LaunchesTotal.WithLabelValues("POLICY").Add(2)

	if got := testutil.ToFloat64(m.LaunchesTotal.WithLabelValues("POLICY")); got != 2 {
		t.Errorf("expected 2 policy launches, got %v", got)
	}
	if n := testutil.CollectAndCount(m.LaunchesTotal); n != 2 {
		t.Errorf("expected 2 label sets, got %d", n)
	}
}

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.LamportsClaimed)
	RecordClaim("ok", 905)
	if got := testutil.ToFloat64(DefaultMetrics.LamportsClaimed) - before; got != 905 {
		t.Errorf("expected 905 lamports claimed, got %v", got)
	}

	errBefore := testutil.ToFloat64(DefaultMetrics.UpstreamErrors.WithLabelValues("rpc", "send"))
	ObserveUpstream("rpc", "send", time.Now(), errors.New("boom"))
	ObserveUpstream("rpc", "send", time.Now(), nil)
	if got := testutil.ToFloat64(DefaultMetrics.UpstreamErrors.WithLabelValues("rpc", "send")) - errBefore; got != 1 {
		t.Errorf("expected one upstream error, got %v", got)
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 201: "2xx", 302: "3xx", 400: "4xx", 404: "4xx", 500: "5xx"}
	for status, want := range tests {
		if got := statusClass(status); got != want {
			t.Errorf("statusClass(%d) = %s, want %s", status, got, want)
		}
	}
}
