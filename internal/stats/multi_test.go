package stats

import "testing"

func TestMulti_FansOut(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	m := NewMulti(a, nil, b)

	if len(m) != 2 {
		t.Fatalf("NewMulti() kept %d collectors, want 2", len(m))
	}

	m.IncCounter(MetricRequests, 2)
	m.SetGauge(MetricSnapshotBackends, 5)
	m.ObserveHistogram(MetricRequestDuration, 0.1)

	for i, c := range []*Memory{a, b} {
		if got := c.Counter(MetricRequests); got != 2 {
			t.Errorf("collector %d counter = %d, want 2", i, got)
		}
		if got := c.Gauge(MetricSnapshotBackends); got != 5 {
			t.Errorf("collector %d gauge = %d, want 5", i, got)
		}
		if got := c.Observations(MetricRequestDuration); got != 1 {
			t.Errorf("collector %d observations = %d, want 1", i, got)
		}
	}
}
