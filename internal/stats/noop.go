package stats

// Noop discards every metric. It is the default collector of a Client.
type Noop struct{}

var _ Collector = Noop{}

// NewNoop returns a collector that records nothing.
func NewNoop() Noop {
	return Noop{}
}

func (Noop) IncCounter(string, int64)         {}
func (Noop) SetGauge(string, int64)           {}
func (Noop) ObserveHistogram(string, float64) {}
