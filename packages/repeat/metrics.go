package repeat

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// metrics aggregates latencies and outcome counts across executions.
type metrics struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
	total     int
	successes int
	errors    int
}

func newMetrics() *metrics {
	return &metrics{
		// 1us to 60s range, 3 significant digits
		histogram: hdrhistogram.New(1, 60_000_000, 3),
	}
}

func (m *metrics) record(elapsed time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	if err != nil {
		m.errors++
	} else {
		m.successes++
	}

	latencyUs := elapsed.Microseconds()
	if latencyUs < 1 {
		latencyUs = 1
	}
	if latencyUs > 60_000_000 {
		latencyUs = 60_000_000
	}
	_ = m.histogram.RecordValue(latencyUs)
}

func (m *metrics) report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Report{
		Executions: m.total,
		Successes:  m.successes,
		Errors:     m.errors,
		P50:        time.Duration(m.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:        time.Duration(m.histogram.ValueAtQuantile(95)) * time.Microsecond,
		P99:        time.Duration(m.histogram.ValueAtQuantile(99)) * time.Microsecond,
		Max:        time.Duration(m.histogram.Max()) * time.Microsecond,
	}
}
