package api

import (
	"sort"
	"sync"
	"time"
)

// RouteMetrics aggregates timings for one route template
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"-"`
	MinTime     time.Duration `json:"-"`
	MaxTime     time.Duration `json:"-"`
	AvgMs       int64         `json:"avgMs"`
	MinMs       int64         `json:"minMs"`
	MaxMs       int64         `json:"maxMs"`
	LastRequest time.Time     `json:"lastRequest"`
}

// MetricsSummary is the body of the metrics summary endpoint
type MetricsSummary struct {
	Since         time.Time      `json:"since"`
	TotalRequests int64          `json:"totalRequests"`
	TotalErrors   int64          `json:"totalErrors"`
	ErrorRate     float64        `json:"errorRate"`
	Dropped       int64          `json:"dropped"`
	Routes        []RouteMetrics `json:"routes"`
}

type requestSample struct {
	method   string
	path     string
	status   int
	duration time.Duration
	at       time.Time
}

// MetricsCollector aggregates request samples in the background. Recording
// never blocks: when the buffer is full the sample is dropped and counted.
type MetricsCollector struct {
	mu            sync.RWMutex
	routes        map[string]*RouteMetrics
	since         time.Time
	totalRequests int64
	totalErrors   int64
	dropped       int64

	samples chan requestSample
	stop    chan struct{}
	once    sync.Once
}

var (
	globalMetrics     *MetricsCollector
	globalMetricsOnce sync.Once
)

// NewMetricsCollector starts a collector that buffers up to buffer samples
func NewMetricsCollector(buffer int) *MetricsCollector {
	mc := &MetricsCollector{
		routes:  make(map[string]*RouteMetrics),
		since:   time.Now(),
		samples: make(chan requestSample, buffer),
		stop:    make(chan struct{}),
	}
	go mc.process()
	return mc
}

// GetMetrics returns the process wide collector
func GetMetrics() *MetricsCollector {
	globalMetricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector(1000)
	})
	return globalMetrics
}

// Close stops the background aggregation
func (mc *MetricsCollector) Close() {
	mc.once.Do(func() { close(mc.stop) })
}

func (mc *MetricsCollector) record(s requestSample) {
	select {
	case mc.samples <- s:
	default:
		mc.mu.Lock()
		mc.dropped++
		mc.mu.Unlock()
	}
}

func (mc *MetricsCollector) process() {
	for {
		select {
		case s := <-mc.samples:
			mc.add(s)
		case <-mc.stop:
			return
		}
	}
}

func (mc *MetricsCollector) add(s requestSample) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := s.method + " " + s.path
	m, ok := mc.routes[key]
	if !ok {
		m = &RouteMetrics{Method: s.method, Path: s.path, MinTime: s.duration}
		mc.routes[key] = m
	}
	m.Count++
	m.TotalTime += s.duration
	if s.duration < m.MinTime {
		m.MinTime = s.duration
	}
	if s.duration > m.MaxTime {
		m.MaxTime = s.duration
	}
	m.LastRequest = s.at

	mc.totalRequests++
	if s.status >= 400 {
		m.ErrorCount++
		mc.totalErrors++
	}
}

// Summary returns a snapshot with routes ordered slowest first
func (mc *MetricsCollector) Summary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := MetricsSummary{
		Since:         mc.since,
		TotalRequests: mc.totalRequests,
		TotalErrors:   mc.totalErrors,
		Dropped:       mc.dropped,
		Routes:        make([]RouteMetrics, 0, len(mc.routes)),
	}
	if mc.totalRequests > 0 {
		out.ErrorRate = float64(mc.totalErrors) / float64(mc.totalRequests)
	}
	for _, m := range mc.routes {
		r := *m
		r.AvgMs = (r.TotalTime / time.Duration(r.Count)).Milliseconds()
		r.MinMs = r.MinTime.Milliseconds()
		r.MaxMs = r.MaxTime.Milliseconds()
		out.Routes = append(out.Routes, r)
	}
	sort.Slice(out.Routes, func(i, j int) bool {
		if out.Routes[i].AvgMs != out.Routes[j].AvgMs {
			return out.Routes[i].AvgMs > out.Routes[j].AvgMs
		}
		return out.Routes[i].Method+out.Routes[i].Path < out.Routes[j].Method+out.Routes[j].Path
	})
	return out
}
