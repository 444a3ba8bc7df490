package metrics

import (
	"maps"
	"sort"
	"sync"
	"time"
)

type Metrics struct {
	mutex         sync.RWMutex
	requests      map[string]int64
	fetchErrors   map[string]int64
	responseTimes map[string][]time.Duration
	statusCodes   map[string]map[int]int64
	healthStatus  map[string]bool
	startTime     time.Time
}

type Snapshot struct {
	TotalRequests int64                    `json:"total_requests"`
	Uptime        time.Duration            `json:"uptime"`
	Sources       map[string]SourceMetrics `json:"sources"`
	Mode          string                   `json:"mode"`
}

type SourceMetrics struct {
	Requests    int64         `json:"requests"`
	FetchErrors int64         `json:"fetch_errors"`
	Healthy     bool          `json:"healthy"`
	AvgResponse time.Duration `json:"avg_response"`
	P50Response time.Duration `json:"p50_response"`
	P95Response time.Duration `json:"p95_response"`
	P99Response time.Duration `json:"p99_response"`
	StatusCodes map[int]int64 `json:"status_codes"`
}

func (m *Metrics) IncrementRequests(source string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.requests[source]++
}

func (m *Metrics) IncrementFetchErrors(source string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.fetchErrors[source]++
}

func (m *Metrics) RecordResponse(source string, duration time.Duration, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.responseTimes[source] = append(m.responseTimes[source], duration)

	if len(m.responseTimes[source]) > 1000 {
		m.responseTimes[source] = m.responseTimes[source][1:]
	}

	if m.statusCodes[source] == nil {
		m.statusCodes[source] = make(map[int]int64)
	}
	m.statusCodes[source][statusCode]++
}

func (m *Metrics) UpdateHealthStatus(source string, healthy bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.healthStatus[source] = healthy
}

func (m *Metrics) Snapshot(mode string) Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:  time.Since(m.startTime),
		Sources: make(map[string]SourceMetrics),
		Mode:    mode,
	}

	// Collect all unique asset source names
	allSources := make(map[string]bool)
	for source := range m.requests {
		allSources[source] = true
	}
	for source := range m.fetchErrors {
		allSources[source] = true
	}
	for source := range m.responseTimes {
		allSources[source] = true
	}
	for source := range m.healthStatus {
		allSources[source] = true
	}

	for source := range allSources {
		snap.TotalRequests += m.requests[source]

		sm := SourceMetrics{
			Requests:    m.requests[source],
			FetchErrors: m.fetchErrors[source],
			Healthy:     m.healthStatus[source],
			// Copied so the snapshot can be encoded after the lock is
			// released while the collector keeps recording responses.
			StatusCodes: maps.Clone(m.statusCodes[source]),
		}

		durations := m.responseTimes[source]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			sm.AvgResponse = average(sorted)
			sm.P50Response = percentile(sorted, 0.50)
			sm.P95Response = percentile(sorted, 0.95)
			sm.P99Response = percentile(sorted, 0.99)
		}

		snap.Sources[source] = sm
	}

	return snap
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests:      make(map[string]int64),
		fetchErrors:   make(map[string]int64),
		responseTimes: make(map[string][]time.Duration),
		statusCodes:   make(map[string]map[int]int64),
		healthStatus:  make(map[string]bool),
		startTime:     time.Now(),
	}
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
