package mailbox

import (
	"sync"
	"time"
)

// operationRecord is what the monitor retains per call, per spec.md §4.5:
// "operationName, executionTime, success bool, timestamp".
type operationRecord struct {
	operationName string
	executionTime time.Duration
	success       bool
	timestamp     time.Time
}

// maxRecentRecords bounds the ring buffer of recent operations kept for
// Statistics(), matching the "last N (e.g., 100)" spec.md calls for.
const maxRecentRecords = 100

type monitor struct {
	mu      sync.Mutex
	start   time.Time
	records []operationRecord

	totalByOp  map[string]int
	errorsByOp map[string]int
	meanByOp   map[string]time.Duration
}

func newMonitor() *monitor {
	return &monitor{
		start:      time.Now(),
		totalByOp:  make(map[string]int),
		errorsByOp: make(map[string]int),
		meanByOp:   make(map[string]time.Duration),
	}
}

func (m *monitor) record(op string, d time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, operationRecord{operationName: op, executionTime: d, success: success, timestamp: time.Now()})
	if len(m.records) > maxRecentRecords {
		m.records = m.records[len(m.records)-maxRecentRecords:]
	}

	m.totalByOp[op]++
	if !success {
		m.errorsByOp[op]++
		return
	}
	n := m.totalByOp[op] - m.errorsByOp[op]
	if n <= 0 {
		n = 1
	}
	prev := m.meanByOp[op]
	m.meanByOp[op] = time.Duration((int64(prev)*int64(n-1) + int64(d)) / int64(n))
}

// Statistics is the snapshot Service.Statistics() returns.
type Statistics struct {
	Uptime             time.Duration
	TotalsByOperation  map[string]int
	ErrorsByOperation  map[string]int
	MeanTimeByOperation map[string]time.Duration
	Recent             []RecentOperation
}

// RecentOperation is the exported form of operationRecord.
type RecentOperation struct {
	OperationName string
	ExecutionTime time.Duration
	Success       bool
	Timestamp     time.Time
}

func (m *monitor) statistics() Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()

	totals := make(map[string]int, len(m.totalByOp))
	for k, v := range m.totalByOp {
		totals[k] = v
	}
	errs := make(map[string]int, len(m.errorsByOp))
	for k, v := range m.errorsByOp {
		errs[k] = v
	}
	means := make(map[string]time.Duration, len(m.meanByOp))
	for k, v := range m.meanByOp {
		means[k] = v
	}
	recent := make([]RecentOperation, len(m.records))
	for i, r := range m.records {
		recent[i] = RecentOperation{OperationName: r.operationName, ExecutionTime: r.executionTime, Success: r.success, Timestamp: r.timestamp}
	}

	return Statistics{
		Uptime:              time.Since(m.start),
		TotalsByOperation:   totals,
		ErrorsByOperation:   errs,
		MeanTimeByOperation: means,
		Recent:              recent,
	}
}
