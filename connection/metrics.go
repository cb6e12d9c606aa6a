package connection

import (
	"sync"
	"time"
)

// Metrics is the mutable, per-Connection counter/observation block spec.md
// §3 defines. All fields are mutated only by the owning Connection's
// operation path and its health monitor; external readers take a Snapshot.
type Metrics struct {
	mu sync.Mutex

	connectionAttempts    int
	successfulConnections int
	failedConnections     int
	reconnectionAttempts  int
	totalOperations       int
	failedOperations      int // not bounded by totalOperations; see recordOperation

	lastConnectionTime  time.Time
	lastError           string
	averageResponseTime time.Duration
	cumulativeUptime    time.Duration
}

// Snapshot is an immutable copy of Metrics, safe to hand to callers.
type Snapshot struct {
	ConnectionAttempts    int
	SuccessfulConnections int
	FailedConnections     int
	ReconnectionAttempts  int
	TotalOperations       int
	FailedOperations      int
	LastConnectionTime    time.Time
	LastError             string
	AverageResponseTime   time.Duration
	CumulativeUptime      time.Duration
}

func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		ConnectionAttempts:    m.connectionAttempts,
		SuccessfulConnections: m.successfulConnections,
		FailedConnections:     m.failedConnections,
		ReconnectionAttempts:  m.reconnectionAttempts,
		TotalOperations:       m.totalOperations,
		FailedOperations:      m.failedOperations,
		LastConnectionTime:    m.lastConnectionTime,
		LastError:             m.lastError,
		AverageResponseTime:   m.averageResponseTime,
		CumulativeUptime:      m.cumulativeUptime,
	}
}

func (m *Metrics) recordAttempt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectionAttempts++
}

func (m *Metrics) recordConnectSuccess(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successfulConnections++
	m.lastConnectionTime = at
}

func (m *Metrics) recordConnectFailure(errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failedConnections++
	m.lastError = errMsg
}

func (m *Metrics) recordReconnectionAttempt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconnectionAttempts++
}

func (m *Metrics) addUptime(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cumulativeUptime += d
}

// recordOperation mirrors the original source's monitor_operation decorator
// exactly, quirk included: totalOperations only advances on success (a
// failure bumps failedOperations and returns, leaving totalOperations and
// averageResponseTime untouched), and the running mean is
//
//	average = (average*(n-1) + latency) / n
//
// with n the post-increment totalOperations.
func (m *Metrics) recordOperation(latency time.Duration, success bool, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !success {
		m.failedOperations++
		m.lastError = errMsg
		return
	}
	m.totalOperations++
	n := m.totalOperations
	m.averageResponseTime = time.Duration((int64(m.averageResponseTime)*int64(n-1) + int64(latency)) / int64(n))
}

// SuccessRate mirrors the original's get_metrics ratio: (total-failed)/total
// as a percentage, 0 when total is 0. Since totalOperations only counts
// successes, this is not a conventional success percentage when failures
// are present — that is the original's behavior, carried over as-is.
func (s Snapshot) SuccessRate() float64 {
	if s.TotalOperations == 0 {
		return 0
	}
	return float64(s.TotalOperations-s.FailedOperations) / float64(s.TotalOperations) * 100
}
