package mailbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecord_TracksTotalsAndErrorsPerOperation(t *testing.T) {
	m := newMonitor()
	m.record("Select", 10*time.Millisecond, true)
	m.record("Select", 20*time.Millisecond, true)
	m.record("Select", 5*time.Millisecond, false)

	stats := m.statistics()
	assert.Equal(t, 3, stats.TotalsByOperation["Select"])
	assert.Equal(t, 1, stats.ErrorsByOperation["Select"])
	assert.Equal(t, 15*time.Millisecond, stats.MeanTimeByOperation["Select"])
}

func TestRecord_FailureDoesNotPerturbMean(t *testing.T) {
	m := newMonitor()
	m.record("Fetch", 100*time.Millisecond, true)
	m.record("Fetch", 999*time.Millisecond, false)

	stats := m.statistics()
	assert.Equal(t, 100*time.Millisecond, stats.MeanTimeByOperation["Fetch"])
}

func TestRecord_KeepsOnlyMostRecentRecords(t *testing.T) {
	m := newMonitor()
	for i := 0; i < maxRecentRecords+10; i++ {
		m.record("Noop", time.Millisecond, true)
	}

	stats := m.statistics()
	assert.Len(t, stats.Recent, maxRecentRecords)
}

func TestStatistics_ReturnsIndependentCopies(t *testing.T) {
	m := newMonitor()
	m.record("Select", time.Millisecond, true)

	stats := m.statistics()
	stats.TotalsByOperation["Select"] = 999

	fresh := m.statistics()
	assert.Equal(t, 1, fresh.TotalsByOperation["Select"])
}
