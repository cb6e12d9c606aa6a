package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sageimap/goimap/connection"
)

// fakeSession is a bare connection.Session double; pool.go never calls
// anything on it besides Logout, so that's the only method given real
// behavior.
type fakeSession struct {
	connection.Session
	id        string
	loggedOut bool
}

func (f *fakeSession) Logout() error { f.loggedOut = true; return nil }

func TestCheckout_EmptyKeyReturnsFalse(t *testing.T) {
	p := New(2, nil)
	_, ok := p.Checkout("missing")
	assert.False(t, ok)
}

func TestReturnThenCheckout_IsLIFO(t *testing.T) {
	p := New(2, nil)
	a := &fakeSession{id: "a"}
	b := &fakeSession{id: "b"}

	assert.True(t, p.Return("k", a))
	assert.True(t, p.Return("k", b))

	got, ok := p.Checkout("k")
	assert.True(t, ok)
	assert.Same(t, b, got)

	got, ok = p.Checkout("k")
	assert.True(t, ok)
	assert.Same(t, a, got)

	_, ok = p.Checkout("k")
	assert.False(t, ok)
}

func TestReturn_RespectsPerKeyCapacity(t *testing.T) {
	p := New(1, nil)
	assert.True(t, p.Return("k", &fakeSession{id: "a"}))
	assert.False(t, p.Return("k", &fakeSession{id: "b"}))

	stats := p.Stats()
	assert.Equal(t, 1, stats.TotalHandles)
}

func TestStats_CountsKeysWithHandlesAndTotal(t *testing.T) {
	p := New(5, nil)
	p.Return("k1", &fakeSession{})
	p.Return("k1", &fakeSession{})
	p.Return("k2", &fakeSession{})

	stats := p.Stats()
	assert.Equal(t, 5, stats.Cap)
	assert.Equal(t, 2, stats.KeysWithHandles)
	assert.Equal(t, 3, stats.TotalHandles)
}

func TestClear_LogsOutEveryParkedHandleAndEmptiesStacks(t *testing.T) {
	p := New(5, nil)
	a := &fakeSession{}
	b := &fakeSession{}
	p.Return("k1", a)
	p.Return("k2", b)

	p.Clear()

	assert.True(t, a.loggedOut)
	assert.True(t, b.loggedOut)
	stats := p.Stats()
	assert.Equal(t, 0, stats.TotalHandles)

	_, ok := p.Checkout("k1")
	assert.False(t, ok)
}

func TestDiscard_LogsOutSession(t *testing.T) {
	p := New(2, nil)
	s := &fakeSession{}

	p.Discard("k", s)

	assert.True(t, s.loggedOut)
	stats := p.Stats()
	assert.Equal(t, 0, stats.TotalHandles)
}

func TestNew_ZeroOrNegativeCapacityDefaultsToTen(t *testing.T) {
	p := New(0, nil)
	for i := 0; i < 10; i++ {
		assert.True(t, p.Return("k", &fakeSession{}))
	}
	assert.False(t, p.Return("k", &fakeSession{}))
}
