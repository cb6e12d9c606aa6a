package pool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeReconnector struct {
	authenticated bool
	connected     bool
	reconnectErr  error
	reconnectN    int
}

func (f *fakeReconnector) IsAuthenticated() bool { return f.authenticated }
func (f *fakeReconnector) IsConnected() bool     { return f.connected }
func (f *fakeReconnector) Reconnect(ctx context.Context) error {
	f.reconnectN++
	return f.reconnectErr
}

func TestSweep_SkipsUnauthenticatedConnections(t *testing.T) {
	s := NewSupervisor(nil)
	c := &fakeReconnector{authenticated: false, connected: false}
	s.Register("k", c)

	s.sweep()

	assert.Equal(t, 0, c.reconnectN)
}

func TestSweep_SkipsHealthyConnections(t *testing.T) {
	s := NewSupervisor(nil)
	c := &fakeReconnector{authenticated: true, connected: true}
	s.Register("k", c)

	s.sweep()

	assert.Equal(t, 0, c.reconnectN)
}

func TestSweep_ReconnectsAuthenticatedButUnreachableConnections(t *testing.T) {
	s := NewSupervisor(nil)
	c := &fakeReconnector{authenticated: true, connected: false}
	s.Register("k", c)

	s.sweep()

	assert.Equal(t, 1, c.reconnectN)
}

func TestSweep_LogsButDoesNotPanicOnReconnectFailure(t *testing.T) {
	s := NewSupervisor(nil)
	c := &fakeReconnector{authenticated: true, connected: false, reconnectErr: errors.New("dial failed")}
	s.Register("k", c)

	assert.NotPanics(t, func() { s.sweep() })
	assert.Equal(t, 1, c.reconnectN)
}

func TestUnregister_RemovesConnectionFromSweep(t *testing.T) {
	s := NewSupervisor(nil)
	c := &fakeReconnector{authenticated: true, connected: false}
	s.Register("k", c)
	s.Unregister("k")

	s.sweep()

	assert.Equal(t, 0, c.reconnectN)
}

func TestStartStop_RunsSweepOnSchedule(t *testing.T) {
	s := NewSupervisor(nil)
	c := &fakeReconnector{authenticated: true, connected: false}
	s.Register("k", c)

	assert.NoError(t, s.Start("* * * * * *"))
	defer s.Stop()

	assert.Eventually(t, func() bool { return c.reconnectN > 0 }, 2*time.Second, 20*time.Millisecond)
}
