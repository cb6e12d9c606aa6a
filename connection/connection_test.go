package connection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sageimap/goimap/config"
)

// fakeSession is a minimal Session double; tests only populate the methods
// they exercise, panicking on anything unexpected via embedding a nil
// Session (any unstubbed call nil-derefs loudly instead of silently
// succeeding).
type fakeSession struct {
	Session
	loginErr error
	noopErr  error
	logoutN  int
}

func (f *fakeSession) Login(user, pass string) error { return f.loginErr }
func (f *fakeSession) Noop() error                    { return f.noopErr }
func (f *fakeSession) Logout() error                  { f.logoutN++; return nil }

func cfgFor(t *testing.T) config.ConnectionConfig {
	t.Helper()
	return config.ConnectionConfig{
		Host:              "imap.example.com",
		Port:              993,
		User:              "alice",
		Password:          "secret",
		MaxRetries:        2,
		InitialRetryDelay: time.Millisecond,
		MaxRetryDelay:     2 * time.Millisecond,
	}
}

func TestConnect_SuccessTransitionsToAuthenticated(t *testing.T) {
	cfg := cfgFor(t)
	c := New(cfg, nil, nil)
	sess := &fakeSession{}
	c.dial = func(config.ConnectionConfig) (Session, error) { return sess, nil }

	err := c.Connect(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, StateAuthenticated, c.State())
	assert.True(t, c.IsAuthenticated())
}

func TestConnect_LoginRejectionIsNotRetried(t *testing.T) {
	cfg := cfgFor(t)
	c := New(cfg, nil, nil)
	attempts := 0
	c.dial = func(config.ConnectionConfig) (Session, error) {
		attempts++
		return &fakeSession{loginErr: errors.New("AUTHENTICATIONFAILED")}, nil
	}

	err := c.Connect(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, StateBroken, c.State())
}

func TestConnect_DialFailureRetriesThenFails(t *testing.T) {
	cfg := cfgFor(t)
	c := New(cfg, nil, nil)
	attempts := 0
	c.dial = func(config.ConnectionConfig) (Session, error) {
		attempts++
		return nil, errors.New("connection refused")
	}

	err := c.Connect(context.Background())

	assert.Error(t, err)
	assert.Equal(t, cfg.MaxRetries, attempts)
	assert.Equal(t, StateBroken, c.State())
}

func TestConnect_IsIdempotentWhenAlreadyAuthenticated(t *testing.T) {
	cfg := cfgFor(t)
	c := New(cfg, nil, nil)
	attempts := 0
	c.dial = func(config.ConnectionConfig) (Session, error) {
		attempts++
		return &fakeSession{}, nil
	}

	assert.NoError(t, c.Connect(context.Background()))
	assert.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, 1, attempts)
}

func TestDisconnect_IsIdempotent(t *testing.T) {
	cfg := cfgFor(t)
	c := New(cfg, nil, nil)
	sess := &fakeSession{}
	c.dial = func(config.ConnectionConfig) (Session, error) { return sess, nil }
	assert.NoError(t, c.Connect(context.Background()))

	assert.NoError(t, c.Disconnect())
	assert.Equal(t, StateClosed, c.State())
	assert.Equal(t, 1, sess.logoutN)

	assert.NoError(t, c.Disconnect())
	assert.Equal(t, 1, sess.logoutN)
}

func TestSession_FailsWhenNotAuthenticated(t *testing.T) {
	cfg := cfgFor(t)
	c := New(cfg, nil, nil)

	_, err := c.Session()
	assert.Error(t, err)
}

func TestDo_RecordsOperationMetrics(t *testing.T) {
	cfg := cfgFor(t)
	c := New(cfg, nil, nil)
	c.dial = func(config.ConnectionConfig) (Session, error) { return &fakeSession{}, nil }
	assert.NoError(t, c.Connect(context.Background()))

	err := c.Do(context.Background(), "Noop", func(s Session) error { return s.Noop() })
	assert.NoError(t, err)

	snap := c.Metrics.Snapshot()
	assert.Equal(t, 1, snap.TotalOperations)
	assert.Equal(t, 0, snap.FailedOperations)
}

func TestDo_FailureMarksConnectionBroken(t *testing.T) {
	cfg := cfgFor(t)
	c := New(cfg, nil, nil)
	c.dial = func(config.ConnectionConfig) (Session, error) {
		return &fakeSession{noopErr: errors.New("boom")}, nil
	}
	assert.NoError(t, c.Connect(context.Background()))

	err := c.Do(context.Background(), "Noop", func(s Session) error { return s.Noop() })

	assert.Error(t, err)
	assert.Equal(t, StateBroken, c.State())
}
