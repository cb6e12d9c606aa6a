package pool

import (
	"context"
	"sync"

	cronv3 "github.com/robfig/cron/v3"

	"github.com/sageimap/goimap/internal/logger"
)

// reconnector is the capability the Supervisor needs from a Connection,
// narrowed so this package doesn't need to import package connection just
// to call three methods on it. *connection.Connection satisfies this.
type reconnector interface {
	IsAuthenticated() bool
	IsConnected() bool
	Reconnect(ctx context.Context) error
}

// Supervisor is the Design Notes' alternative (b) to a goroutine-per-
// Connection health monitor: one cron-scheduled sweep that health-checks
// every registered Connection from a single place. Grounded on the
// teacher's internal/cron.CronManager, stripped of the Kubernetes
// leader-election machinery (this is a library, not a multi-replica
// service) but keeping the same registration/Start/Stop shape.
type Supervisor struct {
	mu      sync.Mutex
	cron    *cronv3.Cron
	entryID cronv3.EntryID
	conns   map[string]reconnector
	log     logger.Logger
}

// NewSupervisor builds a Supervisor that has not yet started ticking.
func NewSupervisor(log logger.Logger) *Supervisor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Supervisor{
		cron:  cronv3.New(cronv3.WithSeconds()),
		conns: make(map[string]reconnector),
		log:   log,
	}
}

// Register adds a Connection to the sweep; Unregister removes it. Callers
// pass anything satisfying reconnector — in practice a *connection.Connection.
func (s *Supervisor) Register(key string, c reconnector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[key] = c
}

func (s *Supervisor) Unregister(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, key)
}

// Start schedules the sweep at the given cron spec (e.g. "*/30 * * * * *"
// for every 30s, since WithSeconds is enabled) and starts the scheduler.
func (s *Supervisor) Start(spec string) error {
	id, err := s.cron.AddFunc(spec, s.sweep)
	if err != nil {
		return err
	}
	s.entryID = id
	s.cron.Start()
	return nil
}

// Stop halts the scheduler; in-flight sweep iterations are allowed to
// finish.
func (s *Supervisor) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Supervisor) sweep() {
	s.mu.Lock()
	snapshot := make(map[string]reconnector, len(s.conns))
	for k, v := range s.conns {
		snapshot[k] = v
	}
	s.mu.Unlock()

	for key, c := range snapshot {
		if !c.IsAuthenticated() {
			continue
		}
		if c.IsConnected() {
			continue
		}
		s.log.Warnw("supervisor sweep found a broken connection, reconnecting", "key", key)
		if err := c.Reconnect(context.Background()); err != nil {
			s.log.Errorw("supervisor reconnect failed", "key", key, "error", err)
		}
	}
}
