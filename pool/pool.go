// Package pool implements the process-wide, keyed connection pool spec.md
// §3/§4.4 defines: a bounded LIFO stack per (host,port,user) key, all
// mutations under one mutex, non-owning handles (per the Design Notes, the
// pool never holds a *connection.Connection, only the underlying
// connection.Session it surrenders on disconnect — breaking the
// Connection<->Pool cyclic reference).
//
// Grounded on sage_imap/services/client.py's ConnectionPool (dict-of-lists
// + threading.Lock, get_connection_key, LIFO via list.pop()/append()).
package pool

import (
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/sageimap/goimap/connection"
	"github.com/sageimap/goimap/internal/logger"
)

// Pool implements connection.Pooler.
type Pool struct {
	mu      sync.Mutex
	cap     int
	stacks  map[string][]entry
	log     logger.Logger
}

type entry struct {
	id      string
	session connection.Session
}

// New builds a Pool with the given per-key capacity.
func New(maxConnectionsPerKey int, log logger.Logger) *Pool {
	if log == nil {
		log = logger.NewNop()
	}
	if maxConnectionsPerKey <= 0 {
		maxConnectionsPerKey = 10
	}
	return &Pool{
		cap:    maxConnectionsPerKey,
		stacks: make(map[string][]entry),
		log:    log,
	}
}

// Checkout pops the most recently returned handle for key.
func (p *Pool) Checkout(key string) (connection.Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stack := p.stacks[key]
	if len(stack) == 0 {
		return nil, false
	}
	last := stack[len(stack)-1]
	p.stacks[key] = stack[:len(stack)-1]
	p.log.Debugw("checked out pooled session", "key", key, "handle", last.id)
	return last.session, true
}

// Return pushes s onto key's stack if there's room; otherwise reports false
// so the caller logs s out instead of parking it.
func (p *Pool) Return(key string, s connection.Session) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	stack := p.stacks[key]
	if len(stack) >= p.cap {
		return false
	}
	id, _ := gonanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", 12)
	p.stacks[key] = append(stack, entry{id: id, session: s})
	p.log.Debugw("returned pooled session", "key", key, "handle", id)
	return true
}

// Discard logs s out and drops it, matching connection.Pooler's contract: a
// session reaching Discard already failed its health check, so it is not a
// candidate for Return.
func (p *Pool) Discard(key string, s connection.Session) {
	if err := s.Logout(); err != nil {
		p.log.Warnw("error logging out discarded session", "key", key, "error", err)
		return
	}
	p.log.Debugw("discarded unhealthy pooled session", "key", key)
}

// Stats reports cap, the number of keys with a non-empty stack, and the
// total number of parked handles, per spec.md §4.4.
type Stats struct {
	Cap            int
	KeysWithHandles int
	TotalHandles   int
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := Stats{Cap: p.cap}
	for _, stack := range p.stacks {
		if len(stack) > 0 {
			stats.KeysWithHandles++
		}
		stats.TotalHandles += len(stack)
	}
	return stats
}

// Clear drains every stack, logging out each handle. Errors from individual
// logouts are logged, not returned, so one bad handle doesn't block
// draining the rest.
func (p *Pool) Clear() {
	p.mu.Lock()
	stacks := p.stacks
	p.stacks = make(map[string][]entry)
	p.mu.Unlock()

	for key, stack := range stacks {
		for _, e := range stack {
			if err := e.session.Logout(); err != nil {
				p.log.Warnw("error logging out pooled session during clear", "key", key, "error", err)
			}
		}
	}
}
