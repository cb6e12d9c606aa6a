package mailbox

import (
	"context"
	"time"

	imap "github.com/emersion/go-imap"

	"github.com/sageimap/goimap/connection"
	"github.com/sageimap/goimap/internal/ierr"
	"github.com/sageimap/goimap/internal/tracing"
)

// Service is the stateful per-connection operation engine: one Service wraps
// one *connection.Connection and tracks which mailbox is currently SELECTed,
// since FETCH/SEARCH/STORE/EXPUNGE are only meaningful against a selected
// mailbox. Grounded on the teacher's services/imap.Service, which carries
// the same "one *client.Client, one notion of the current folder" shape.
type Service struct {
	conn *connection.Connection

	currentSelection string
	readOnly         bool

	monitor *monitor
}

// New wraps an already-constructed Connection. The caller is responsible
// for Connect()ing it before issuing any operation below.
func New(conn *connection.Connection) *Service {
	return &Service{conn: conn, monitor: newMonitor()}
}

// Statistics reports the running counters spec.md §4.5's Monitor
// subsection calls for.
func (s *Service) Statistics() Statistics {
	return s.monitor.statistics()
}

func (s *Service) requireSelected() error {
	if s.currentSelection == "" {
		return ierr.Mailbox("no mailbox selected", "")
	}
	return nil
}

// track wraps a single protocol round-trip with the per-operation latency
// and success/failure bookkeeping every exported method below goes through,
// mirroring connection.Connection.instrument one layer up (operation name
// instead of raw IMAP verb). It also opens the span every mailbox operation
// runs under, so Service's tracing coverage matches Connection's instead of
// stopping at the connection layer.
func (s *Service) track(ctx context.Context, op string, fn func() error) error {
	span, _ := tracing.StartTracerSpan(ctx, "mailbox."+op)
	tracing.SetDefaultMailboxSpanTags(span, s.currentSelection)
	defer span.Finish()

	start := time.Now()
	err := fn()
	if err != nil {
		tracing.TraceErr(span, err)
	}
	s.monitor.record(op, time.Since(start), err == nil)
	return err
}

// Select opens mailbox, read-write unless readOnly is true, and records it
// as the current selection for subsequent operations.
func (s *Service) Select(ctx context.Context, mailboxName string, readOnly bool) (*imap.MailboxStatus, error) {
	if err := validateMailboxName(mailboxName); err != nil {
		return nil, err
	}
	var status *imap.MailboxStatus
	err := s.track(ctx, "Select", func() error {
		return s.conn.Do(ctx, "Select", func(sess connection.Session) error {
			var selErr error
			status, selErr = sess.Select(mailboxName, readOnly)
			return selErr
		})
	})
	if err != nil {
		return nil, ierr.Operation("SELECT failed", "", err)
	}
	s.currentSelection = mailboxName
	s.readOnly = readOnly
	return status, nil
}

// Close closes the currently selected mailbox (expunging \Deleted messages
// unless it was opened read-only, per RFC 3501 §6.4.2) and clears the
// current selection.
func (s *Service) Close(ctx context.Context) error {
	if err := s.requireSelected(); err != nil {
		return nil // closing with nothing selected is a no-op, not an error
	}
	err := s.track(ctx, "Close", func() error {
		return s.conn.Do(ctx, "Close", func(sess connection.Session) error {
			return sess.Close()
		})
	})
	s.currentSelection = ""
	if err != nil {
		return ierr.Operation("CLOSE failed", "", err)
	}
	return nil
}

// Check requests a checkpoint of the currently selected mailbox, per
// spec.md §4.5's invariant that every mutating composite operation ends
// with a CHECK round-trip before returning.
func (s *Service) Check(ctx context.Context) error {
	if err := s.requireSelected(); err != nil {
		return err
	}
	err := s.track(ctx, "Check", func() error {
		return s.conn.Do(ctx, "Check", func(sess connection.Session) error {
			return sess.Check()
		})
	})
	if err != nil {
		return ierr.Operation("CHECK failed", "", err)
	}
	return nil
}

// Status issues STATUS for mailboxName without SELECTing it, per spec.md
// §4.5.
func (s *Service) Status(ctx context.Context, mailboxName string, items ...StatusItem) (*imap.MailboxStatus, error) {
	if err := validateMailboxName(mailboxName); err != nil {
		return nil, err
	}
	imapItems := make([]imap.StatusItem, len(items))
	for i, it := range items {
		imapItems[i] = imap.StatusItem(it)
	}

	var status *imap.MailboxStatus
	err := s.track(ctx, "Status", func() error {
		return s.conn.Do(ctx, "Status", func(sess connection.Session) error {
			var statusErr error
			status, statusErr = sess.Status(mailboxName, imapItems)
			return statusErr
		})
	})
	if err != nil {
		return nil, ierr.Operation("STATUS failed", "", err)
	}
	return status, nil
}

// List enumerates mailboxes under ref matching the name pattern (IMAP
// wildcards "%"/"*" apply), per spec.md §4.5.
func (s *Service) List(ctx context.Context, ref, pattern string) ([]*imap.MailboxInfo, error) {
	var infos []*imap.MailboxInfo
	err := s.track(ctx, "List", func() error {
		ch := make(chan *imap.MailboxInfo, 16)
		done := make(chan error, 1)
		go func() {
			done <- s.conn.Do(ctx, "List", func(sess connection.Session) error {
				return sess.List(ref, pattern, ch)
			})
		}()
		for info := range ch {
			infos = append(infos, info)
		}
		return <-done
	})
	if err != nil {
		return nil, ierr.Operation("LIST failed", "", err)
	}
	return infos, nil
}

// CreateMailbox issues CREATE for name. A server that already has a
// mailbox by that name returns ALREADYEXISTS, surfaced as-is.
func (s *Service) CreateMailbox(ctx context.Context, name string) error {
	if err := validateMailboxName(name); err != nil {
		return err
	}
	err := s.track(ctx, "Create", func() error {
		return s.conn.Do(ctx, "Create", func(sess connection.Session) error {
			return sess.Create(name)
		})
	})
	if err != nil {
		return ierr.Operation("CREATE failed", "", err)
	}
	return nil
}

// DeleteMailbox issues DELETE for name, refusing pre-flight for the
// conventional default folders (INBOX) per spec.md §7 rather than letting
// the round-trip fail server-side.
func (s *Service) DeleteMailbox(ctx context.Context, name string) error {
	if err := validateMailboxName(name); err != nil {
		return err
	}
	if isProtected(name) {
		return ierr.Mailbox("refusing to delete a protected folder: "+name, "")
	}
	err := s.track(ctx, "Delete", func() error {
		return s.conn.Do(ctx, "Delete", func(sess connection.Session) error {
			return sess.Delete(name)
		})
	})
	if err != nil {
		return ierr.Operation("DELETE failed", "", err)
	}
	return nil
}

// RenameMailbox issues RENAME from existingName to newName. Renaming a
// protected folder is refused pre-flight for the same reason DeleteMailbox
// refuses it: it would otherwise leave INBOX's clients without a home.
func (s *Service) RenameMailbox(ctx context.Context, existingName, newName string) error {
	if err := validateMailboxName(existingName); err != nil {
		return err
	}
	if err := validateMailboxName(newName); err != nil {
		return err
	}
	if isProtected(existingName) {
		return ierr.Mailbox("refusing to rename a protected folder: "+existingName, "")
	}
	err := s.track(ctx, "Rename", func() error {
		return s.conn.Do(ctx, "Rename", func(sess connection.Session) error {
			return sess.Rename(existingName, newName)
		})
	})
	if err != nil {
		return ierr.Operation("RENAME failed", "", err)
	}
	return nil
}

// Expunge permanently removes every \Deleted message in the currently
// selected mailbox.
func (s *Service) Expunge(ctx context.Context) error {
	if err := s.requireSelected(); err != nil {
		return err
	}
	err := s.track(ctx, "Expunge", func() error {
		return s.conn.Do(ctx, "Expunge", func(sess connection.Session) error {
			return sess.Expunge(nil)
		})
	})
	if err != nil {
		return ierr.Operation("EXPUNGE failed", "", err)
	}
	return nil
}
