package mailbox

import (
	"context"
	"io"

	imap "github.com/emersion/go-imap"

	"github.com/sageimap/goimap/connection"
	"github.com/sageimap/goimap/internal/emailparse"
	"github.com/sageimap/goimap/internal/ierr"
	"github.com/sageimap/goimap/messageset"
	"github.com/sageimap/goimap/model"
)

// fetchItems is what every Fetch/UidFetch call requests: envelope and flags
// for the fields the mailbox engine fills in directly, BODY.PEEK[] for the
// raw bytes internal/emailparse needs, and the opposite of UID/sequence so
// both are always present on the returned model.EmailMessage. Grounded on
// the teacher's services/imap/folder.go fetchAndProcessMessages.
var fetchItems = []imap.FetchItem{
	imap.FetchEnvelope,
	imap.FetchFlags,
	imap.FetchBodyStructure,
	imap.FetchItem("BODY.PEEK[]"),
	imap.FetchUid,
}

// Fetch retrieves the messages in set (sequence-number addressed). A
// message whose BODY.PEEK[] section is missing or fails to parse is
// skipped rather than failing the whole call, per spec.md §7's "a single
// malformed part does not fail the whole FETCH, provided at least one part
// fetched successfully" resolution; if every message fails, Fetch returns
// an error.
func (s *Service) Fetch(ctx context.Context, set messageset.MessageSet, parser emailparse.Parser) ([]model.EmailMessage, error) {
	return s.fetch(ctx, set, parser, false)
}

// UidFetch is Fetch's UID-addressed counterpart.
func (s *Service) UidFetch(ctx context.Context, set messageset.MessageSet, parser emailparse.Parser) ([]model.EmailMessage, error) {
	return s.fetch(ctx, set, parser, true)
}

func (s *Service) fetch(ctx context.Context, set messageset.MessageSet, parser emailparse.Parser, uid bool) ([]model.EmailMessage, error) {
	if err := s.requireSelected(); err != nil {
		return nil, err
	}
	if parser == nil {
		parser = emailparse.EnmimeParser{}
	}
	seqSet, err := toSeqSet(set)
	if err != nil {
		return nil, err
	}

	var (
		results  []model.EmailMessage
		skipped  int
		fetchErr error
	)
	opName := "Fetch"
	err = s.track(ctx, opName, func() error {
		ch := make(chan *imap.Message, 16)
		done := make(chan error, 1)
		go func() {
			done <- s.conn.Do(ctx, opName, func(sess connection.Session) error {
				if uid {
					return sess.UidFetch(seqSet, fetchItems, ch)
				}
				return sess.Fetch(seqSet, fetchItems, ch)
			})
		}()

		for msg := range ch {
			email, convErr := messageFromIMAP(msg, parser, s.currentSelection)
			if convErr != nil {
				skipped++
				continue
			}
			results = append(results, email)
		}
		fetchErr = <-done
		return fetchErr
	})
	if err != nil {
		return nil, ierr.Operation("FETCH failed", "", err)
	}
	if len(results) == 0 && skipped > 0 {
		return nil, ierr.Operation("every fetched part was malformed", "", nil)
	}
	return results, nil
}

func messageFromIMAP(msg *imap.Message, parser emailparse.Parser, mailboxName string) (model.EmailMessage, error) {
	raw := extractBody(msg)
	if len(raw) == 0 {
		return model.EmailMessage{}, ierr.Operation("missing BODY.PEEK[] section", "", nil)
	}

	email, err := parser.Parse(raw)
	if err != nil {
		return model.EmailMessage{}, err
	}

	email.SequenceNumber = msg.SeqNum
	email.UID = msg.Uid
	email.Mailbox = mailboxName
	email.Size = len(raw)
	email.Flags = flagsToSet(msg.Flags)

	if env := msg.Envelope; env != nil {
		if email.Subject == "" {
			email.Subject = env.Subject
		}
		if email.MessageID == "" {
			email.MessageID = env.MessageId
		}
		email.From = addressStrings(env.From)
		email.To = addressStrings(env.To)
		email.Cc = addressStrings(env.Cc)
		email.Bcc = addressStrings(env.Bcc)
		if !env.Date.IsZero() {
			email.Date = env.Date.UTC()
		}
	}

	return email, nil
}

func extractBody(msg *imap.Message) []byte {
	for section, literal := range msg.Body {
		if len(section.Path) == 0 && section.Specifier == imap.EntireSpecifier {
			data, err := io.ReadAll(literal)
			if err == nil {
				return data
			}
		}
	}
	return nil
}

func addressStrings(addrs []*imap.Address) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.Address())
	}
	return out
}

func flagsToSet(flags []string) map[model.Flag]struct{} {
	set := make(map[model.Flag]struct{}, len(flags))
	for _, f := range flags {
		set[model.Flag(f)] = struct{}{}
	}
	return set
}

// toSeqSet converts a MessageSet into the wire-level *imap.SeqSet the
// client library expects, by walking the canonical components directly
// (avoids re-expanding ranges ParsedIDs() would materialize in full).
func toSeqSet(set messageset.MessageSet) (*imap.SeqSet, error) {
	if set.IsEmpty() {
		return nil, ierr.Configuration("message set is empty")
	}
	seqSet, err := imap.ParseSeqSet(set.String())
	if err != nil {
		return nil, ierr.Configuration("invalid message set: " + err.Error())
	}
	return seqSet, nil
}
