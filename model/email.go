package model

import "time"

// Attachment is one MIME part of a fetched message, carrying whatever the
// bytes-to-EmailMessage boundary (internal/emailparse) extracted.
type Attachment struct {
	Filename          string
	ContentType       string
	Payload           []byte
	ID                string
	ContentID         string
	TransferEncoding  string
}

// EmailMessage is the record fetch produces. Exact MIME parsing is out of
// scope (see internal/emailparse); the fields here are what the mailbox
// engine itself is responsible for filling in: sequenceNumber, UID, size,
// and mailbox always reflect the server's FETCH response for this
// particular call, per spec.md §3's EmailMessage invariant.
type EmailMessage struct {
	MessageID string
	Subject   string

	From []string
	To   []string
	Cc   []string
	Bcc  []string

	Date time.Time // normalized to UTC / ISO-8601 resolution of seconds

	Raw       []byte
	PlainBody string
	HTMLBody  string

	Attachments []Attachment
	Flags       map[Flag]struct{}
	Headers     map[string][]string

	Size           int
	SequenceNumber uint32
	UID            uint32
	Mailbox        string
}

// MessageUID and MessageSeqNum satisfy messageset.UIDOf so *EmailMessage
// values can be passed to messageset.FromEmailMessages as UIDOf elements.
func (m *EmailMessage) MessageUID() uint32    { return m.UID }
func (m *EmailMessage) MessageSeqNum() uint32 { return m.SequenceNumber }

// HasFlag reports whether f is set on this message.
func (m *EmailMessage) HasFlag(f Flag) bool {
	if m.Flags == nil {
		return false
	}
	_, ok := m.Flags[f]
	return ok
}
