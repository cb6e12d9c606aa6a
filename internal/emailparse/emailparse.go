// Package emailparse defines the pluggable bytes-to-EmailMessage boundary
// spec.md §4.5 explicitly keeps out of the mailbox engine's core: parsing
// a raw RFC 5322 message into structured subject/body/attachments is a MIME
// concern, not an IMAP one. The mailbox package calls through the Parser
// interface; EnmimeParser is the default implementation.
//
// Grounded on the teacher's services/email_processor/handlers/imap.go,
// whose parseWithEnmime is the same enmime.ReadEnvelope call, generalized
// into a standalone function instead of a method with a *models.Email
// side-output parameter.
package emailparse

import (
	"bytes"

	"github.com/jhillyerd/enmime"

	"github.com/sageimap/goimap/internal/ierr"
	"github.com/sageimap/goimap/model"
)

// Parser turns a raw RFC 5322 message into the fields mailbox.Fetch cannot
// get from FETCH metadata alone (PlainBody/HTMLBody/Attachments/Headers).
type Parser interface {
	Parse(raw []byte) (model.EmailMessage, error)
}

// EnmimeParser is the default Parser, backed by jhillyerd/enmime.
type EnmimeParser struct{}

func (EnmimeParser) Parse(raw []byte) (model.EmailMessage, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return model.EmailMessage{}, ierr.Operation("failed to parse MIME message", "", err)
	}

	headers := make(map[string][]string)
	for _, key := range env.GetHeaderKeys() {
		if values := env.GetHeaderValues(key); len(values) > 0 {
			headers[key] = values
		}
	}

	msg := model.EmailMessage{
		Subject:   env.GetHeader("Subject"),
		Raw:       raw,
		PlainBody: env.Text,
		HTMLBody:  env.HTML,
		Headers:   headers,
		Size:      len(raw),
	}

	for _, a := range env.Attachments {
		msg.Attachments = append(msg.Attachments, model.Attachment{
			Filename:    a.FileName,
			ContentType: a.ContentType,
			Payload:     a.Content,
		})
	}
	for _, a := range env.Inlines {
		msg.Attachments = append(msg.Attachments, model.Attachment{
			Filename:    a.FileName,
			ContentType: a.ContentType,
			ContentID:   a.ContentID,
			Payload:     a.Content,
		})
	}

	return msg, nil
}
