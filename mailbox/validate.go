// Package mailbox implements the stateful per-connection operation engine
// spec.md §4.5 defines: select/search/fetch/store/copy/move/delete/restore/
// append/expunge, sequence-number and UID variants, plus bulk drivers.
//
// Grounded on the teacher's services/imap/{folder.go,get_email.go,
// service.go} for the FETCH/SEARCH/SELECT plumbing against *client.Client,
// generalized away from the teacher's mailbox-sync-specific framing, and on
// sage_imap/services/mailbox.py for the exact composite-operation semantics
// (move/restore/fetch's malformed-part policy) this spec's Open Questions
// resolve to.
package mailbox

import (
	"strings"

	"github.com/sageimap/goimap/internal/ierr"
)

// DefaultMailboxes names the conventional special-use folders, so callers
// of trash()/status()/etc. aren't forced to hand-write string literals.
// Kept from sage_imap/helpers/mailbox.py's DefaultMailboxes enum.
const (
	Inbox   = "INBOX"
	Sent    = "Sent"
	Drafts  = "Drafts"
	Trash   = "Trash"
	Spam    = "Spam"
	Archive = "Archive"
)

// StatusItem is one of the five STATUS data items spec.md §4.5 lists.
type StatusItem string

const (
	StatusMessages    StatusItem = "MESSAGES"
	StatusRecent      StatusItem = "RECENT"
	StatusUIDNext     StatusItem = "UIDNEXT"
	StatusUIDValidity StatusItem = "UIDVALIDITY"
	StatusUnseen      StatusItem = "UNSEEN"
)

// validateMailboxName applies the deny-list spec.md §4.5 calls for: reject
// empty names, NUL bytes, and the ".." traversal token. "/" and "." are
// left alone since IMAP servers commonly use either as the real hierarchy
// delimiter between a mailbox and its children (e.g. "Archive/2024").
func validateMailboxName(name string) error {
	if name == "" {
		return ierr.Configuration("mailbox name must not be empty")
	}
	if strings.ContainsRune(name, 0) {
		return ierr.Configuration("mailbox name must not contain NUL")
	}
	if strings.Contains(name, "..") {
		return ierr.Configuration("mailbox name must not contain '..'")
	}
	return nil
}

// protectedFolders may not be DELETEd, per spec.md §7's "DELETE on a
// protected default folder refused pre-flight".
var protectedFolders = map[string]struct{}{
	Inbox: {},
}

func isProtected(name string) bool {
	_, ok := protectedFolders[strings.ToUpper(name)]
	if ok {
		return true
	}
	_, ok = protectedFolders[name]
	return ok
}
