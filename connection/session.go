package connection

import (
	"time"

	imap "github.com/emersion/go-imap"
)

// Session is the explicit capability interface spec.md's Design Notes call
// for: the enumerated set of IMAP verbs the mailbox engine actually issues
// (§6), declared as methods instead of the teacher's open-ended dynamic
// forwarding onto *client.Client. *client.Client satisfies this interface
// as-is, which is what connection.New wraps; tests substitute a fake.
type Session interface {
	Login(username, password string) error
	Logout() error
	Noop() error
	Check() error
	Capability() (map[string]bool, error)

	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	Close() error
	Expunge(ch chan uint32) error
	List(ref, name string, ch chan *imap.MailboxInfo) error
	Status(name string, items []imap.StatusItem) (*imap.MailboxStatus, error)

	Create(name string) error
	Delete(name string) error
	Rename(existingName, newName string) error

	Append(mbox string, flags []string, date time.Time, msg imap.Literal) error

	Search(criteria *imap.SearchCriteria) ([]uint32, error)
	UidSearch(criteria *imap.SearchCriteria) ([]uint32, error)

	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	UidFetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error

	Store(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error

	Copy(seqset *imap.SeqSet, dest string) error
	UidCopy(seqset *imap.SeqSet, dest string) error
}
