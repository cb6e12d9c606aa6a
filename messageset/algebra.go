package messageset

import (
	"strings"

	"github.com/sageimap/goimap/internal/ierr"
)

// Union requires matching IsUID. If the mailbox hints differ a warning is
// returned and the left operand's mailbox hint is kept, mirroring the
// original's string-concatenation union (components are not expanded to
// individual ids; the caller may call Normalize() afterward to collapse).
func (s MessageSet) Union(other MessageSet) (MessageSet, []string, error) {
	if s.isUID != other.isUID {
		return MessageSet{}, nil, ierr.Configuration("cannot union a UID set with a sequence-number set")
	}
	var warnings []string
	mailbox := s.mailbox
	if s.mailbox != "" && other.mailbox != "" && s.mailbox != other.mailbox {
		warnings = append(warnings, "union of message sets tagged for different mailboxes: "+s.mailbox+" vs "+other.mailbox)
	}
	switch {
	case s.raw == "":
		return newMessageSet(other.raw, s.isUID, mailbox), warnings, nil
	case other.raw == "":
		return newMessageSet(s.raw, s.isUID, mailbox), warnings, nil
	}
	return newMessageSet(s.raw+","+other.raw, s.isUID, mailbox), warnings, nil
}

// Intersection operates on individual ids, expanding any closed range
// component (N:M) to its member ids first. Fails with a Configuration error
// if either operand holds an open-ended range (N:*), since that can't be
// expanded without a live SELECT to resolve "*", and fails if the result
// would be empty.
func (s MessageSet) Intersection(other MessageSet) (MessageSet, error) {
	if s.isUID != other.isUID {
		return MessageSet{}, ierr.Configuration("cannot intersect a UID set with a sequence-number set")
	}
	if err := requireIndividualIDsOnly(s); err != nil {
		return MessageSet{}, err
	}
	if err := requireIndividualIDsOnly(other); err != nil {
		return MessageSet{}, err
	}
	left := s.ParsedIDs()
	rightSet := toSet(other.ParsedIDs())
	var out []uint32
	for _, id := range left {
		if _, ok := rightSet[id]; ok {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return MessageSet{}, ierr.Configuration("intersection produced an empty message set")
	}
	return fromIDs(out, s.isUID, s.mailbox)
}

// Subtract is Intersection's complement: s minus other, individual ids only.
func (s MessageSet) Subtract(other MessageSet) (MessageSet, error) {
	if s.isUID != other.isUID {
		return MessageSet{}, ierr.Configuration("cannot subtract a sequence-number set from a UID set")
	}
	if err := requireIndividualIDsOnly(s); err != nil {
		return MessageSet{}, err
	}
	if err := requireIndividualIDsOnly(other); err != nil {
		return MessageSet{}, err
	}
	remove := toSet(other.ParsedIDs())
	var out []uint32
	for _, id := range s.ParsedIDs() {
		if _, ok := remove[id]; !ok {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return MessageSet{}, ierr.Configuration("subtract produced an empty message set")
	}
	return fromIDs(out, s.isUID, s.mailbox)
}

func requireIndividualIDsOnly(s MessageSet) error {
	if s.hasOpenRng {
		return ierr.Configuration("individually-addressed ids only; s holds an open-ended range (N:*)")
	}
	return nil
}

func toSet(ids []uint32) map[uint32]struct{} {
	m := make(map[uint32]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// Merge combines N message sets the way merge_message_sets does in the
// original: concatenates canonical strings, requiring all operands to share
// IsUID.
func Merge(sets ...MessageSet) (MessageSet, error) {
	if len(sets) == 0 {
		return MessageSet{}, ierr.Configuration("merge requires at least one message set")
	}
	isUID := sets[0].isUID
	var parts []string
	mailbox := sets[0].mailbox
	for _, s := range sets {
		if s.isUID != isUID {
			return MessageSet{}, ierr.Configuration("cannot merge message sets of mixed UID/sequence-number type")
		}
		if s.raw != "" {
			parts = append(parts, s.raw)
		}
	}
	if len(parts) == 0 {
		return MessageSet{}, ierr.Configuration("merge of empty message sets")
	}
	return newMessageSet(strings.Join(parts, ","), isUID, mailbox), nil
}

// BatchIterator yields sub-MessageSets of at most a fixed size, walking
// over ParsedIDs(): closed ranges in a set that also holds bare ids are
// expanded and may be split across batches, and open-ended ranges (N:*) in
// such a set are not included in any batch. A range-only set yields a
// single batch equal to the whole set, with a warning surfaced via
// Warning().
type BatchIterator struct {
	ids       []uint32
	size      int
	pos       int
	isUID     bool
	mailbox   string
	warning   string
	wholeSet  MessageSet
	wholeDone bool
}

// IterBatches builds a BatchIterator over s with batch size n (n must be
// positive).
func (s MessageSet) IterBatches(n int) (*BatchIterator, error) {
	if n <= 0 {
		return nil, ierr.Configuration("batch size must be positive")
	}
	if s.IsRangeOnly() {
		return &BatchIterator{
			size:     n,
			isUID:    s.isUID,
			mailbox:  s.mailbox,
			warning:  "message set contains only ranges; emitting it as a single batch",
			wholeSet: s,
		}, nil
	}
	return &BatchIterator{ids: s.ParsedIDs(), size: n, isUID: s.isUID, mailbox: s.mailbox}, nil
}

// Warning returns the non-empty diagnostic produced when the set could not
// be split (range-only), or "" otherwise.
func (b *BatchIterator) Warning() string { return b.warning }

// Next returns the next batch, or ok=false when exhausted.
func (b *BatchIterator) Next() (MessageSet, bool) {
	if b.warning != "" {
		if b.wholeDone {
			return MessageSet{}, false
		}
		b.wholeDone = true
		return b.wholeSet, true
	}
	if b.pos >= len(b.ids) {
		return MessageSet{}, false
	}
	end := b.pos + b.size
	if end > len(b.ids) {
		end = len(b.ids)
	}
	chunk := b.ids[b.pos:end]
	b.pos = end
	set, _ := fromIDs(chunk, b.isUID, b.mailbox)
	return set, true
}

// SplitBySize is the non-iterator convenience form of IterBatches, matching
// the original's split_by_size: returns every batch at once, with the same
// range handling as BatchIterator. A range-only set is returned unsplit
// (single-element result) with a warning.
func (s MessageSet) SplitBySize(n int) ([]MessageSet, []string, error) {
	it, err := s.IterBatches(n)
	if err != nil {
		return nil, nil, err
	}
	if it.warning != "" {
		return []MessageSet{s}, []string{it.warning}, nil
	}
	var out []MessageSet
	for {
		b, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, b)
	}
	return out, nil, nil
}
