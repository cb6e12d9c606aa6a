// Package messageset implements MessageSet, the value type spec.md §3/§4.1
// defines for addressing arbitrary collections of IMAP messages: individual
// IDs, inclusive ranges, and open-ended ranges, normalized to a canonical
// wire form and manipulable via a small set algebra.
//
// Grounded on sage_imap/models/message.py's MessageSet: canonicalization
// (sort + collapse into runs), validation rules, and the memoized derived
// views (parsedIds/idRanges/estimatedCount) all follow that implementation.
package messageset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sageimap/goimap/internal/ierr"
)

// Star is the sentinel used as the open end of a range ("N:*").
const Star = "*"

// Range is one parsed component: either a single id (Start==End, Open==false)
// or a span N:M, or an open span N:* (Open==true, End is meaningless).
type Range struct {
	Start uint32
	End   uint32
	Open  bool
}

func (r Range) String() string {
	if r.Open {
		return fmt.Sprintf("%d:%s", r.Start, Star)
	}
	if r.Start == r.End {
		return strconv.FormatUint(uint64(r.Start), 10)
	}
	return fmt.Sprintf("%d:%d", r.Start, r.End)
}

// MessageSet is immutable once constructed; every mutating-looking method
// returns a new value. It carries no lock or one-time-init guard — its
// derived views (parsedIDs/idRanges/estCount/hasOpenRng) are computed once,
// eagerly, by newMessageSet at construction time, so the type stays plain
// data and safe to copy and share freely across goroutines.
type MessageSet struct {
	raw     string // canonical id-string, e.g. "1:3,5,10:*"
	isUID   bool
	mailbox string // optional context hint

	parsedIDs  []uint32
	idRanges   []Range
	estCount   int
	hasOpenRng bool
}

// newMessageSet builds a MessageSet from an already-canonicalized raw
// string, computing its derived views immediately. Every constructor in
// this package and algebra.go routes through this rather than building a
// MessageSet{} literal directly.
func newMessageSet(raw string, isUID bool, mailbox string) MessageSet {
	ids, ranges, count, openRng := parseRaw(raw)
	return MessageSet{
		raw: raw, isUID: isUID, mailbox: mailbox,
		parsedIDs: ids, idRanges: ranges, estCount: count, hasOpenRng: openRng,
	}
}

// parseRaw expands raw's comma-separated components into individual ids and
// Range values.
func parseRaw(raw string) (ids []uint32, ranges []Range, count int, hasOpenRng bool) {
	if raw == "" {
		return nil, nil, 0, false
	}
	for _, c := range strings.Split(raw, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !strings.Contains(c, ":") {
			n, _ := strconv.ParseUint(c, 10, 32)
			id := uint32(n)
			ids = append(ids, id)
			ranges = append(ranges, Range{Start: id, End: id})
			count++
			continue
		}
		segs := strings.SplitN(c, ":", 2)
		start, _ := strconv.ParseUint(segs[0], 10, 32)
		if segs[1] == Star {
			ranges = append(ranges, Range{Start: uint32(start), Open: true})
			hasOpenRng = true
			count++ // conservative lower bound, per spec.md §3
			continue
		}
		end, _ := strconv.ParseUint(segs[1], 10, 32)
		ranges = append(ranges, Range{Start: uint32(start), End: uint32(end)})
		for id := start; id <= end; id++ {
			ids = append(ids, uint32(id))
		}
		count += int(end-start) + 1
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, ranges, count, hasOpenRng
}

// IsUID reports whether ids in this set are UIDs (true) or sequence numbers.
func (s MessageSet) IsUID() bool { return s.isUID }

// Mailbox returns the context-hint mailbox name, or "" if unset.
func (s MessageSet) Mailbox() string { return s.mailbox }

// String renders the canonical wire form.
func (s MessageSet) String() string { return s.raw }

// IsEmpty reports whether the set has no components at all.
func (s MessageSet) IsEmpty() bool { return s.raw == "" }

// ---- constructors ----

// FromUIDs builds a MessageSet from a list of UIDs: duplicates removed,
// sorted ascending, canonicalized. Fails if ids is empty or contains a zero
// id.
func FromUIDs(ids []uint32, mailbox string) (MessageSet, error) {
	return fromIDs(ids, true, mailbox)
}

// FromSequenceNumbers is like FromUIDs but marks the set as sequence-number
// addressed. Per spec.md §4.1, sequence-number sets are permitted but the
// caller contract is "UIDs preferred" — callers are expected to observe the
// warning this returns alongside the value.
func FromSequenceNumbers(ids []uint32, mailbox string) (MessageSet, []string, error) {
	s, err := fromIDs(ids, false, mailbox)
	if err != nil {
		return MessageSet{}, nil, err
	}
	return s, []string{"sequence-number sets are not stable across sessions; prefer UIDs"}, nil
}

func fromIDs(ids []uint32, isUID bool, mailbox string) (MessageSet, error) {
	if len(ids) == 0 {
		return MessageSet{}, ierr.Configuration("message set requires at least one id")
	}
	distinct := make(map[uint32]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return MessageSet{}, ierr.Configuration("message ids must be positive")
		}
		distinct[id] = struct{}{}
	}
	sorted := make([]uint32, 0, len(distinct))
	for id := range distinct {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return newMessageSet(optimizeIDString(sorted), isUID, mailbox), nil
}

// FromRange builds a single-component MessageSet "start:end" (or "start:*"
// when end is the literal Star). start must be positive; end must be either
// Star or >= start.
func FromRange(start uint32, end string, isUID bool, mailbox string) (MessageSet, error) {
	if start == 0 {
		return MessageSet{}, ierr.Configuration("range start must be positive")
	}
	if end == Star {
		return newMessageSet(fmt.Sprintf("%d:%s", start, Star), isUID, mailbox), nil
	}
	endN, err := strconv.ParseUint(end, 10, 32)
	if err != nil || endN == 0 {
		return MessageSet{}, ierr.Configuration("range end must be a positive integer or '*'")
	}
	if uint32(endN) < start {
		return MessageSet{}, ierr.Configuration("range end must be >= start")
	}
	if start == uint32(endN) {
		return newMessageSet(strconv.FormatUint(uint64(start), 10), isUID, mailbox), nil
	}
	return newMessageSet(fmt.Sprintf("%d:%d", start, endN), isUID, mailbox), nil
}

// AllMessages is FromRange(1, "*", isUID).
func AllMessages(isUID bool, mailbox string) MessageSet {
	s, _ := FromRange(1, Star, isUID, mailbox)
	return s
}

// UIDOf is the minimal capability FromEmailMessages needs from a fetched
// message, kept narrow so this package doesn't import the mailbox package.
type UIDOf interface {
	MessageUID() uint32
	MessageSeqNum() uint32
}

// FromEmailMessages prefers UIDs; if any message lacks a UID (zero value)
// it falls back to sequence numbers for the whole set and returns a
// warning. Fails if neither UID nor sequence number is available for any
// message.
func FromEmailMessages(msgs []UIDOf, mailbox string) (MessageSet, []string, error) {
	if len(msgs) == 0 {
		return MessageSet{}, nil, ierr.Configuration("message set requires at least one message")
	}
	uids := make([]uint32, 0, len(msgs))
	allHaveUID := true
	for _, m := range msgs {
		if m.MessageUID() == 0 {
			allHaveUID = false
			break
		}
		uids = append(uids, m.MessageUID())
	}
	if allHaveUID {
		s, err := fromIDs(uids, true, mailbox)
		return s, nil, err
	}

	seqs := make([]uint32, 0, len(msgs))
	for _, m := range msgs {
		if m.MessageSeqNum() == 0 {
			return MessageSet{}, nil, ierr.Configuration("message has neither UID nor sequence number")
		}
		seqs = append(seqs, m.MessageSeqNum())
	}
	s, err := fromIDs(seqs, false, mailbox)
	return s, []string{"falling back to sequence numbers: not every message carried a UID"}, err
}

// Parse builds a MessageSet from a raw comma-separated wire string
// (e.g. "1:3,5,10:*"), validating each component independently. Unlike the
// typed constructors, Parse does not re-sort/re-optimize across components
// unless Normalize() is called afterward — matching the original's
// behavior that string-input constructors parse components independently.
func Parse(raw string, isUID bool, mailbox string) (MessageSet, error) {
	if strings.TrimSpace(raw) == "" {
		return MessageSet{}, ierr.Configuration("message set string must not be empty")
	}
	parts := strings.Split(raw, ",")
	for _, p := range parts {
		if err := validateComponent(p); err != nil {
			return MessageSet{}, err
		}
	}
	return newMessageSet(raw, isUID, mailbox), nil
}

func validateComponent(c string) error {
	c = strings.TrimSpace(c)
	if c == "" {
		return ierr.Configuration("empty message set component")
	}
	if !strings.Contains(c, ":") {
		if !isPositiveInt(c) {
			return ierr.Configuration(fmt.Sprintf("invalid message set component %q", c))
		}
		return nil
	}
	segs := strings.SplitN(c, ":", 2)
	if len(segs) != 2 {
		return ierr.Configuration(fmt.Sprintf("invalid range component %q", c))
	}
	if !isPositiveInt(segs[0]) {
		return ierr.Configuration(fmt.Sprintf("invalid range start %q", c))
	}
	if segs[1] == Star {
		return nil
	}
	if !isPositiveInt(segs[1]) {
		return ierr.Configuration(fmt.Sprintf("invalid range end %q (must be positive integer or '*')", c))
	}
	start, _ := strconv.ParseUint(segs[0], 10, 32)
	end, _ := strconv.ParseUint(segs[1], 10, 32)
	if start > end {
		return ierr.Configuration(fmt.Sprintf("range start > end in %q", c))
	}
	return nil
}

func isPositiveInt(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	return err == nil && n > 0
}

// optimizeIDString collapses a sorted, distinct slice of ids into runs:
// "1,2,3,5" -> "1:3,5". Mirrors _optimize_id_string in the original source.
func optimizeIDString(sorted []uint32) string {
	if len(sorted) == 0 {
		return ""
	}
	var out []string
	runStart := sorted[0]
	prev := sorted[0]
	flush := func(end uint32) {
		if runStart == end {
			out = append(out, strconv.FormatUint(uint64(runStart), 10))
		} else {
			out = append(out, fmt.Sprintf("%d:%d", runStart, end))
		}
	}
	for _, id := range sorted[1:] {
		if id == prev+1 {
			prev = id
			continue
		}
		flush(prev)
		runStart = id
		prev = id
	}
	flush(prev)
	return strings.Join(out, ",")
}

// Normalize re-sorts and re-collapses the whole set across all components,
// expanding ranges to their individual ids first (open ranges are kept
// as-is since they cannot be expanded). This is the idempotent operation
// invariant 1 in spec.md §8 requires.
func (s MessageSet) Normalize() (MessageSet, error) {
	if s.hasOpenRng {
		// An open range can't be expanded; normalize only the closed part
		// and keep the open range as its own trailing component.
		closed := optimizeIDString(s.parsedIDsClosedOnly())
		var openParts []string
		for _, r := range s.idRanges {
			if r.Open {
				openParts = append(openParts, r.String())
			}
		}
		parts := []string{}
		if closed != "" {
			parts = append(parts, closed)
		}
		parts = append(parts, openParts...)
		return newMessageSet(strings.Join(parts, ","), s.isUID, s.mailbox), nil
	}
	return newMessageSet(optimizeIDString(s.parsedIDs), s.isUID, s.mailbox), nil
}

func (s MessageSet) parsedIDsClosedOnly() []uint32 {
	out := make([]uint32, 0, len(s.parsedIDs))
	for _, r := range s.idRanges {
		if r.Open {
			continue
		}
		for id := r.Start; id <= r.End; id++ {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParsedIDs returns the fully-expanded individual id list (closed ranges
// expanded; open ranges contribute no ids).
func (s MessageSet) ParsedIDs() []uint32 {
	out := make([]uint32, len(s.parsedIDs))
	copy(out, s.parsedIDs)
	return out
}

// IDRanges returns the parsed range components in the order they appear in
// the canonical string.
func (s MessageSet) IDRanges() []Range {
	out := make([]Range, len(s.idRanges))
	copy(out, s.idRanges)
	return out
}

// EstimatedCount sums individual ids plus the span of each numeric range;
// an open range contributes 1 as a conservative lower bound.
func (s MessageSet) EstimatedCount() int {
	return s.estCount
}

// HasOpenRange reports whether any component ends in "*".
func (s MessageSet) HasOpenRange() bool {
	return s.hasOpenRng
}

// IsSingleMessage reports whether the set denotes exactly one message id.
func (s MessageSet) IsSingleMessage() bool {
	return len(s.idRanges) == 1 && !s.idRanges[0].Open && s.idRanges[0].Start == s.idRanges[0].End
}

// IsRangeOnly reports whether every component is a range (no bare ids).
func (s MessageSet) IsRangeOnly() bool {
	if len(s.idRanges) == 0 {
		return false
	}
	for _, r := range s.idRanges {
		if !r.Open && r.Start == r.End {
			return false
		}
	}
	return true
}

// GetFirstID returns the first concrete id, and false if the set is empty.
func (s MessageSet) GetFirstID() (uint32, bool) {
	if len(s.parsedIDs) == 0 {
		return 0, false
	}
	return s.parsedIDs[0], true
}

// GetLastID returns the last concrete id; for a set with an open range it
// returns false, since the true last id is unknown to the client (mirrors
// the original's `last_id == None` for open ranges).
func (s MessageSet) GetLastID() (uint32, bool) {
	if s.hasOpenRng {
		return 0, false
	}
	if len(s.parsedIDs) == 0 {
		return 0, false
	}
	return s.parsedIDs[len(s.parsedIDs)-1], true
}

// Contains reports membership: walks individual ids, then ranges; "*" in a
// range matches any id >= the range start.
func (s MessageSet) Contains(id uint32) bool {
	for _, r := range s.idRanges {
		if r.Open {
			if id >= r.Start {
				return true
			}
			continue
		}
		if id >= r.Start && id <= r.End {
			return true
		}
	}
	return false
}

// Len returns EstimatedCount, satisfying the original's __len__ contract.
func (s MessageSet) Len() int { return s.EstimatedCount() }

// Summary is the Go analogue of the original's to_dict(): a snapshot of the
// derived views, useful for logging/metadata without exposing mutable
// internals.
type Summary struct {
	Raw            string
	IsUID          bool
	Mailbox        string
	EstimatedCount int
	HasOpenRange   bool
	IsSingle       bool
	RangeCount     int
}

func (s MessageSet) ToSummary() Summary {
	return Summary{
		Raw:            s.raw,
		IsUID:          s.isUID,
		Mailbox:        s.mailbox,
		EstimatedCount: s.estCount,
		HasOpenRange:   s.hasOpenRng,
		IsSingle:       s.IsSingleMessage(),
		RangeCount:     len(s.idRanges),
	}
}
