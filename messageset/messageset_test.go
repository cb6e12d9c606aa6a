package messageset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromUIDs_SortsDedupesAndCollapses(t *testing.T) {
	// Arrange
	ids := []uint32{5, 1, 2, 3, 3, 10}

	// Act
	set, err := FromUIDs(ids, "INBOX")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "1:3,5,10", set.String())
	assert.True(t, set.IsUID())
}

func TestFromUIDs_RejectsEmptyAndZero(t *testing.T) {
	_, err := FromUIDs(nil, "")
	assert.Error(t, err)

	_, err = FromUIDs([]uint32{0, 1}, "")
	assert.Error(t, err)
}

func TestFromSequenceNumbers_WarnsPreferUID(t *testing.T) {
	set, warnings, err := FromSequenceNumbers([]uint32{1, 2}, "INBOX")

	assert.NoError(t, err)
	assert.False(t, set.IsUID())
	assert.NotEmpty(t, warnings)
}

func TestFromRange(t *testing.T) {
	set, err := FromRange(1, "10", true, "INBOX")
	assert.NoError(t, err)
	assert.Equal(t, "1:10", set.String())

	open, err := FromRange(5, Star, true, "INBOX")
	assert.NoError(t, err)
	assert.Equal(t, "5:*", open.String())

	_, err = FromRange(0, "5", true, "")
	assert.Error(t, err)

	_, err = FromRange(10, "5", true, "")
	assert.Error(t, err)
}

func TestParse_ValidatesEachComponent(t *testing.T) {
	_, err := Parse("1,2:5,10:*", false, "")
	assert.NoError(t, err)

	_, err = Parse("1,,5", false, "")
	assert.Error(t, err)

	_, err = Parse("5:2", false, "")
	assert.Error(t, err)

	_, err = Parse("abc", false, "")
	assert.Error(t, err)
}

func TestNormalize_IsIdempotentAndPreservesMembership(t *testing.T) {
	set, err := Parse("3,1,2,10,5", true, "")
	assert.NoError(t, err)

	normalized, err := set.Normalize()
	assert.NoError(t, err)
	assert.Equal(t, "1:3,5,10", normalized.String())

	twice, err := normalized.Normalize()
	assert.NoError(t, err)
	assert.Equal(t, normalized.String(), twice.String())

	for _, id := range []uint32{1, 2, 3, 5, 10} {
		assert.True(t, normalized.Contains(id))
	}
	assert.False(t, normalized.Contains(4))
}

func TestNormalize_KeepsOpenRangeTrailing(t *testing.T) {
	set, err := Parse("5,3,10:*", true, "")
	assert.NoError(t, err)

	normalized, err := set.Normalize()
	assert.NoError(t, err)
	assert.Equal(t, "3,5,10:*", normalized.String())
	assert.True(t, normalized.HasOpenRange())
}

func TestEstimatedCount(t *testing.T) {
	set, err := Parse("1:5,10", true, "")
	assert.NoError(t, err)
	assert.Equal(t, 6, set.EstimatedCount())
}

func TestIsSingleMessage(t *testing.T) {
	single, _ := Parse("7", true, "")
	assert.True(t, single.IsSingleMessage())

	multi, _ := Parse("1:5", true, "")
	assert.False(t, multi.IsSingleMessage())
}

func TestIsRangeOnly(t *testing.T) {
	rangeOnly, _ := Parse("1:5,10:20", true, "")
	assert.True(t, rangeOnly.IsRangeOnly())

	mixed, _ := Parse("1:5,7", true, "")
	assert.False(t, mixed.IsRangeOnly())
}

func TestGetFirstAndLastID(t *testing.T) {
	set, _ := Parse("3,1,5", true, "")
	first, ok := set.GetFirstID()
	assert.True(t, ok)
	assert.Equal(t, uint32(1), first)

	last, ok := set.GetLastID()
	assert.True(t, ok)
	assert.Equal(t, uint32(5), last)

	open, _ := Parse("1:*", true, "")
	_, ok = open.GetLastID()
	assert.False(t, ok)
}

type fakeUIDOf struct {
	uid, seq uint32
}

func (f fakeUIDOf) MessageUID() uint32    { return f.uid }
func (f fakeUIDOf) MessageSeqNum() uint32 { return f.seq }

func TestFromEmailMessages_PrefersUIDFallsBackToSeq(t *testing.T) {
	withUIDs := []UIDOf{fakeUIDOf{uid: 10, seq: 1}, fakeUIDOf{uid: 20, seq: 2}}
	set, warnings, err := FromEmailMessages(withUIDs, "INBOX")
	assert.NoError(t, err)
	assert.True(t, set.IsUID())
	assert.Empty(t, warnings)

	missingUID := []UIDOf{fakeUIDOf{uid: 10, seq: 1}, fakeUIDOf{uid: 0, seq: 2}}
	set, warnings, err = FromEmailMessages(missingUID, "INBOX")
	assert.NoError(t, err)
	assert.False(t, set.IsUID())
	assert.NotEmpty(t, warnings)

	neither := []UIDOf{fakeUIDOf{uid: 0, seq: 0}}
	_, _, err = FromEmailMessages(neither, "INBOX")
	assert.Error(t, err)
}
