package messageset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnion(t *testing.T) {
	a, _ := FromUIDs([]uint32{1, 2}, "INBOX")
	b, _ := FromUIDs([]uint32{3, 4}, "INBOX")

	u, warnings, err := a.Union(b)
	assert.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "1:2,3:4", u.String())
}

func TestUnion_WarnsOnMailboxMismatch(t *testing.T) {
	a, _ := FromUIDs([]uint32{1}, "INBOX")
	b, _ := FromUIDs([]uint32{2}, "Archive")

	_, warnings, err := a.Union(b)
	assert.NoError(t, err)
	assert.NotEmpty(t, warnings)
}

func TestUnion_RejectsMixedAddressing(t *testing.T) {
	uidSet, _ := FromUIDs([]uint32{1}, "")
	seqSet, _, _ := FromSequenceNumbers([]uint32{1}, "")

	_, _, err := uidSet.Union(seqSet)
	assert.Error(t, err)
}

func TestIntersection(t *testing.T) {
	a, _ := FromUIDs([]uint32{1, 2, 3, 4}, "")
	b, _ := FromUIDs([]uint32{3, 4, 5}, "")

	i, err := a.Intersection(b)
	assert.NoError(t, err)
	assert.Equal(t, "3:4", i.String())
}

func TestIntersection_EmptyResultErrors(t *testing.T) {
	a, _ := FromUIDs([]uint32{1, 2}, "")
	b, _ := FromUIDs([]uint32{3, 4}, "")

	_, err := a.Intersection(b)
	assert.Error(t, err)
}

func TestIntersection_RejectsOpenRanges(t *testing.T) {
	a, _ := Parse("1:*", true, "")
	b, _ := FromUIDs([]uint32{1}, "")

	_, err := a.Intersection(b)
	assert.Error(t, err)
}

func TestSubtract(t *testing.T) {
	a, _ := FromUIDs([]uint32{1, 2, 3, 4}, "")
	b, _ := FromUIDs([]uint32{2, 4}, "")

	s, err := a.Subtract(b)
	assert.NoError(t, err)
	assert.Equal(t, "1,3", s.String())
}

func TestMerge(t *testing.T) {
	a, _ := FromUIDs([]uint32{1}, "")
	b, _ := FromUIDs([]uint32{2}, "")
	c, _ := FromUIDs([]uint32{3}, "")

	m, err := Merge(a, b, c)
	assert.NoError(t, err)
	assert.Equal(t, "1,2,3", m.String())
}

func TestMerge_RejectsMixedAddressing(t *testing.T) {
	uidSet, _ := FromUIDs([]uint32{1}, "")
	seqSet, _, _ := FromSequenceNumbers([]uint32{1}, "")

	_, err := Merge(uidSet, seqSet)
	assert.Error(t, err)
}

func TestIterBatches_SplitsIndividualIDs(t *testing.T) {
	set, _ := FromUIDs([]uint32{1, 3, 5, 7, 9}, "")

	it, err := set.IterBatches(2)
	assert.NoError(t, err)
	assert.Empty(t, it.Warning())

	var batches []string
	for {
		b, ok := it.Next()
		if !ok {
			break
		}
		batches = append(batches, b.String())
	}
	assert.Equal(t, []string{"1,3", "5,7", "9"}, batches)
}

func TestIterBatches_RangeOnlyYieldsWholeSetOnce(t *testing.T) {
	set, _ := Parse("1:100", true, "")

	it, err := set.IterBatches(10)
	assert.NoError(t, err)
	assert.NotEmpty(t, it.Warning())

	b, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, "1:100", b.String())

	_, ok = it.Next()
	assert.False(t, ok)
}

func TestSplitBySize(t *testing.T) {
	set, _ := FromUIDs([]uint32{1, 3, 5}, "")

	batches, warnings, err := set.SplitBySize(2)
	assert.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Len(t, batches, 2)
	assert.Equal(t, "1,3", batches[0].String())
	assert.Equal(t, "5", batches[1].String())
}

func TestIterBatches_RejectsNonPositiveSize(t *testing.T) {
	set, _ := FromUIDs([]uint32{1}, "")
	_, err := set.IterBatches(0)
	assert.Error(t, err)
}
