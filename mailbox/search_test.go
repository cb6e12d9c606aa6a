package mailbox

import (
	"testing"

	imap "github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"

	"github.com/sageimap/goimap/searchcriteria"
)

func TestToIMAPCriteria_Leaf(t *testing.T) {
	crit, err := toIMAPCriteria(searchcriteria.Seen)
	assert.NoError(t, err)
	assert.Equal(t, []string{imap.SeenFlag}, crit.WithFlags)
}

func TestToIMAPCriteria_And(t *testing.T) {
	c := searchcriteria.And(searchcriteria.Seen, searchcriteria.FromAddress("a@b.com"))
	crit, err := toIMAPCriteria(c)
	assert.NoError(t, err)
	assert.Equal(t, []string{imap.SeenFlag}, crit.WithFlags)
	assert.Equal(t, []string{"a@b.com"}, crit.Header["From"])
}

func TestToIMAPCriteria_Or(t *testing.T) {
	c := searchcriteria.Or(searchcriteria.Seen, searchcriteria.Unseen)
	crit, err := toIMAPCriteria(c)
	assert.NoError(t, err)
	assert.Len(t, crit.Or, 1)
	assert.Equal(t, []string{imap.SeenFlag}, crit.Or[0][0].WithFlags)
	assert.Equal(t, []string{imap.SeenFlag}, crit.Or[0][1].WithoutFlags)
}

func TestToIMAPCriteria_Not(t *testing.T) {
	c := searchcriteria.Not(searchcriteria.Deleted)
	crit, err := toIMAPCriteria(c)
	assert.NoError(t, err)
	assert.Len(t, crit.Not, 1)
	assert.Equal(t, []string{imap.DeletedFlag}, crit.Not[0].WithFlags)
}

func TestToIMAPCriteria_Subject(t *testing.T) {
	c := searchcriteria.Subject("hello world")
	crit, err := toIMAPCriteria(c)
	assert.NoError(t, err)
	assert.Equal(t, []string{"hello world"}, crit.Header["Subject"])
}

func TestToIMAPCriteria_Since(t *testing.T) {
	c := searchcriteria.Since("01-Jan-2024")
	crit, err := toIMAPCriteria(c)
	assert.NoError(t, err)
	assert.Equal(t, 2024, crit.Since.Year())
}

func TestToIMAPCriteria_RejectsUnknownToken(t *testing.T) {
	_, err := toIMAPCriteria(searchcriteria.Criteria("BOGUS"))
	assert.Error(t, err)
}

func TestTokenize_HandlesQuotedSpaces(t *testing.T) {
	toks, err := tokenize(`FROM "a b c"`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"FROM", `"a b c"`}, toks)
}
