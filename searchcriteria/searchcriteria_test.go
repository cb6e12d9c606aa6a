package searchcriteria

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLeafCriteria(t *testing.T) {
	assert.Equal(t, "ALL", string(All))
	assert.Equal(t, "SEEN", string(Seen))
	assert.Equal(t, "UNANSWERED", string(Unanswered))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "05-Mar-2024", FormatDate(d))
}

func TestFromAddress_QuotesValue(t *testing.T) {
	c := FromAddress("alice@example.com")
	assert.Equal(t, `FROM "alice@example.com"`, string(c))
}

func TestQuote_EscapesBackslashAndQuote(t *testing.T) {
	c := Subject(`say "hi" \ bye`)
	assert.Equal(t, `SUBJECT "say \"hi\" \\ bye"`, string(c))
}

func TestAnd(t *testing.T) {
	c := And(Seen, FromAddress("bob@example.com"))
	assert.Equal(t, `(SEEN FROM "bob@example.com")`, string(c))
}

func TestOr_Binary(t *testing.T) {
	c := Or(Seen, Unseen)
	assert.Equal(t, "(OR SEEN UNSEEN)", string(c))
}

func TestOr_NestsRightAssociatively(t *testing.T) {
	c := Or(Seen, Unseen, Flagged)
	assert.Equal(t, "(OR SEEN (OR UNSEEN FLAGGED))", string(c))
}

func TestOr_SingleAndEmpty(t *testing.T) {
	assert.Equal(t, Seen, Or(Seen))
	assert.Equal(t, All, Or())
}

func TestNot(t *testing.T) {
	c := Not(Deleted)
	assert.Equal(t, "NOT (DELETED)", string(c))
}

func TestRecent_DefaultsToSevenDays(t *testing.T) {
	c := Recent(0)
	expected := SinceTime(time.Now().AddDate(0, 0, -7))
	assert.Equal(t, expected, c)
}

func TestHeader(t *testing.T) {
	c := Header("X-Mailer", "Go")
	assert.Equal(t, `HEADER "X-Mailer" "Go"`, string(c))
}
