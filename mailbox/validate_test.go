package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMailboxName(t *testing.T) {
	assert.NoError(t, validateMailboxName("INBOX"))
	assert.NoError(t, validateMailboxName("Archive/2024"))

	assert.Error(t, validateMailboxName(""))
	assert.Error(t, validateMailboxName("a\x00b"))
	assert.Error(t, validateMailboxName("../etc"))
}

func TestIsProtected(t *testing.T) {
	assert.True(t, isProtected("INBOX"))
	assert.True(t, isProtected("inbox"))
	assert.False(t, isProtected("Archive"))
}
