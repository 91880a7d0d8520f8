package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentity(t *testing.T) {
	id, err := NewIdentity("  ada@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", id.Handle)
	assert.True(t, id.Authenticated())

	_, err = NewIdentity(" ")
	assert.ErrorIs(t, err, ErrHandleEmpty)
	_, err = NewIdentity(strings.Repeat("x", MaxHandleLen+1))
	assert.ErrorIs(t, err, ErrHandleTooLong)

	assert.False(t, Identity{}.Authenticated())
	assert.Equal(t, "anonymous", Identity{}.String())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("signaling")
	require.NoError(t, err)
	assert.Equal(t, ModeSignaling, m)
	_, err = ParseMode("chat")
	assert.Error(t, err)
}

func TestValidateDocumentID(t *testing.T) {
	assert.NoError(t, ValidateDocumentID("doc1"))
	assert.ErrorIs(t, ValidateDocumentID(""), ErrDocumentID)
	assert.ErrorIs(t, ValidateDocumentID(strings.Repeat("d", MaxDocumentIDLen+1)), ErrDocumentID)
}
