package pagination_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivaha-app/backend/internal/pagination"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	token := pagination.Encode(pagination.Cursor{LastUnix: at.UnixMilli(), ID: "abc"})

	decoded, err := pagination.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, at.UnixMilli(), decoded.LastUnix)
	assert.Equal(t, "abc", decoded.ID)
}

func TestDecodeEmptyTokenIsFirstPage(t *testing.T) {
	c, err := pagination.Decode("")
	require.NoError(t, err)
	assert.Zero(t, c.LastUnix)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := pagination.Decode("not base64!!")
	assert.Error(t, err)

	// valid base64 but not a cursor payload
	_, err = pagination.Decode("bm90IGpzb24=")
	assert.Error(t, err)
}

func TestNextTokenOnlyOnFullPage(t *testing.T) {
	at := time.Now()
	assert.Empty(t, pagination.NextToken(at, "id", 3, 10))
	assert.NotEmpty(t, pagination.NextToken(at, "id", 10, 10))
}
