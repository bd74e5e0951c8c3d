package validation

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minichat-backend/internal/errs"
)

func TestParseLimitAbsentUsesDefault(t *testing.T) {
	v, err := ParseLimit("", false)
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}

func TestParseLimitAcceptsWholeRange(t *testing.T) {
	for i := MinLimit; i <= MaxLimit; i++ {
		v, err := ParseLimit(strconv.Itoa(i), true)
		require.NoError(t, err, "limit %d", i)
		assert.Equal(t, i, v)
	}
}

func TestParseLimitTrimsWhitespace(t *testing.T) {
	v, err := ParseLimit(" 10 ", true)
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}

func TestParseLimitRejects(t *testing.T) {
	tests := []struct {
		raw     string
		wantMsg string
	}{
		{"str", "Query parameter 'limit' must be an integer."},
		{"not_num", "Query parameter 'limit' must be an integer."},
		{"", "Query parameter 'limit' must be an integer."},
		{"1.5", "Query parameter 'limit' must be an integer."},
		{"0", "Query parameter 'limit' must be in range 1 <= limit <= 100."},
		{"101", "Query parameter 'limit' must be in range 1 <= limit <= 100."},
		{"-5", "Query parameter 'limit' must be in range 1 <= limit <= 100."},
		{"99999999999999999999999", "Query parameter 'limit' must be in range 1 <= limit <= 100."},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := ParseLimit(tt.raw, true)
			require.ErrorIs(t, err, errs.ErrInvalidParameter)

			var fe *errs.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "limit", fe.Field)
			assert.Equal(t, tt.wantMsg, fe.Message)
		})
	}
}
