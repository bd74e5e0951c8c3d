package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minichat-backend/internal/errs"
	"minichat-backend/internal/models"
)

func TestValidatorChatTitle(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		title     string
		wantErr   string
		wantTitle string
	}{
		{name: "valid", title: "Чат 1", wantTitle: "Чат 1"},
		{name: "trimmed", title: " Чат 1 ", wantTitle: "Чат 1"},
		{name: "exactly 200 runes", title: strings.Repeat("ж", 200), wantTitle: strings.Repeat("ж", 200)},
		{name: "empty", title: "", wantErr: "This field may not be blank."},
		{name: "whitespace only", title: " \t\n ", wantErr: "This field may not be blank."},
		{name: "too long", title: strings.Repeat("x", 201), wantErr: "Ensure this field has no more than 200 characters."},
		{name: "null character", title: "Чат\x001", wantErr: "Null characters are not allowed."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &models.CreateChatRequest{Title: tt.title}
			err := v.Struct(req)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantTitle, req.Title)
				return
			}
			require.ErrorIs(t, err, errs.ErrValidation)
			var fe *errs.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "title", fe.Field)
			assert.Equal(t, tt.wantErr, fe.Message)
		})
	}
}

func TestValidatorMessageText(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(&models.CreateMessageRequest{Text: strings.Repeat("a", 5000)}))

	err := v.Struct(&models.CreateMessageRequest{Text: strings.Repeat("a", 5001)})
	require.ErrorIs(t, err, errs.ErrValidation)
	var fe *errs.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "text", fe.Field)

	err = v.Struct(&models.CreateMessageRequest{Text: "   "})
	assert.ErrorIs(t, err, errs.ErrValidation)

	err = v.Struct(&models.CreateMessageRequest{Text: "hello\u0000world"})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "text", fe.Field)
	assert.Equal(t, "Null characters are not allowed.", fe.Message)
}
