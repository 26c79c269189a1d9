package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "missing", header: "", wantErr: ErrMissingToken},
		{name: "no scheme", header: "abc", wantErr: ErrMalformed},
		{name: "wrong scheme", header: "Basic abc", wantErr: ErrMalformed},
		{name: "empty token", header: "Bearer  ", wantErr: ErrMalformed},
		{name: "bearer", header: "Bearer s3cret", want: "s3cret"},
		{name: "lowercase scheme", header: "bearer s3cret", want: "s3cret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/activity", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			token, err := ExtractBearerToken(req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestSecretValidator(t *testing.T) {
	v := NewSecretValidator("s3cret")
	assert.NoError(t, v.Validate("s3cret"))
	assert.ErrorIs(t, v.Validate("nope"), ErrInvalidToken)

	empty := NewSecretValidator("")
	assert.ErrorIs(t, empty.Validate(""), ErrInvalidToken)
}
