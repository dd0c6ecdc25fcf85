package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestParamsFromToken_AllFieldsPresent(t *testing.T) {
	token := (&oauth2.Token{AccessToken: "tok"}).WithExtra(map[string]any{
		"scope":      "read_user",
		"id_token":   "header.payload.sig",
		"expires_in": float64(7200),
	})

	params := ParamsFromToken(token)

	assert.Equal(t, "read_user", params.Scope)
	assert.Equal(t, "header.payload.sig", params.IDToken)
	require.NotNil(t, params.ExpiresIn)
	assert.Equal(t, 7200, *params.ExpiresIn)
}

func TestParamsFromToken_AbsentFieldsStayUnset(t *testing.T) {
	params := ParamsFromToken(&oauth2.Token{AccessToken: "tok"})

	assert.Empty(t, params.Scope)
	assert.Empty(t, params.IDToken)
	assert.Nil(t, params.ExpiresIn, "unreported expiry must not become zero")
}

func TestParamsFromToken_ExpiresAsString(t *testing.T) {
	// Some token endpoints report expires_in as a quoted number.
	token := (&oauth2.Token{}).WithExtra(map[string]any{
		"expires_in": "3600",
	})

	params := ParamsFromToken(token)

	require.NotNil(t, params.ExpiresIn)
	assert.Equal(t, 3600, *params.ExpiresIn)
}

func TestParamsFromToken_UnparseableExpiresIgnored(t *testing.T) {
	token := (&oauth2.Token{}).WithExtra(map[string]any{
		"expires_in": "soon",
	})

	assert.Nil(t, ParamsFromToken(token).ExpiresIn)
}
