package google

import (
	"context"
	"testing"

	"auth-bridge/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresCredentials(t *testing.T) {
	cases := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"missing client id", Config{ClientSecret: "s", CallbackURL: "c"}, "clientId"},
		{"missing client secret", Config{ClientID: "i", CallbackURL: "c"}, "clientSecret"},
		{"missing callback url", Config{ClientID: "i", ClientSecret: "s"}, "callbackUrl"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Validation fails before discovery, so no network is touched.
			_, err := New(context.Background(), tc.cfg)
			var cfgErr *auth.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "google", cfgErr.Provider)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}
