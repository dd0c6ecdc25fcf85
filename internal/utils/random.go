package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomString returns n bytes of cryptographic randomness encoded as
// unpadded base64url, suitable for state tokens and PKCE verifiers.
func RandomString(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform entropy source is
		// broken; nothing sensible can continue.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
