package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Transform combines an access token, a raw provider payload and the
// handshake parameters into the canonical response, deriving the
// stable internal identity along the way.
//
// Identity derivation: the id starts as the provider's native id; when
// the derived profile carries a primary email, the id becomes the part
// of that email before its first '@'. An email without '@' yields the
// whole address unchanged, so the derivation never fails and repeated
// logins by the same user always map to the same id.
func Transform(accessToken string, raw RawProfile, params HandshakeParams) Response {
	profile := Normalize(raw)

	if len(profile.Emails) > 0 {
		profile.Email = profile.Emails[0]
	}
	if params.IDToken != "" {
		mergeIDTokenClaims(&profile, params.IDToken)
	}

	id := profile.ID
	if profile.Email != "" {
		id = strings.SplitN(profile.Email, "@", 2)[0]
	}

	info := ProviderInfo{AccessToken: accessToken}
	if params.Scope != "" {
		info.Scope = params.Scope
	}
	if params.ExpiresIn != nil {
		info.ExpiresInSeconds = params.ExpiresIn
	}
	if params.IDToken != "" {
		info.IDToken = params.IDToken
	}

	return Response{
		ProviderInfo: info,
		Profile:      profile,
		Identity:     Identity{ID: id},
	}
}

// mergeIDTokenClaims fills still-absent profile fields from the id
// token's standard claims. The token is decoded without signature
// verification; adapters verify signatures where the protocol requires
// it before handing the token over.
func mergeIDTokenClaims(profile *Profile, rawIDToken string) {
	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
		jwt.RegisteredClaims
	}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(rawIDToken, &claims); err != nil {
		return
	}

	if profile.Email == "" && claims.Email != "" {
		profile.Email = claims.Email
	}
	if profile.DisplayName == "" && claims.Name != "" {
		profile.DisplayName = claims.Name
	}
	if len(profile.Photos) == 0 && claims.Picture != "" {
		profile.Photos = []Photo{{Value: claims.Picture}}
	}
}
