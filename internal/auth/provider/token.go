package provider

import (
	"encoding/json"

	"auth-bridge/internal/auth"

	"golang.org/x/oauth2"
)

// ParamsFromToken extracts the handshake-session metadata the provider
// reported alongside the access token. Fields the provider did not
// report stay unset: an absent expires_in is not the same thing as a
// token that expires immediately.
func ParamsFromToken(token *oauth2.Token) auth.HandshakeParams {
	var params auth.HandshakeParams

	if scope, ok := token.Extra("scope").(string); ok && scope != "" {
		params.Scope = scope
	}
	if idToken, ok := token.Extra("id_token").(string); ok && idToken != "" {
		params.IDToken = idToken
	}
	if expires := expiresIn(token.Extra("expires_in")); expires != nil {
		params.ExpiresIn = expires
	}

	return params
}

// expiresIn copes with token endpoints that report expires_in as a
// JSON number or as a string.
func expiresIn(v any) *int {
	switch n := v.(type) {
	case float64:
		secs := int(n)
		return &secs
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return nil
		}
		secs := int(i)
		return &secs
	case string:
		i, err := json.Number(n).Int64()
		if err != nil {
			return nil
		}
		secs := int(i)
		return &secs
	case int:
		secs := n
		return &secs
	default:
		return nil
	}
}
