package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var b64 = base64.RawURLEncoding

// DecodeClaims extracts the payload of a compact JWT without verifying the
// signature. The result is display-only: it bootstraps a skeleton profile
// when the login response omits one and must never feed authorization
// decisions.
func DecodeClaims(token string) (map[string]any, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errors.New("invalid token format")
	}
	payload, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, errors.New("invalid payload encoding")
	}
	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, errors.New("invalid claims json")
	}
	return claims, nil
}

// ProfileFromToken builds a degraded profile from token claims. It fails when
// the subject claim is missing; everything else is best effort.
func ProfileFromToken(token string) (UserProfile, error) {
	claims, err := DecodeClaims(token)
	if err != nil {
		return UserProfile{}, err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return UserProfile{}, errors.New("token has no subject")
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	phone, _ := claims["phone"].(string)
	return UserProfile{ID: sub, Name: name, Email: email, Phone: phone}, nil
}
