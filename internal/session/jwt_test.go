package session

import (
	"encoding/json"
	"testing"
)

// makeToken builds a compact JWT with an arbitrary signature segment. The
// decoder never verifies, so the signature content does not matter.
func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	return b64.EncodeToString(header) + "." + b64.EncodeToString(payload) + "." + b64.EncodeToString([]byte("sig"))
}

func TestDecodeClaims(t *testing.T) {
	token := makeToken(t, map[string]any{"sub": "u-1", "phone": "+62811"})

	claims, err := DecodeClaims(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims["sub"] != "u-1" || claims["phone"] != "+62811" {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestDecodeClaimsRejectsMalformedTokens(t *testing.T) {
	cases := []string{
		"",
		"only-one-part",
		"a.b",
		"a.!!!.c",
		makeToken(t, nil)[:10] + ".x.y.z",
	}

	for _, token := range cases {
		if _, err := DecodeClaims(token); err == nil {
			t.Fatalf("expected error for token %q", token)
		}
	}
}

func TestProfileFromToken(t *testing.T) {
	token := makeToken(t, map[string]any{
		"sub":   "u-7",
		"name":  "Budi",
		"email": "budi@example.com",
		"phone": "+628123456789",
	})

	profile, err := ProfileFromToken(token)
	if err != nil {
		t.Fatalf("profile from token: %v", err)
	}
	if profile.ID != "u-7" || profile.Name != "Budi" || profile.Email != "budi@example.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestProfileFromTokenRequiresSubject(t *testing.T) {
	token := makeToken(t, map[string]any{"name": "no subject"})
	if _, err := ProfileFromToken(token); err == nil {
		t.Fatalf("expected error for token without subject")
	}
}
