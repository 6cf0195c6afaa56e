package devserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var b64 = base64.RawURLEncoding

// IssueToken signs a compact HS256 JWT for the account. The payload carries
// the display claims the client's degraded-profile fallback reads.
func IssueToken(user User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := map[string]any{
		"sub":   user.ID,
		"name":  user.Name,
		"email": user.Email,
		"phone": user.Phone,
		"ver":   user.TokenVersion,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	h, err := json.Marshal(header)
	if err != nil {
		return "", err
	}
	c, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	unsigned := b64.EncodeToString(h) + "." + b64.EncodeToString(c)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(unsigned))
	return unsigned + "." + b64.EncodeToString(mac.Sum(nil)), nil
}

// VerifyToken checks the signature and expiry and returns the subject and
// token version.
func VerifyToken(token string, secret []byte) (string, int, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", 0, errors.New("invalid token format")
	}
	unsigned := parts[0] + "." + parts[1]
	sig, err := b64.DecodeString(parts[2])
	if err != nil {
		return "", 0, errors.New("invalid signature encoding")
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(unsigned))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", 0, errors.New("signature mismatch")
	}

	payload, err := b64.DecodeString(parts[1])
	if err != nil {
		return "", 0, errors.New("invalid payload encoding")
	}
	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", 0, errors.New("invalid claims json")
	}

	exp, _ := claims["exp"].(float64)
	if exp != 0 && time.Now().Unix() >= int64(exp) {
		return "", 0, errors.New("token expired")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", 0, errors.New("token has no subject")
	}
	verFloat, _ := claims["ver"].(float64)
	return sub, int(verFloat), nil
}
