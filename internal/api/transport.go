package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/warga-one/wargaone-go/internal/session"
)

const bearerPrefix = "Bearer "

// sessionTransport decorates every outbound request with the stored bearer
// token and reacts to server-declared session invalidation.
//
// The token is read from the store per request, never cached, so a token
// cleared mid-session stops being sent on the very next call. A 401 clears
// the persisted session only when the failing request actually carried a
// bearer header; public endpoints that reject an anonymous call must not log
// the device out. The transport never touches in-memory auth state; that
// converges on the next Manager.Refresh.
type sessionTransport struct {
	store  session.Store
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.store.Token(req.Context())
	if err != nil {
		t.logger.Warn("read token for request", "error", err)
		token = ""
	}
	if token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", bearerPrefix+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && strings.HasPrefix(req.Header.Get("Authorization"), bearerPrefix) {
		if err := t.store.Clear(req.Context()); err != nil {
			t.logger.Error("clear session after 401", "error", err)
		} else {
			t.logger.Info("server invalidated session, storage cleared", "path", req.URL.Path)
		}
	}

	return resp, nil
}
