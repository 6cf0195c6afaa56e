package api

import (
	"context"
	"net/http"

	"github.com/warga-one/wargaone-go/internal/session"
)

type loginRequest struct {
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

type loginResponse struct {
	User  *session.UserProfile `json:"user"`
	Token string               `json:"token"`
}

// LoginResult is the outcome of a login call. Degraded marks a profile
// decoded from the token payload because the response omitted the user
// object; such profiles are for display only.
type LoginResult struct {
	Profile  session.UserProfile
	Token    string
	Degraded bool
}

// Login exchanges credentials for a token and profile.
func (c *Client) Login(ctx context.Context, phone, pin string) (LoginResult, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Phone: phone, PIN: pin}, &resp); err != nil {
		return LoginResult{}, err
	}
	if resp.User != nil {
		return LoginResult{Profile: *resp.User, Token: resp.Token}, nil
	}
	profile, err := session.ProfileFromToken(resp.Token)
	if err != nil {
		return LoginResult{}, err
	}
	c.logger.Warn("login response omitted user, decoded degraded profile", "user_id", profile.ID)
	return LoginResult{Profile: profile, Token: resp.Token, Degraded: true}, nil
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

// Register creates an account and returns the stored profile.
func (c *Client) Register(ctx context.Context, name, email, phone, pin string) (session.UserProfile, error) {
	var profile session.UserProfile
	err := c.do(ctx, http.MethodPost, "/auth/register", registerRequest{Name: name, Email: email, Phone: phone, PIN: pin}, &profile)
	return profile, err
}

// FetchProfile loads the authoritative profile for the current token.
func (c *Client) FetchProfile(ctx context.Context) (session.UserProfile, error) {
	var profile session.UserProfile
	err := c.do(ctx, http.MethodGet, "/me", nil, &profile)
	return profile, err
}

type kycRequest struct {
	Level int `json:"level"`
}

// SubmitKYC files an identity verification request and returns the updated
// profile.
func (c *Client) SubmitKYC(ctx context.Context, level int) (session.UserProfile, error) {
	var profile session.UserProfile
	err := c.do(ctx, http.MethodPost, "/kyc/submit", kycRequest{Level: level}, &profile)
	return profile, err
}

// Logout revokes the token server-side. Callers treat failures as best
// effort; local state is cleared regardless through Manager.Logout.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}
