package devserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/warga-one/wargaone-go/internal/config"
	"github.com/warga-one/wargaone-go/internal/session"
)

type handlers struct {
	cfg      config.Config
	identity *Identity
	logger   *slog.Logger
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

// Register handles account onboarding.
func (h *handlers) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.identity.Register(c.UserContext(), req.Name, req.Email, req.Phone, req.PIN)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(user.Profile())
}

type loginRequest struct {
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

type loginResponse struct {
	User  *session.UserProfile `json:"user,omitempty"`
	Token string               `json:"token"`
}

// Login verifies credentials and issues a token. With DEV_OMIT_USER=1 the
// user object is left out of the response so clients can exercise their
// degraded-profile fallback.
func (h *handlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.identity.Authenticate(c.UserContext(), req.Phone, req.PIN)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid phone or PIN")
	}
	token, err := IssueToken(user, []byte(h.cfg.JWTSecret), h.cfg.TokenTTL)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	resp := loginResponse{Token: token}
	if !h.cfg.OmitLoginUser {
		profile := user.Profile()
		resp.User = &profile
	}
	h.logger.Info("login", "user_id", user.ID, "omit_user", h.cfg.OmitLoginUser)
	return c.Status(http.StatusOK).JSON(resp)
}

// RequireToken guards protected routes with bearer-token verification,
// including the token-version check that makes logout revoke outstanding
// tokens.
func (h *handlers) RequireToken(c *fiber.Ctx) error {
	authz := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
	}
	tokenStr := strings.TrimSpace(authz[len("Bearer "):])
	sub, ver, err := VerifyToken(tokenStr, []byte(h.cfg.JWTSecret))
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid token")
	}

	user, err := h.identity.repo.FindByID(c.UserContext(), sub)
	if err != nil || user.TokenVersion != ver {
		return fiber.NewError(http.StatusUnauthorized, "token invalidated")
	}

	c.Locals("user_id", sub)
	return c.Next()
}

// Me returns the authoritative profile for the current token.
func (h *handlers) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	user, err := h.identity.repo.FindByID(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "user not found")
	}
	return c.Status(http.StatusOK).JSON(user.Profile())
}

type kycRequest struct {
	Level int `json:"level"`
}

// SubmitKYC files a verification request; the stub verifies immediately.
func (h *handlers) SubmitKYC(c *fiber.Ctx) error {
	var req kycRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)
	user, err := h.identity.SubmitKYC(c.UserContext(), uid, req.Level)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(user.Profile())
}

// Logout revokes outstanding tokens by bumping the token version.
func (h *handlers) Logout(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if err := h.identity.RevokeTokens(c.UserContext(), uid); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}
