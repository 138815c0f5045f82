package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-reservation/internal/auth"
	"github.com/iliyamo/flight-reservation/internal/config"
	"github.com/iliyamo/flight-reservation/internal/session"
	"github.com/iliyamo/flight-reservation/internal/utils"
)

// AuthHandler serves account creation, login and logout.
type AuthHandler struct {
	Cfg      *config.Config
	Gate     *auth.Gate
	Sessions *session.Registry
}

func NewAuthHandler(cfg *config.Config, gate *auth.Gate, sessions *session.Registry) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Gate: gate, Sessions: sessions}
}

type registerRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	InitialBalance int    `json:"initial_balance"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account with an opening balance.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	err := h.Gate.CreateAccount(c.Request().Context(), req.Username, req.Password, req.InitialBalance)
	switch {
	case errors.Is(err, auth.ErrNegativeBalance):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "initial balance cannot be negative"})
	case errors.Is(err, auth.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "failed to create user " + req.Username})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user " + req.Username})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "created user " + req.Username})
}

// Login authenticates a user and opens a fresh session. A request that
// already carries a live session token is rejected.
func (h *AuthHandler) Login(c echo.Context) error {
	if h.liveSession(c) != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": auth.ErrAlreadyLoggedIn.Error()})
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	sess, err := h.Gate.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		// Unknown user and wrong password collapse into one answer.
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login failed"})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, sess.Username, h.Cfg.SessionTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue session token"})
	}
	h.Sessions.Put(tok.SID, sess)

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "logged in as " + sess.Username,
		"token":      tok.Token,
		"expires_at": tok.Exp.Unix(),
	})
}

// Logout drops the server-side session. The route sits behind the
// session middleware, so the sid is always present here.
func (h *AuthHandler) Logout(c echo.Context) error {
	if sid, ok := c.Get("sid").(string); ok {
		h.Sessions.Delete(sid)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "goodbye"})
}

// liveSession resolves the bearer token on an unauthenticated route.
// It only answers the "already logged in" check, so parse failures and
// unknown sids all read as no session.
func (h *AuthHandler) liveSession(c echo.Context) *session.Session {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.Cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil
	}
	sess, _ := h.Sessions.Get(sid)
	return sess
}
