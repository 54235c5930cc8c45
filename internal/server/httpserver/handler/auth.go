package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// Grant labels for the tokens-issued metric.
const (
	grantPassword = "password"
	grantRefresh  = "refresh_token"
)

func (h *Handler) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	session := h.refreshSession(c)
	if old, _ := session.Values[refreshKey].(string); old != "" {
		h.grants.Revoke(old)
	}
	session.Values[refreshKey] = h.grants.Issue(user.ID)
	if err := h.saveSession(c, session, false); err != nil {
		return
	}

	token, err := h.issuer.Issue(user.ID)
	if err != nil {
		h.logger.Error("failed to sign access token", "error", err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.metrics.ObserveTokenIssued(grantPassword)
	h.logger.Info("user logged in", "user_id", user.ID)
	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, Message: "Login successful"})
}

func (h *Handler) handleRegister(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := make(map[string]string, len(body))
	for k, v := range body {
		if s, ok := v.(string); ok {
			fields[k] = strings.TrimSpace(s)
		}
	}
	email, password := fields["email"], fields["password"]
	delete(fields, "password")
	delete(fields, "email")

	switch {
	case email == "" || password == "":
		respondError(c, http.StatusBadRequest, "Email and password are required")
		return
	case !strings.Contains(email, "@"):
		respondError(c, http.StatusBadRequest, "Invalid email address")
		return
	}

	user, err := h.users.Create(email, password, fields)
	if errors.Is(err, ErrUserExists) {
		respondError(c, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		h.logger.Error("failed to create user", "error", err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, MessageResponse{Message: "Registration successful"})
}

// handleRefresh exchanges the refresh cookie for a new access token and
// rotates the cookie.
func (h *Handler) handleRefresh(c *gin.Context) {
	session := h.refreshSession(c)
	old, _ := session.Values[refreshKey].(string)
	if old == "" {
		respondError(c, http.StatusUnauthorized, "Refresh token missing")
		return
	}

	next, userID, ok := h.grants.Rotate(old)
	if ok {
		if _, exists := h.users.Get(userID); !exists {
			h.grants.Revoke(next)
			ok = false
		}
	}
	if !ok {
		delete(session.Values, refreshKey)
		if err := h.saveSession(c, session, true); err != nil {
			return
		}
		respondError(c, http.StatusUnauthorized, "Refresh token invalid or expired")
		return
	}

	session.Values[refreshKey] = next
	if err := h.saveSession(c, session, false); err != nil {
		return
	}

	token, err := h.issuer.Issue(userID)
	if err != nil {
		h.logger.Error("failed to sign access token", "error", err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.metrics.ObserveTokenIssued(grantRefresh)
	c.JSON(http.StatusOK, TokenResponse{AccessToken: token})
}

func (h *Handler) handleLogout(c *gin.Context) {
	session := h.refreshSession(c)
	if rid, _ := session.Values[refreshKey].(string); rid != "" {
		h.grants.Revoke(rid)
	}
	delete(session.Values, refreshKey)
	if err := h.saveSession(c, session, true); err != nil {
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}

// refreshSession returns the cookie session. A cookie that fails to decode
// (tampered, expired or signed with another key) yields an empty session.
func (h *Handler) refreshSession(c *gin.Context) *sessions.Session {
	session, err := h.cookies.Get(c.Request, h.cfg.CookieName)
	if err != nil {
		h.logger.Debug("discarding unreadable refresh cookie", "error", err)
		session = sessions.NewSession(h.cookies, h.cfg.CookieName)
	}
	return session
}

func (h *Handler) saveSession(c *gin.Context, session *sessions.Session, expire bool) error {
	session.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(h.cfg.RefreshTTL / time.Second),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if expire {
		session.Options.MaxAge = -1
	}
	if err := session.Save(c.Request, c.Writer); err != nil {
		h.logger.Error("failed to write refresh cookie", "error", err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return err
	}
	return nil
}
