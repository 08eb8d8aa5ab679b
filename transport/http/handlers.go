package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/portcullis-gate/portcullis/core"
	"github.com/portcullis-gate/portcullis/service"
)

// SessionCookie is the cookie carrying the session credential
const SessionCookie = "portcullis_session"

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService    *service.AuthService
	expectedDomain string
	cookieMaxAge   int
	secureCookie   bool
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, expectedDomain string, sessionTTL time.Duration, secureCookie bool) *AuthHandlers {
	return &AuthHandlers{
		authService:    authService,
		expectedDomain: expectedDomain,
		cookieMaxAge:   int(sessionTTL.Seconds()),
		secureCookie:   secureCookie,
	}
}

// domainFor returns the domain signed messages are checked against. The Host
// header is client-controlled, so it serves only as a fallback when no
// domain is configured.
func (h *AuthHandlers) domainFor(c *gin.Context) string {
	if h.expectedDomain != "" {
		return h.expectedDomain
	}
	return c.Request.Host
}

// Nonce handles the challenge request. The nonce is returned as plain text;
// the client embeds it in the message it asks the wallet to sign.
func (h *AuthHandlers) Nonce(c *gin.Context) {
	nonce, err := h.authService.IssueChallenge(c.Request.Context(), h.domainFor(c))
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to issue challenge")
		return
	}

	c.String(http.StatusOK, nonce)
}

// Verify handles the signed-message verification request. Every rejection
// maps to the same response body so callers cannot probe which check failed.
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		Message   string `json:"message" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	cred, err := h.authService.Authenticate(c.Request.Context(), req.Message, req.Signature, h.domainFor(c), time.Now())
	if err != nil {
		// A store outage is not a rejection; it must not look like one
		if errors.Is(err, core.ErrStoreOperationFailed) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		return
	}

	c.SetCookie(SessionCookie, cred, h.cookieMaxAge, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me reports the address of the current session, or an empty object when
// there is none. Idempotent; any number of collaborators may poll it.
func (h *AuthHandlers) Me(c *gin.Context) {
	cred, err := c.Cookie(SessionCookie)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	address, err := h.authService.CheckSession(c.Request.Context(), cred)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": address})
}

// Logout revokes the current session and clears the cookie. It has no
// failure mode: revocation problems are logged inside the service, and the
// client-side credential is cleared regardless.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if cred, err := c.Cookie(SessionCookie); err == nil {
		_ = h.authService.Logout(c.Request.Context(), cred)
	}

	c.SetCookie(SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Gated is a protected resource behind the session middleware
func (h *AuthHandlers) Gated(c *gin.Context) {
	address, exists := c.Get("userAddress")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authorized": true,
		"address":    address,
	})
}
