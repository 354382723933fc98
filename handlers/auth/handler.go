package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/strmhub-io/catalog/services/auth"
)

type Handler struct {
	ctrl *auth.Controller
}

// RegisterHandler wires the device authorization flow and session endpoints.
// With no upstream client configured the controller is nil and the routes
// are not registered.
func RegisterHandler(r *gin.Engine, ctrl *auth.Controller) {
	if ctrl == nil {
		return
	}
	h := &Handler{
		ctrl: ctrl,
	}
	r.POST("/api/auth/device", h.start)
	r.GET("/api/auth/device", h.status)
	r.DELETE("/api/auth/device", h.cancel)
	r.GET("/api/auth/user", h.user)
	r.DELETE("/api/auth/session", h.logout)
}

func (s *Handler) start(c *gin.Context) {
	dc, err := s.ctrl.Start(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("failed to start device flow")
		c.JSON(http.StatusBadGateway, gin.H{"error": "device flow unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_code":        dc.UserCode,
		"verification_url": dc.VerificationURL,
		"expires_in":       dc.ExpiresIn,
		"interval":         dc.Interval,
	})
}

func (s *Handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.ctrl.Status())
}

func (s *Handler) cancel(c *gin.Context) {
	s.ctrl.Cancel()
	c.JSON(http.StatusOK, s.ctrl.Status())
}

func (s *Handler) user(c *gin.Context) {
	// Refreshes the session ahead of expiry and drops it when the
	// refresh token turns out to be dead.
	if _, err := s.ctrl.ValidAccessToken(c.Request.Context()); err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		log.WithError(err).Error("failed to refresh session")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}
	sess, err := s.ctrl.Session(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("failed to load session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	resp := gin.H{}
	if sess.Username != nil {
		resp["username"] = *sess.Username
	}
	if sess.UserSlug != nil {
		resp["user_slug"] = *sess.UserSlug
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Handler) logout(c *gin.Context) {
	if err := s.ctrl.Logout(c.Request.Context()); err != nil {
		log.WithError(err).Error("failed to logout")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
