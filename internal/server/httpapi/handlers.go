// Package httpapi exposes the sync authority over HTTP: push, pull, a public
// status probe, and photo upload presigning.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wh131462/stillalive/internal/logging"
	"github.com/wh131462/stillalive/internal/protocol"
	"github.com/wh131462/stillalive/internal/server/services"
	"github.com/wh131462/stillalive/internal/shared"
)

type Handler struct {
	sync   *services.SyncService
	photos *services.PhotoService
	logger logging.Logger
}

func NewHandler(sync *services.SyncService, photos *services.PhotoService, logger logging.Logger) *Handler {
	return &Handler{sync: sync, photos: photos, logger: logger}
}

// Status answers the device's connectivity probe. No auth; a device must be
// able to tell "offline" from "bad token".
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "serverTime": time.Now().UnixMilli()})
}

func (h *Handler) Push(c *gin.Context) {
	userID := UserIDFromContext(c)

	var req protocol.PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	resp, err := h.sync.Push(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Pull(c *gin.Context) {
	userID := UserIDFromContext(c)

	var req protocol.PullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	resp, err := h.sync.Pull(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PresignPhoto hands the device a storage key and a short-lived direct
// upload URL.
func (h *Handler) PresignPhoto(c *gin.Context) {
	userID := UserIDFromContext(c)

	key, url, err := h.photos.GetPresignedPutUrl(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "url": url})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shared.ErrUnknownCollection), errors.Is(err, shared.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, shared.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
