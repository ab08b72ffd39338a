package transcodemodule

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/camarr-app/camarr/internal/types"
)

// Handlers exposes presets and stream sessions over HTTP.
type Handlers struct {
	service *Service
	logger  hclog.Logger
}

// NewHandlers creates the transcode API handlers.
func NewHandlers(service *Service, logger hclog.Logger) *Handlers {
	return &Handlers{service: service, logger: logger}
}

// RegisterRoutes mounts the transcode endpoints.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	transcode := router.Group("/api/v1/transcode")
	{
		transcode.GET("/presets", h.listPresets)
		transcode.POST("/sessions", h.startSession)
		transcode.GET("/sessions", h.listSessions)
		transcode.GET("/sessions/:id", h.getSession)
		transcode.DELETE("/sessions/:id", h.stopSession)
	}
}

func (h *Handlers) listPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"decoders": h.service.PresetNames(types.PresetDecoder),
		"encoders": h.service.PresetNames(types.PresetEncoder),
	})
}

func (h *Handlers) startSession(c *gin.Context) {
	var req types.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := h.service.StartSession(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *Handlers) listSessions(c *gin.Context) {
	sessions, err := h.service.ListSessions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

func (h *Handlers) getSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handlers) stopSession(c *gin.Context) {
	if err := h.service.StopSession(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrCameraNotFound), errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
