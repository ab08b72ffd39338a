package settingsmodule

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/camarr-app/camarr/internal/types"
)

// Handlers exposes the settings engine over HTTP.
type Handlers struct {
	service *Service
	logger  hclog.Logger
}

// NewHandlers creates the settings API handlers.
func NewHandlers(service *Service, logger hclog.Logger) *Handlers {
	return &Handlers{service: service, logger: logger}
}

// RegisterRoutes mounts the settings endpoints under the camera resource.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	settings := router.Group("/api/v1/cameras/:id/settings")
	{
		settings.GET("", h.getSchema)
		settings.PUT("/:key", h.putSetting)
		settings.DELETE("/:key", h.deleteSetting)
	}
}

type putSettingRequest struct {
	Value types.ConfigValue `json:"value"`
}

func (h *Handlers) getSchema(c *gin.Context) {
	descriptors, err := h.service.Schema(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": descriptors, "count": len(descriptors)})
}

func (h *Handlers) putSetting(c *gin.Context) {
	var req putSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cameraID := c.Param("id")
	key := c.Param("key")
	if err := h.service.PutSetting(c.Request.Context(), cameraID, key, req.Value); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "key": key})
}

func (h *Handlers) deleteSetting(c *gin.Context) {
	if err := h.service.DeleteSetting(c.Request.Context(), c.Param("id"), c.Param("key")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, types.ErrCameraNotFound) {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
