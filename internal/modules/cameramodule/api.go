package cameramodule

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/camarr-app/camarr/internal/database"
)

// Handlers exposes the camera registry over HTTP.
type Handlers struct {
	manager *Manager
	logger  hclog.Logger
}

// NewHandlers creates the camera API handlers.
func NewHandlers(manager *Manager, logger hclog.Logger) *Handlers {
	return &Handlers{manager: manager, logger: logger}
}

// RegisterRoutes mounts the camera endpoints.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	cameras := router.Group("/api/v1/cameras")
	{
		cameras.GET("", h.listCameras)
		cameras.POST("", h.createCamera)
		cameras.GET("/:id", h.getCamera)
		cameras.PUT("/:id", h.updateCamera)
		cameras.DELETE("/:id", h.deleteCamera)
		cameras.POST("/:id/adopt", h.adoptCamera)
		cameras.GET("/:id/capabilities", h.getCapabilities)
	}
}

type createCameraRequest struct {
	Name            string `json:"name" binding:"required"`
	Host            string `json:"host" binding:"required"`
	MAC             string `json:"mac"`
	Model           string `json:"model"`
	FirmwareVersion string `json:"firmware_version"`

	HasMotionSensor            bool `json:"has_motion_sensor"`
	HasAudioSensor             bool `json:"has_audio_sensor"`
	HasObjectDetector          bool `json:"has_object_detector"`
	SupportsNativeStreamConfig bool `json:"supports_native_stream_config"`
	HasOnOffControl            bool `json:"has_on_off_control"`
}

func (h *Handlers) listCameras(c *gin.Context) {
	cams, err := h.manager.ListCameras(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cameras": cams, "count": len(cams)})
}

func (h *Handlers) createCamera(c *gin.Context) {
	var req createCameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cam := &database.Camera{
		Name:                       req.Name,
		Host:                       req.Host,
		MAC:                        req.MAC,
		Model:                      req.Model,
		FirmwareVersion:            req.FirmwareVersion,
		HasMotionSensor:            req.HasMotionSensor,
		HasAudioSensor:             req.HasAudioSensor,
		HasObjectDetector:          req.HasObjectDetector,
		SupportsNativeStreamConfig: req.SupportsNativeStreamConfig,
		HasOnOffControl:            req.HasOnOffControl,
	}
	if err := h.manager.CreateCamera(c.Request.Context(), cam); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cam)
}

func (h *Handlers) getCamera(c *gin.Context) {
	cam, err := h.manager.GetCamera(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cam)
}

func (h *Handlers) updateCamera(c *gin.Context) {
	cam, err := h.manager.GetCamera(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req createCameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cam.Name = req.Name
	cam.Host = req.Host
	cam.MAC = req.MAC
	cam.Model = req.Model
	cam.FirmwareVersion = req.FirmwareVersion
	cam.HasMotionSensor = req.HasMotionSensor
	cam.HasAudioSensor = req.HasAudioSensor
	cam.HasObjectDetector = req.HasObjectDetector
	cam.SupportsNativeStreamConfig = req.SupportsNativeStreamConfig
	cam.HasOnOffControl = req.HasOnOffControl
	if err := h.manager.UpdateCamera(c.Request.Context(), cam); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cam)
}

func (h *Handlers) deleteCamera(c *gin.Context) {
	if err := h.manager.DeleteCamera(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handlers) adoptCamera(c *gin.Context) {
	cam, err := h.manager.Adopt(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cam)
}

func (h *Handlers) getCapabilities(c *gin.Context) {
	caps, err := h.manager.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, caps)
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrCameraNotFound) {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
