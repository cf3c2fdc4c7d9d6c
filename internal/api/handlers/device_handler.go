package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hab-telemetry/rockblock-receiver/internal/domain"
	"github.com/hab-telemetry/rockblock-receiver/internal/service"
)

type DeviceHandler struct {
	messages *service.MessageService
}

func NewDeviceHandler(messages *service.MessageService) *DeviceHandler {
	return &DeviceHandler{messages: messages}
}

type latestResponse struct {
	*domain.Message
	ObjectKey string                 `json:"object_key"`
	Decoded   *domain.TrackingFields `json:"decoded,omitempty"`
}

// GetLatest returns the most recent message for a device, with the
// tracking payload decoded when it is well formed.
func (h *DeviceHandler) GetLatest(c *gin.Context) {
	imei := strings.TrimSpace(c.Param("imei"))
	if imei == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imei is required"})
		return
	}

	msg, err := h.messages.Latest(c.Request.Context(), imei)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch latest message"})
		return
	}
	if msg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no messages for device"})
		return
	}

	resp := latestResponse{Message: msg, ObjectKey: msg.ObjectKey}
	if decoded, err := domain.ParseTrackingData(msg.Data); err == nil {
		resp.Decoded = decoded
	}

	c.JSON(http.StatusOK, resp)
}
