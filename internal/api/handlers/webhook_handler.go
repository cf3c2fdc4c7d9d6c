package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hab-telemetry/rockblock-receiver/internal/domain"
	"github.com/hab-telemetry/rockblock-receiver/internal/observability"
	"github.com/hab-telemetry/rockblock-receiver/internal/service"
)

type WebhookHandler struct {
	messages *service.MessageService
}

func NewWebhookHandler(messages *service.MessageService) *WebhookHandler {
	return &WebhookHandler{messages: messages}
}

// Receive handles one ground-station delivery. A rejected delivery
// stores nothing; a storage failure is reported to the sender so its
// retry policy can kick in.
func (h *WebhookHandler) Receive(c *gin.Context) {
	observability.DeliveriesReceived.Inc()

	var delivery domain.InboundDelivery
	if err := c.ShouldBindJSON(&delivery); err != nil {
		observability.DeliveriesRejected.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	if strings.TrimSpace(delivery.IMEI) == "" || strings.TrimSpace(delivery.Data) == "" {
		observability.DeliveriesRejected.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "imei and data are required"})
		return
	}

	msg, err := h.messages.Ingest(c.Request.Context(), &delivery)
	if err != nil {
		log.Error().Err(err).Str("imei", delivery.IMEI).Msg("failed to store delivery")
		c.JSON(http.StatusBadGateway, gin.H{"error": "storage write failed"})
		return
	}

	log.Info().
		Str("imei", msg.IMEI).
		Str("object", msg.ObjectKey).
		Msg("message stored")
	c.Status(http.StatusOK)
}
