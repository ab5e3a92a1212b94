package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Razorpay payloads are a few KB; anything near this size is not a webhook.
const maxWebhookBody = 1 << 20

var errWebhookTooLarge = errors.New("webhook_payload_too_large")

// HandlePaymentWebhook answers 200 for every delivery the provider should not
// retry, including duplicates and rejected payments.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	provider := strings.ToLower(strings.TrimSpace(c.Param("provider")))

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(payload) > maxWebhookBody {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorResponse{Error: errorPayload{
			Type:    "payload_too_large",
			Message: errWebhookTooLarge.Error(),
		}})
		return
	}

	if err := s.paymentSvc.IngestWebhook(c.Request.Context(), provider, payload, c.Request.Header); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
