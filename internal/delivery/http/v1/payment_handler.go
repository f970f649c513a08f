package v1

import (
	"errors"
	"io"
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/payment"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	paymentUC domain.PaymentUsecase
	verifier  *payment.Verifier
}

// NewPaymentHandler registers the provider webhook. It is unauthenticated:
// the signature header is the only credential.
func NewPaymentHandler(public *gin.RouterGroup, paymentUC domain.PaymentUsecase, verifier *payment.Verifier) {
	handler := &PaymentHandler{paymentUC: paymentUC, verifier: verifier}
	public.POST("/payments/webhook", handler.Webhook)
}

// Webhook godoc
// @Summary      Payment provider webhook
// @Description  Signed checkout events. A successful payment for a pending job publishes it. Redeliveries are acknowledged without effect.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Payment-Signature  header    string  true  "t=<unix>,v1=<hmac>"
// @Success      200                {object}  response.Response
// @Failure      401                {object}  response.Response
// @Router       /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.Error(apperror.Validation("Unreadable webhook body"))
		return
	}

	if err := h.verifier.Verify(c.GetHeader(payment.SignatureHeader), body); err != nil {
		logger.Log.Warn("payment webhook rejected", "error", err, "ip", c.ClientIP())
		c.Error(apperror.Unauthenticated("Invalid webhook signature"))
		return
	}

	event, err := payment.Decode(body)
	if err != nil {
		if errors.Is(err, payment.ErrMalformedEvent) {
			c.Error(apperror.Validation("Malformed payment event"))
			return
		}
		c.Error(err)
		return
	}

	if err := h.paymentUC.HandleEvent(c.Request.Context(), event); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Event processed", gin.H{"event_id": event.ID})
}
