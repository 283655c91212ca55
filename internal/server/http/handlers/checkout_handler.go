package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/bloomcart/internal/domain/model"
	"github.com/polkiloo/bloomcart/internal/server/http/dto"
	"github.com/polkiloo/bloomcart/internal/usecase"
)

// CheckoutHandler serves the provider checkout and confirmation routes.
type CheckoutHandler struct {
	facade CheckoutFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// Start handles POST /api/payments/:provider/checkout.
func (h *CheckoutHandler) Start(provider model.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}

		session, err := h.facade.StartCheckout(c.Request.Context(), provider, usecase.CheckoutInput{
			Items:              dto.ToLineItems(req.Items),
			CustomerEmail:      req.CustomerEmail,
			SuccessURL:         req.SuccessURL,
			CancelURL:          req.CancelURL,
			PaymentMethodTypes: req.PaymentMethodTypes,
			UserID:             req.UserID,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.CheckoutResponse{ID: session.ID, URL: session.URL, Reference: session.Reference})
	}
}

// Confirm handles POST /api/payments/:provider/confirm. A paid session is
// reported with 200 even when persistence failed; dbError carries the detail.
func (h *CheckoutHandler) Confirm(provider model.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ConfirmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		if req.SessionID == "" && (provider == model.ProviderStripe || req.Reference == "") {
			badRequest(c, "session_id is required")
			return
		}

		res, err := h.facade.ConfirmCheckout(c.Request.Context(), provider, usecase.ConfirmInput{
			SessionID: req.SessionID,
			Reference: req.Reference,
			UserID:    req.UserID,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewConfirmResponse(res))
	}
}
