package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/bloomcart/internal/server/http/dto"
	"github.com/polkiloo/bloomcart/internal/usecase"
)

// OrderHandler manages public order endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Place handles POST /api/order.
func (h *OrderHandler) Place(c *gin.Context) {
	var req dto.ManualOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.facade.PlaceOrder(c.Request.Context(), usecase.ManualOrderInput{
		Email:   req.Email,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		Items:   dto.ToLineItems(req.Items),
		Total:   req.Total,
		UserID:  req.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewManualOrderResponse(res))
}

// ValidateStock handles POST /api/stock/validate.
func (h *OrderHandler) ValidateStock(c *gin.Context) {
	var req dto.StockValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	validation, err := h.facade.ValidateStock(c.Request.Context(), dto.ToLineItems(req.Items))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStockValidateResponse(validation))
}

// Get handles GET /api/orders/:number.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(*order))
}
