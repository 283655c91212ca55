package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/bloomcart/internal/domain/model"
	"github.com/polkiloo/bloomcart/internal/server/http/dto"
)

// CatalogHandler serves the public product listing.
type CatalogHandler struct {
	facade CatalogFacade
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade}
}

// List handles GET /api/products?q=&category=&status=&limit=&offset=.
func (h *CatalogHandler) List(c *gin.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset")
	if !ok {
		return
	}

	products, err := h.facade.Products(c.Request.Context(), model.ProductFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Status:   model.ProductStatus(c.Query("status")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, dto.NewProductResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/products/:id.
func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	product, err := h.facade.Product(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(*product))
}
