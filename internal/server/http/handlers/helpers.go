package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/server/http/dto"
	"github.com/polkiloo/bloomcart/internal/server/http/middleware"
)

// CurrentAdmin extracts the authenticated admin email from context.
func CurrentAdmin(c *gin.Context) string {
	val, ok := c.Get(middleware.SubjectContextKey)
	if !ok {
		return ""
	}
	subject, _ := val.(string)
	return subject
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		configErr   domainErrors.ConfigurationError
		providerErr domainErrors.ProviderError
	)
	switch {
	case errors.As(err, &configErr):
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: configErr.Error()})
	case errors.As(err, &providerErr):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: providerErr.Error()})
	case errors.Is(err, domainErrors.ErrNotFound), errors.Is(err, domainErrors.ErrUnsupportedProvider):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrEmptyCart),
		errors.Is(err, domainErrors.ErrInvalidItem),
		errors.Is(err, domainErrors.ErrMissingEmail),
		errors.Is(err, domainErrors.ErrMissingReference),
		errors.Is(err, domainErrors.ErrInvalidSessionID),
		errors.Is(err, domainErrors.ErrInvalidStatus),
		errors.Is(err, domainErrors.ErrInvalidProduct):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrInsufficientStock),
		errors.Is(err, domainErrors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg})
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid product id")
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		badRequest(c, "invalid "+key)
		return 0, false
	}
	return v, true
}
