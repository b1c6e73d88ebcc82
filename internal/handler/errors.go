package handler

import (
	"errors"
	"net/http"
	"strconv"

	"blood-request-routing/internal/service"
	"blood-request-routing/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses. Anything untyped is a system fault:
// it is logged and answered with fallback so internals never leak.
func respondError(c *gin.Context, log *zap.Logger, err error, fallback string) {
	var (
		validationErr   *service.ValidationError
		notFoundErr     *service.NotFoundError
		preconditionErr *service.PreconditionError
		stockErr        *service.InsufficientStockError
	)

	switch {
	case errors.As(err, &stockErr):
		utils.FailureResponse(c, http.StatusBadRequest, stockErr.Error(), gin.H{
			"bloodGroup":     stockErr.BloodGroup,
			"requestedUnits": stockErr.Requested,
			"availableUnits": stockErr.Available,
			"shortfall":      stockErr.Shortfall(),
		})
	case errors.As(err, &validationErr):
		utils.ErrorResponse(c, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		utils.ErrorResponse(c, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &preconditionErr):
		utils.ErrorResponse(c, http.StatusBadRequest, preconditionErr.Error())
	default:
		_ = c.Error(err)
		log.Error(fallback,
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("requestID")),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, fallback)
	}
}

// parseID reads a numeric path parameter
func parseID(c *gin.Context, param, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+label+" ID")
		return 0, false
	}
	return uint(id), true
}

// optionalUintQuery reads an optional numeric query parameter
func optionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return nil, false
	}
	id := uint(v)
	return &id, true
}

// intQuery reads an optional integer query parameter, def when absent
func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return v, true
}
