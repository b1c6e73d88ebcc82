package handler

import (
	"net/http"
	"strings"

	"blood-request-routing/internal/middleware"
	"blood-request-routing/internal/models"
	"blood-request-routing/internal/scoring"
	"blood-request-routing/internal/service"
	"blood-request-routing/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BloodStockHandler struct {
	stockService   *service.BloodStockService
	routingService *service.RoutingService
	log            *zap.Logger
}

func NewBloodStockHandler(stockService *service.BloodStockService, routingService *service.RoutingService, log *zap.Logger) *BloodStockHandler {
	return &BloodStockHandler{
		stockService:   stockService,
		routingService: routingService,
		log:            log,
	}
}

type stockUpdateBody struct {
	BloodGroup models.BloodGroup `json:"bloodGroup" binding:"required"`
	Delta      int               `json:"delta" binding:"required"`
}

// GetStock returns a blood bank's full stock sheet
func (h *BloodStockHandler) GetStock(c *gin.Context) {
	id, ok := parseID(c, "id", "blood bank")
	if !ok {
		return
	}

	sheet, err := h.stockService.GetBankStock(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch blood stock")
		return
	}

	utils.SuccessResponse(c, sheet)
}

// UpdateStock applies a signed unit delta to one group
func (h *BloodStockHandler) UpdateStock(c *gin.Context) {
	id, ok := parseID(c, "id", "blood bank")
	if !ok {
		return
	}

	var body stockUpdateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	stock, err := h.stockService.UpdateStock(c.Request.Context(), id, body.BloodGroup, body.Delta, middleware.ActorID(c))
	if err != nil {
		respondError(c, h.log, err, "Failed to update blood stock")
		return
	}

	utils.SuccessResponse(c, stock)
}

// GetAvailability returns the cross-bank snapshot for ?bloodGroup=
func (h *BloodStockHandler) GetAvailability(c *gin.Context) {
	group := bloodGroupQuery(c)
	if group == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "bloodGroup is required")
		return
	}

	availability, err := h.stockService.GetAvailability(c.Request.Context(), group)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch blood availability")
		return
	}

	utils.SuccessResponse(c, availability)
}

// NearbyBloodBanks ranks banks able to serve a hospital
func (h *BloodStockHandler) NearbyBloodBanks(c *gin.Context) {
	id, ok := parseID(c, "id", "hospital")
	if !ok {
		return
	}
	group := bloodGroupQuery(c)
	if group == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "bloodGroup is required")
		return
	}
	minUnits, ok := intQuery(c, "minUnits", 1)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", service.DefaultPageLimit)
	if !ok {
		return
	}

	result, err := h.routingService.NearbyBloodBanks(c.Request.Context(), id, group, minUnits, limit)
	if err != nil {
		respondError(c, h.log, err, "Failed to find nearby blood banks")
		return
	}

	utils.SuccessResponse(c, result)
}

// GetThresholds echoes the priority category boundaries for clients
func (h *BloodStockHandler) GetThresholds(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"thresholds": scoring.CategoryThresholds(),
		"legend":     scoring.Legend(),
	})
}

// bloodGroupQuery reads ?bloodGroup=, restoring a '+' that URL decoding turned into a space
func bloodGroupQuery(c *gin.Context) models.BloodGroup {
	raw := strings.TrimSpace(c.Query("bloodGroup"))
	if strings.HasSuffix(c.Query("bloodGroup"), " ") {
		raw += "+"
	}
	return models.BloodGroup(strings.ToUpper(raw))
}
