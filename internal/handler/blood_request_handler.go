package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"blood-request-routing/internal/middleware"
	"blood-request-routing/internal/models"
	"blood-request-routing/internal/repository"
	"blood-request-routing/internal/service"
	"blood-request-routing/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BloodRequestHandler struct {
	requestService *service.BloodRequestService
	log            *zap.Logger
}

func NewBloodRequestHandler(requestService *service.BloodRequestService, log *zap.Logger) *BloodRequestHandler {
	return &BloodRequestHandler{
		requestService: requestService,
		log:            log,
	}
}

type acceptBody struct {
	ResponseText string `json:"responseText" binding:"max=1000"`
}

type reasonBody struct {
	Reason string `json:"reason"`
}

type approveBody struct {
	Remarks string `json:"remarks" binding:"max=1000"`
}

type assignBody struct {
	BloodBankID uint `json:"bloodBankId" binding:"required"`
}

type processBody struct {
	StaffID *uint `json:"staffId"`
}

type completeBody struct {
	UnitsFulfilled int `json:"unitsFulfilled" binding:"required,min=1"`
}

type communicationBody struct {
	Message string `json:"message"`
	Author  string `json:"author" binding:"max=100"`
}

// CreateRequest admits a new blood request for a hospital
func (h *BloodRequestHandler) CreateRequest(c *gin.Context) {
	var in service.CreateRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	// Hospital users always request for their own hospital
	if c.GetString(middleware.ContextRole) == models.RoleHospital {
		own := organizationID(c)
		if in.HospitalID == 0 {
			in.HospitalID = own
		}
		if in.HospitalID != own {
			utils.ErrorResponse(c, http.StatusForbidden, "Access denied: you can only request blood for your own hospital")
			return
		}
	}

	result, err := h.requestService.CreateRequest(c.Request.Context(), in, middleware.ActorID(c))
	if err != nil {
		respondError(c, h.log, err, "Failed to create blood request")
		return
	}

	utils.CreatedResponse(c, result)
}

// GetRequest retrieves a request with its communication log
func (h *BloodRequestHandler) GetRequest(c *gin.Context) {
	req, ok := h.loadAuthorized(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, req)
}

// AcceptRequest accepts a PENDING request on behalf of its blood bank
func (h *BloodRequestHandler) AcceptRequest(c *gin.Context) {
	req, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var body acceptBody
	if !bindOptionalJSON(c, &body) {
		return
	}

	result, err := h.requestService.AcceptRequest(c.Request.Context(), req.ID, body.ResponseText, middleware.ActorID(c))
	if err != nil {
		respondError(c, h.log, err, "Failed to accept blood request")
		return
	}

	utils.SuccessResponse(c, result)
}

// RejectRequest rejects a PENDING request with a reason
func (h *BloodRequestHandler) RejectRequest(c *gin.Context) {
	req, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var body reasonBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := h.requestService.RejectRequest(c.Request.Context(), req.ID, body.Reason, middleware.ActorID(c))
	if err != nil {
		respondError(c, h.log, err, "Failed to reject blood request")
		return
	}

	utils.SuccessResponse(c, updated)
}

// ApproveRequest records admin approval of a CRITICAL request (super admin only)
func (h *BloodRequestHandler) ApproveRequest(c *gin.Context) {
	id, ok := parseID(c, "id", "request")
	if !ok {
		return
	}

	var body approveBody
	if !bindOptionalJSON(c, &body) {
		return
	}

	adminID := middleware.ActorID(c)
	if adminID == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	updated, err := h.requestService.ApproveByAdmin(c.Request.Context(), id, *adminID, body.Remarks)
	if err != nil {
		respondError(c, h.log, err, "Failed to approve blood request")
		return
	}

	utils.SuccessResponse(c, updated)
}

// AssignBloodBank redirects a PENDING request to another bank (super admin only)
func (h *BloodRequestHandler) AssignBloodBank(c *gin.Context) {
	id, ok := parseID(c, "id", "request")
	if !ok {
		return
	}

	var body assignBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := h.requestService.AssignBloodBank(c.Request.Context(), id, body.BloodBankID, middleware.ActorID(c))
	if err != nil {
		respondError(c, h.log, err, "Failed to assign blood bank")
		return
	}

	utils.SuccessResponse(c, updated)
}

// StartProcessing moves an ACCEPTED request to PROCESSING
func (h *BloodRequestHandler) StartProcessing(c *gin.Context) {
	req, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var body processBody
	if !bindOptionalJSON(c, &body) {
		return
	}

	updated, err := h.requestService.StartProcessing(c.Request.Context(), req.ID, body.StaffID, middleware.ActorID(c))
	if err != nil {
		respondError(c, h.log, err, "Failed to start processing")
		return
	}

	utils.SuccessResponse(c, updated)
}

// CompleteRequest closes an ACCEPTED request without the processing stage
func (h *BloodRequestHandler) CompleteRequest(c *gin.Context) {
	req, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var body completeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := h.requestService.CompleteRequest(c.Request.Context(), req.ID, body.UnitsFulfilled, middleware.ActorID(c))
	if err != nil {
		respondError(c, h.log, err, "Failed to complete blood request")
		return
	}

	utils.SuccessResponse(c, updated)
}

// FulfillRequest hands over units for a PROCESSING request
func (h *BloodRequestHandler) FulfillRequest(c *gin.Context) {
	req, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var body service.FulfillInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := h.requestService.FulfillRequest(c.Request.Context(), req.ID, body, middleware.ActorID(c))
	if err != nil {
		respondError(c, h.log, err, "Failed to fulfill blood request")
		return
	}

	utils.SuccessResponse(c, updated)
}

// CancelRequest withdraws an open request
func (h *BloodRequestHandler) CancelRequest(c *gin.Context) {
	req, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var body reasonBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := h.requestService.CancelRequest(c.Request.Context(), req.ID, body.Reason, middleware.ActorID(c))
	if err != nil {
		respondError(c, h.log, err, "Failed to cancel blood request")
		return
	}

	utils.SuccessResponse(c, updated)
}

// AddCommunication appends a message to the request thread
func (h *BloodRequestHandler) AddCommunication(c *gin.Context) {
	req, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var body communicationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	entry, err := h.requestService.AddCommunicationLog(c.Request.Context(), req.ID, body.Message, body.Author, middleware.ActorID(c))
	if err != nil {
		respondError(c, h.log, err, "Failed to add communication")
		return
	}

	utils.CreatedResponse(c, entry)
}

// RecalculatePriority rescores an open request
func (h *BloodRequestHandler) RecalculatePriority(c *gin.Context) {
	req, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	updated, err := h.requestService.RecalculatePriority(c.Request.Context(), req.ID, middleware.ActorID(c))
	if err != nil {
		respondError(c, h.log, err, "Failed to recalculate priority")
		return
	}

	utils.SuccessResponse(c, updated)
}

// DeleteRequest removes a request permanently (super admin only)
func (h *BloodRequestHandler) DeleteRequest(c *gin.Context) {
	id, ok := parseID(c, "id", "request")
	if !ok {
		return
	}

	if err := h.requestService.DeleteRequest(c.Request.Context(), id, middleware.ActorID(c)); err != nil {
		respondError(c, h.log, err, "Failed to delete blood request")
		return
	}

	utils.MessageResponse(c, "Blood request deleted successfully")
}

// GetAuditTrail lists the audit rows of a request
func (h *BloodRequestHandler) GetAuditTrail(c *gin.Context) {
	id, ok := parseID(c, "id", "request")
	if !ok {
		return
	}

	trail, err := h.requestService.GetAuditTrail(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch audit trail")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"audit_logs": trail,
		"count":      len(trail),
	})
}

// ListAllRequests lists requests across every organization (super admin only)
func (h *BloodRequestHandler) ListAllRequests(c *gin.Context) {
	filter, ok := listFilter(c)
	if !ok {
		return
	}

	h.list(c, filter)
}

// ListHospitalRequests lists a hospital's requests, newest first
func (h *BloodRequestHandler) ListHospitalRequests(c *gin.Context) {
	id, ok := parseID(c, "id", "hospital")
	if !ok {
		return
	}
	filter, ok := listFilter(c)
	if !ok {
		return
	}
	filter.HospitalID = &id

	h.list(c, filter)
}

// ListBloodBankRequests lists a blood bank's queue, highest priority first
func (h *BloodRequestHandler) ListBloodBankRequests(c *gin.Context) {
	id, ok := parseID(c, "id", "blood bank")
	if !ok {
		return
	}
	filter, ok := listFilter(c)
	if !ok {
		return
	}
	filter.BloodBankID = &id
	filter.OrderByPriority = true

	h.list(c, filter)
}

// ListCriticalRequests returns the open critical queue
func (h *BloodRequestHandler) ListCriticalRequests(c *gin.Context) {
	limit, ok := intQuery(c, "limit", service.DefaultPageLimit)
	if !ok {
		return
	}

	page, err := h.requestService.ListCriticalRequests(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch critical requests")
		return
	}

	utils.SuccessResponse(c, page)
}

// GetStatistics aggregates requests by status and urgency
func (h *BloodRequestHandler) GetStatistics(c *gin.Context) {
	hospitalID, ok := scopedQuery(c, "hospitalId", models.RoleHospital)
	if !ok {
		return
	}
	bankID, ok := scopedQuery(c, "bloodBankId", models.RoleBloodBank)
	if !ok {
		return
	}

	stats, err := h.requestService.GetStatistics(c.Request.Context(), hospitalID, bankID)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch statistics")
		return
	}

	utils.SuccessResponse(c, stats)
}

// GetAverageResponseTime reports the mean time to first response
func (h *BloodRequestHandler) GetAverageResponseTime(c *gin.Context) {
	bankID, ok := scopedQuery(c, "bloodBankId", models.RoleBloodBank)
	if !ok {
		return
	}

	rt, err := h.requestService.GetAverageResponseTime(c.Request.Context(), bankID)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch response time")
		return
	}

	utils.SuccessResponse(c, rt)
}

func (h *BloodRequestHandler) list(c *gin.Context, filter repository.RequestFilter) {
	page, err := h.requestService.ListRequests(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch blood requests")
		return
	}
	utils.SuccessResponse(c, page)
}

// loadAuthorized fetches the request in the :id path and checks the caller's organization is party to it
func (h *BloodRequestHandler) loadAuthorized(c *gin.Context) (*models.BloodRequest, bool) {
	id, ok := parseID(c, "id", "request")
	if !ok {
		return nil, false
	}

	req, err := h.requestService.GetRequest(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch blood request")
		return nil, false
	}

	allowed := false
	switch c.GetString(middleware.ContextRole) {
	case models.RoleSuperAdmin:
		allowed = true
	case models.RoleHospital:
		allowed = req.HospitalID == organizationID(c)
	case models.RoleBloodBank:
		allowed = req.BloodBankID == organizationID(c)
	}
	if !allowed {
		utils.ErrorResponse(c, http.StatusForbidden, "Access denied: you don't have permission to access this request")
		return nil, false
	}
	return req, true
}

func listFilter(c *gin.Context) (repository.RequestFilter, bool) {
	var f repository.RequestFilter

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Statuses = append(f.Statuses, models.RequestStatus(strings.ToUpper(s)))
			}
		}
	}
	f.Urgency = models.Urgency(strings.ToUpper(c.Query("urgency")))
	f.BloodGroup = bloodGroupQuery(c)

	var ok bool
	if f.Page, ok = intQuery(c, "page", 1); !ok {
		return f, false
	}
	if f.Limit, ok = intQuery(c, "limit", service.DefaultPageLimit); !ok {
		return f, false
	}
	return f, true
}

// bindOptionalJSON binds a body when one was sent
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	// chunked requests report an unknown length, so an empty one only shows up as EOF
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// scopedQuery reads an optional organization filter. Callers holding role are pinned to their own
// organization and may not name another one.
func scopedQuery(c *gin.Context, name, role string) (*uint, bool) {
	id, ok := optionalUintQuery(c, name)
	if !ok {
		return nil, false
	}
	if c.GetString(middleware.ContextRole) != role {
		return id, true
	}

	own := organizationID(c)
	if id != nil && *id != own {
		utils.ErrorResponse(c, http.StatusForbidden, "Access denied: you can only view your own organization's data")
		return nil, false
	}
	return &own, true
}

func organizationID(c *gin.Context) uint {
	v, _ := c.Get(middleware.ContextOrganizationID)
	id, _ := v.(uint)
	return id
}
