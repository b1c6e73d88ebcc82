package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"blood-request-routing/internal/models"
	"blood-request-routing/internal/repository"
	"blood-request-routing/internal/scoring"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Limits on free-text input
const (
	MinRejectionReasonLength = 5
	MaxRejectionReasonLength = 500
	MaxCancellationLength    = 500
	MaxResponseTextLength    = 1000
	MaxMessageLength         = 2000

	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

const defaultAuthor = "system"

// CreateRequestInput is a hospital's ask for blood
type CreateRequestInput struct {
	HospitalID       uint              `json:"hospitalId" validate:"required"`
	BloodBankID      uint              `json:"bloodBankId" validate:"required"`
	BloodGroup       models.BloodGroup `json:"bloodGroup" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	UnitsRequired    int               `json:"unitsRequired" validate:"required,min=1"`
	PatientAge       *int              `json:"patientAge" validate:"omitempty,min=0,max=150"`
	PatientCondition string            `json:"patientCondition" validate:"max=255"`
	Department       string            `json:"department" validate:"max=100"`
}

// FulfillInput records what a blood bank handed over
type FulfillInput struct {
	UnitsFulfilled   int                     `json:"unitsFulfilled" validate:"required,min=1"`
	BatchNumbers     []string                `json:"batchNumbers" validate:"omitempty,dive,required,max=100"`
	ExpiryDates      []string                `json:"expiryDates" validate:"omitempty,dive,datetime=2006-01-02"`
	CollectionMethod models.CollectionMethod `json:"collectionMethod" validate:"omitempty,oneof=PICKUP DELIVERY"`
}

// CreateRequestResult is returned by CreateRequest
type CreateRequestResult struct {
	Request            *models.BloodRequest  `json:"request"`
	UrgencyCalculation scoring.UrgencyResult `json:"urgency_calculation"`
	Priority           scoring.PriorityView  `json:"priority"`
}

// AcceptResult is returned by AcceptRequest. Distance is best effort.
type AcceptResult struct {
	Request          *models.BloodRequest       `json:"request"`
	DistanceInfo     *DistanceInfo              `json:"distance_info"`
	DistanceError    string                     `json:"distance_error,omitempty"`
	HospitalDetails  models.OrganizationDetails `json:"hospital_details"`
	BloodBankDetails models.OrganizationDetails `json:"blood_bank_details"`
}

// RequestPage is one page of a request listing
type RequestPage struct {
	Requests   []models.BloodRequest `json:"requests"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}

// Statistics combines request aggregates with a bank's running totals when scoped to one bank
type Statistics struct {
	*repository.RequestStatistics
	BloodBankTotals *models.BloodBankStatistics `json:"blood_bank_totals,omitempty"`
}

// ResponseTime is the mean delay between creation and first response
type ResponseTime struct {
	AverageMinutes    float64 `json:"average_response_time_minutes"`
	RespondedRequests int     `json:"responded_requests"`
}

// BloodRequestService drives the request lifecycle
type BloodRequestService struct {
	requests RequestStore
	stock    StockStore
	orgs     OrganizationLookup
	priority *PriorityService
	urgency  *scoring.UrgencyCalculator
	audit    AuditLogger
	log      *zap.Logger
	now      func() time.Time
}

func NewBloodRequestService(
	requests RequestStore,
	stock StockStore,
	orgs OrganizationLookup,
	priority *PriorityService,
	urgency *scoring.UrgencyCalculator,
	audit AuditLogger,
	log *zap.Logger,
) *BloodRequestService {
	return &BloodRequestService{
		requests: requests,
		stock:    stock,
		orgs:     orgs,
		priority: priority,
		urgency:  urgency,
		audit:    audit,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest admits a request only when the target bank holds enough units,
// then scores urgency and priority and persists it as PENDING
func (s *BloodRequestService) CreateRequest(ctx context.Context, in CreateRequestInput, actorID *uint) (*CreateRequestResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fromValidator(err)
	}

	if _, err := s.findOrganization(ctx, in.HospitalID, models.OrganizationHospital); err != nil {
		return nil, err
	}
	if _, err := s.findOrganization(ctx, in.BloodBankID, models.OrganizationBloodBank); err != nil {
		return nil, err
	}

	if err := s.checkAdmission(ctx, in.BloodBankID, in.BloodGroup, in.UnitsRequired); err != nil {
		return nil, err
	}

	urgency := s.urgency.Calculate(scoring.UrgencyInput{
		PatientAge:       in.PatientAge,
		PatientCondition: in.PatientCondition,
		Department:       in.Department,
		UnitsRequired:    in.UnitsRequired,
	})

	req := &models.BloodRequest{
		HospitalID:            in.HospitalID,
		BloodBankID:           in.BloodBankID,
		BloodGroup:            in.BloodGroup,
		UnitsRequired:         in.UnitsRequired,
		Urgency:               urgency.Urgency,
		UrgencyReasons:        datatypes.NewJSONSlice(urgency.Reasons),
		Patient:               urgency.Patient,
		Status:                models.StatusPending,
		RequiresAdminApproval: urgency.RequiresAdminApproval,
		CreatedAt:             s.now(),
		CommunicationLog:      []models.CommunicationEntry{},
	}
	s.priority.EnrichRequestWithPriority(ctx, req)

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, actorID, "request_create", entityBloodRequest, req.ID,
		fmt.Sprintf("Requested %d units of %s from blood bank %d (urgency %s, priority %d)",
			req.UnitsRequired, req.BloodGroup, req.BloodBankID, req.Urgency, req.Priority.Score))

	return &CreateRequestResult{
		Request:            req,
		UrgencyCalculation: urgency,
		Priority:           scoring.FormatForResponse(req),
	}, nil
}

// GetRequest retrieves a request with its communication log
func (s *BloodRequestService) GetRequest(ctx context.Context, id uint) (*models.BloodRequest, error) {
	return s.findRequest(ctx, id)
}

// AcceptRequest moves a PENDING request to ACCEPTED and reports the hospital to bank distance.
// Missing or invalid coordinates only produce a distance error.
func (s *BloodRequestService) AcceptRequest(ctx context.Context, id uint, responseText string, actorID *uint) (*AcceptResult, error) {
	responseText = strings.TrimSpace(responseText)
	if utf8.RuneCountInString(responseText) > MaxResponseTextLength {
		return nil, validationError("response must be at most %d characters", MaxResponseTextLength)
	}

	req, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := models.NextStatus(req.Status, models.ActionAccept); err != nil {
		return nil, transitionError(err)
	}
	if req.RequiresAdminApproval && !req.AdminApproval.Approved {
		return nil, preconditionError("admin approval is required before a %s request can be accepted", req.Urgency)
	}

	hospital, err := s.findOrganization(ctx, req.HospitalID, models.OrganizationHospital)
	if err != nil {
		return nil, err
	}
	bank, err := s.findOrganization(ctx, req.BloodBankID, models.OrganizationBloodBank)
	if err != nil {
		return nil, err
	}

	result := &AcceptResult{
		HospitalDetails:  hospital.Details(),
		BloodBankDetails: bank.Details(),
	}
	if hospitalLoc, ok := hospital.Location(); !ok {
		result.DistanceError = "location coordinates not available for the hospital"
	} else if _, ok := bank.Location(); !ok {
		result.DistanceError = "location coordinates not available for the blood bank"
	} else if info, err := distanceBetween(hospitalLoc, bank); err != nil {
		result.DistanceError = err.Error()
	} else {
		result.DistanceInfo = info
	}

	now := s.now()
	fields := map[string]interface{}{
		"blood_bank_response": responseText,
		"responded_at":        now,
	}
	if err := s.transition(ctx, req, models.ActionAccept, fields); err != nil {
		return nil, err
	}

	details := "Request accepted"
	if result.DistanceInfo != nil {
		details = fmt.Sprintf("Request accepted, distance %s", result.DistanceInfo.Formatted)
	}
	recordAudit(ctx, s.audit, s.log, actorID, "request_accept", entityBloodRequest, id, details)

	if result.Request, err = s.findRequest(ctx, id); err != nil {
		return nil, err
	}
	return result, nil
}

// RejectRequest closes a PENDING request. The reason is kept exactly as given.
func (s *BloodRequestService) RejectRequest(ctx context.Context, id uint, reason string, actorID *uint) (*models.BloodRequest, error) {
	n := utf8.RuneCountInString(strings.TrimSpace(reason))
	if n < MinRejectionReasonLength {
		return nil, validationError("rejection reason must be at least %d characters", MinRejectionReasonLength)
	}
	if n > MaxRejectionReasonLength {
		return nil, validationError("rejection reason must be at most %d characters", MaxRejectionReasonLength)
	}

	req, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"rejection_reason": reason,
		"responded_at":     s.now(),
	}
	if err := s.transition(ctx, req, models.ActionReject, fields); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, actorID, "request_reject", entityBloodRequest, id, "Rejected: "+reason)
	return s.findRequest(ctx, id)
}

// ApproveByAdmin signs off a PENDING request whose urgency requires it
func (s *BloodRequestService) ApproveByAdmin(ctx context.Context, id, adminID uint, remarks string) (*models.BloodRequest, error) {
	req, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := models.NextStatus(req.Status, models.ActionApprove); err != nil {
		return nil, transitionError(err)
	}
	if !req.RequiresAdminApproval {
		return nil, preconditionError("request does not require admin approval")
	}
	if req.AdminApproval.Approved {
		return nil, preconditionError("request is already approved")
	}

	fields := map[string]interface{}{
		"approval_approved":    true,
		"approval_approved_by": adminID,
		"approval_approved_at": s.now(),
		"approval_remarks":     strings.TrimSpace(remarks),
	}
	if err := s.transition(ctx, req, models.ActionApprove, fields); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, &adminID, "request_approve", entityBloodRequest, id, "Approved by admin")
	return s.findRequest(ctx, id)
}

// AssignBloodBank redirects a PENDING request to another bank that can cover it
func (s *BloodRequestService) AssignBloodBank(ctx context.Context, id, bankID uint, actorID *uint) (*models.BloodRequest, error) {
	if bankID == 0 {
		return nil, validationError("bloodBankId is required")
	}

	req, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := models.NextStatus(req.Status, models.ActionAssign); err != nil {
		return nil, transitionError(err)
	}
	if _, err := s.findOrganization(ctx, bankID, models.OrganizationBloodBank); err != nil {
		return nil, err
	}
	if err := s.checkAdmission(ctx, bankID, req.BloodGroup, req.UnitsRequired); err != nil {
		return nil, err
	}

	previous := req.BloodBankID
	if err := s.transition(ctx, req, models.ActionAssign, map[string]interface{}{"blood_bank_id": bankID}); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, actorID, "request_assign", entityBloodRequest, id,
		fmt.Sprintf("Blood bank changed from %d to %d", previous, bankID))
	return s.findRequest(ctx, id)
}

// StartProcessing moves an ACCEPTED request to PROCESSING
func (s *BloodRequestService) StartProcessing(ctx context.Context, id uint, staffID *uint, actorID *uint) (*models.BloodRequest, error) {
	req, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if staffID == nil {
		staffID = actorID
	}
	fields := map[string]interface{}{
		"processed_by":          staffID,
		"processing_started_at": s.now(),
	}
	if err := s.transition(ctx, req, models.ActionStartProcessing, fields); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, actorID, "request_start_processing", entityBloodRequest, id, "Processing started")
	return s.findRequest(ctx, id)
}

// FulfillRequest closes a PROCESSING request, taking the units out of the bank's stock
func (s *BloodRequestService) FulfillRequest(ctx context.Context, id uint, in FulfillInput, actorID *uint) (*models.BloodRequest, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fromValidator(err)
	}
	if in.CollectionMethod == "" {
		in.CollectionMethod = models.CollectionPickup
	}

	req, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"batch_numbers":     datatypes.NewJSONSlice(nonNil(in.BatchNumbers)),
		"expiry_dates":      datatypes.NewJSONSlice(nonNil(in.ExpiryDates)),
		"collection_method": in.CollectionMethod,
	}
	if err := s.applyFulfillment(ctx, req, models.ActionFulfill, in.UnitsFulfilled, fields); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, actorID, "request_fulfill", entityBloodRequest, id,
		fmt.Sprintf("Fulfilled %d units of %s (%s)", in.UnitsFulfilled, req.BloodGroup, in.CollectionMethod))
	return s.findRequest(ctx, id)
}

// CompleteRequest closes an ACCEPTED request directly, with the same stock accounting as fulfillment
func (s *BloodRequestService) CompleteRequest(ctx context.Context, id uint, unitsFulfilled int, actorID *uint) (*models.BloodRequest, error) {
	if unitsFulfilled < 1 {
		return nil, validationError("unitsFulfilled must be at least 1")
	}

	req, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"collection_method": models.CollectionPickup}
	if err := s.applyFulfillment(ctx, req, models.ActionComplete, unitsFulfilled, fields); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, actorID, "request_complete", entityBloodRequest, id,
		fmt.Sprintf("Completed with %d units of %s", unitsFulfilled, req.BloodGroup))
	return s.findRequest(ctx, id)
}

// CancelRequest withdraws an open request
func (s *BloodRequestService) CancelRequest(ctx context.Context, id uint, reason string, actorID *uint) (*models.BloodRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationError("cancellation reason is required")
	}
	if utf8.RuneCountInString(reason) > MaxCancellationLength {
		return nil, validationError("cancellation reason must be at most %d characters", MaxCancellationLength)
	}

	req, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, req, models.ActionCancel, map[string]interface{}{"cancellation_reason": reason}); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, actorID, "request_cancel", entityBloodRequest, id, "Cancelled: "+reason)
	return s.findRequest(ctx, id)
}

// AddCommunicationLog appends a message to a request's thread
func (s *BloodRequestService) AddCommunicationLog(ctx context.Context, id uint, message, author string, actorID *uint) (*models.CommunicationEntry, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, validationError("message is required")
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, validationError("message must be at most %d characters", MaxMessageLength)
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = defaultAuthor
	}

	if _, err := s.findRequest(ctx, id); err != nil {
		return nil, err
	}

	entry := &models.CommunicationEntry{
		RequestID: id,
		Message:   message,
		Author:    author,
		CreatedAt: s.now(),
	}
	if err := s.requests.AppendCommunication(ctx, entry); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, actorID, "request_communication", entityBloodRequest, id, "Message from "+author)
	return entry, nil
}

// RecalculatePriority rescores an open request against current availability and waiting time
func (s *BloodRequestService) RecalculatePriority(ctx context.Context, id uint, actorID *uint) (*models.BloodRequest, error) {
	req, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, preconditionError("priority is only recalculated for open requests, request is %s", req.Status)
	}

	s.priority.EnrichRequestWithPriority(ctx, req)
	p := req.Priority
	fields := map[string]interface{}{
		"priority_score":              p.Score,
		"priority_category":           p.Category,
		"priority_urgency_score":      p.Breakdown.UrgencyScore,
		"priority_rarity_score":       p.Breakdown.RarityScore,
		"priority_time_score":         p.Breakdown.TimeScore,
		"priority_availability_score": p.Breakdown.AvailabilityScore,
		"priority_calculated_at":      p.CalculatedAt,
		"priority_action_required":    p.ActionRequired,
	}
	if err := s.requests.UpdateStatus(ctx, id, req.Status, req.Status, fields); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, preconditionError("request status changed, retry")
		}
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, actorID, "request_recalculate_priority", entityBloodRequest, id,
		fmt.Sprintf("Priority %d (%s)", p.Score, p.Category))
	return req, nil
}

// DeleteRequest removes a request permanently
func (s *BloodRequestService) DeleteRequest(ctx context.Context, id uint, adminID *uint) error {
	if err := s.requests.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return &NotFoundError{Resource: "blood request"}
		}
		return err
	}
	recordAudit(ctx, s.audit, s.log, adminID, "request_delete", entityBloodRequest, id, "Request deleted")
	return nil
}

// GetAuditTrail returns every audit row written for a request, oldest first.
// Rows outlive the request so the trail of a deleted request stays readable.
func (s *BloodRequestService) GetAuditTrail(ctx context.Context, id uint) ([]models.AuditLog, error) {
	return s.audit.ListForEntity(ctx, entityBloodRequest, id)
}

// ListRequests returns one page of requests. Blood bank queues are ordered by priority.
func (s *BloodRequestService) ListRequests(ctx context.Context, f repository.RequestFilter) (*RequestPage, error) {
	for _, st := range f.Statuses {
		if !st.IsValid() {
			return nil, validationError("invalid status %q", st)
		}
	}
	if f.Urgency != "" && !f.Urgency.IsValid() {
		return nil, validationError("invalid urgency %q", f.Urgency)
	}
	if f.BloodGroup != "" && !f.BloodGroup.IsValid() {
		return nil, validationError("invalid blood group %q", f.BloodGroup)
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}

	requests, total, err := s.requests.List(ctx, f)
	if err != nil {
		return nil, err
	}

	return &RequestPage{
		Requests:   requests,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: int((total + int64(f.Limit) - 1) / int64(f.Limit)),
	}, nil
}

// ListCriticalRequests returns open requests with CRITICAL urgency or priority, highest score first
func (s *BloodRequestService) ListCriticalRequests(ctx context.Context, limit int) (*RequestPage, error) {
	return s.ListRequests(ctx, repository.RequestFilter{
		Statuses:        models.OpenStatuses,
		CriticalOnly:    true,
		OrderByPriority: true,
		Limit:           limit,
	})
}

// GetStatistics aggregates requests for a hospital, a bank, both or everything
func (s *BloodRequestService) GetStatistics(ctx context.Context, hospitalID, bloodBankID *uint) (*Statistics, error) {
	agg, err := s.requests.Statistics(ctx, repository.StatisticsFilter{HospitalID: hospitalID, BloodBankID: bloodBankID})
	if err != nil {
		return nil, err
	}

	stats := &Statistics{RequestStatistics: agg}
	if bloodBankID != nil {
		if stats.BloodBankTotals, err = s.stock.BankStatistics(ctx, *bloodBankID); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// GetAverageResponseTime averages the time to first response in minutes
func (s *BloodRequestService) GetAverageResponseTime(ctx context.Context, bloodBankID *uint) (*ResponseTime, error) {
	samples, err := s.requests.ResponseTimes(ctx, bloodBankID)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return &ResponseTime{}, nil
	}

	var total time.Duration
	for _, sample := range samples {
		if d := sample.RespondedAt.Sub(sample.CreatedAt); d > 0 {
			total += d
		}
	}
	avg := total.Minutes() / float64(len(samples))

	return &ResponseTime{
		AverageMinutes:    decimal.NewFromFloat(avg).Round(2).InexactFloat64(),
		RespondedRequests: len(samples),
	}, nil
}

// transition applies a lifecycle action through a guarded status update
func (s *BloodRequestService) transition(ctx context.Context, req *models.BloodRequest, action models.RequestAction, fields map[string]interface{}) error {
	next, err := models.NextStatus(req.Status, action)
	if err != nil {
		return transitionError(err)
	}
	if err := s.requests.UpdateStatus(ctx, req.ID, req.Status, next, fields); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return preconditionError("request is no longer %s, refresh and retry", req.Status)
		}
		return err
	}
	return nil
}

// applyFulfillment commits the status change, stock decrement and statistics in one unit
func (s *BloodRequestService) applyFulfillment(ctx context.Context, req *models.BloodRequest, action models.RequestAction, units int, fields map[string]interface{}) error {
	next, err := models.NextStatus(req.Status, action)
	if err != nil {
		return transitionError(err)
	}
	if units > req.UnitsRequired {
		return validationError("unitsFulfilled (%d) cannot exceed unitsRequired (%d)", units, req.UnitsRequired)
	}

	fields["units_fulfilled"] = units
	fields["fulfilled_at"] = s.now()

	err = s.requests.Fulfill(ctx, repository.Fulfillment{
		RequestID:   req.ID,
		From:        req.Status,
		To:          next,
		BloodBankID: req.BloodBankID,
		BloodGroup:  req.BloodGroup,
		Units:       units,
		Fields:      fields,
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrStaleStatus):
		return preconditionError("request is no longer %s, refresh and retry", req.Status)
	case errors.Is(err, repository.ErrInsufficientStock):
		available, lookupErr := s.stock.AvailableUnits(ctx, req.BloodBankID, req.BloodGroup)
		if lookupErr != nil {
			return lookupErr
		}
		return &InsufficientStockError{BloodGroup: req.BloodGroup, Requested: units, Available: available}
	default:
		s.log.Error("fulfillment failed", zap.Uint("request_id", req.ID), zap.Error(err))
		return err
	}

	s.priority.InvalidateAvailability(ctx, req.BloodGroup)
	return nil
}

// checkAdmission rejects demand the bank cannot cover
func (s *BloodRequestService) checkAdmission(ctx context.Context, bankID uint, group models.BloodGroup, units int) error {
	available, err := s.stock.AvailableUnits(ctx, bankID, group)
	if err != nil {
		return err
	}
	if units > available {
		return &InsufficientStockError{BloodGroup: group, Requested: units, Available: available}
	}
	return nil
}

func (s *BloodRequestService) findRequest(ctx context.Context, id uint) (*models.BloodRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, &NotFoundError{Resource: "blood request"}
		}
		return nil, err
	}
	return req, nil
}

func (s *BloodRequestService) findOrganization(ctx context.Context, id uint, orgType models.OrganizationType) (*models.Organization, error) {
	org, err := s.orgs.FindByIDAndType(ctx, id, orgType)
	if err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			resource := "hospital"
			if orgType == models.OrganizationBloodBank {
				resource = "blood bank"
			}
			return nil, &NotFoundError{Resource: resource}
		}
		return nil, err
	}
	return org, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
