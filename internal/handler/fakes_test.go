package handler

import (
	"context"
	"sync"
	"time"

	"blood-request-routing/internal/models"
	"blood-request-routing/internal/repository"

	"gorm.io/datatypes"
)

// memStore is one in-memory backend for every store the services need
type memStore struct {
	mu       sync.Mutex
	orgs     map[uint]models.Organization
	units    map[uint]map[models.BloodGroup]int
	stats    map[uint]*models.BloodBankStatistics
	requests map[uint]models.BloodRequest
	comms    map[uint][]models.CommunicationEntry
	audit    []models.AuditLog
	nextID   uint
}

func newMemStore() *memStore {
	return &memStore{
		orgs:     map[uint]models.Organization{},
		units:    map[uint]map[models.BloodGroup]int{},
		stats:    map[uint]*models.BloodBankStatistics{},
		requests: map[uint]models.BloodRequest{},
		comms:    map[uint][]models.CommunicationEntry{},
	}
}

func (s *memStore) addOrg(o models.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[o.ID] = o
}

func (s *memStore) setStock(bankID uint, g models.BloodGroup, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.units[bankID] == nil {
		s.units[bankID] = map[models.BloodGroup]int{}
	}
	s.units[bankID][g] = n
}

func (s *memStore) stock(bankID uint, g models.BloodGroup) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.units[bankID][g]
}

// OrganizationLookup

func (s *memStore) FindByIDAndType(_ context.Context, id uint, t models.OrganizationType) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orgs[id]
	if !ok || o.Type != t {
		return nil, repository.ErrOrganizationNotFound
	}
	return &o, nil
}

func (s *memStore) ListByType(_ context.Context, t models.OrganizationType) ([]models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Organization
	for _, o := range s.orgs {
		if o.Type == t {
			out = append(out, o)
		}
	}
	return out, nil
}

// StockStore

func (s *memStore) FindByBank(_ context.Context, bankID uint) (models.StockMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := models.StockMap{}
	for g, n := range s.units[bankID] {
		out[g] = models.StockLevel{Units: n}
	}
	return out, nil
}

func (s *memStore) AvailableUnits(_ context.Context, bankID uint, g models.BloodGroup) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.units[bankID][g], nil
}

func (s *memStore) UnitsByBank(_ context.Context, g models.BloodGroup) (map[uint]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[uint]int{}
	for bank, groups := range s.units {
		if groups[g] > 0 {
			out[bank] = groups[g]
		}
	}
	return out, nil
}

func (s *memStore) UpdateStock(_ context.Context, bankID uint, g models.BloodGroup, delta int) (*models.BloodStock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.units[bankID][g] + delta
	if next < 0 {
		return nil, repository.ErrInsufficientStock
	}
	if s.units[bankID] == nil {
		s.units[bankID] = map[models.BloodGroup]int{}
	}
	s.units[bankID][g] = next
	return &models.BloodStock{BloodBankID: bankID, BloodGroup: g, Units: next}, nil
}

func (s *memStore) Availability(_ context.Context, g models.BloodGroup) (*models.BloodAvailability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &models.BloodAvailability{BloodGroup: g, CheckedAt: time.Now().UTC()}
	for _, groups := range s.units {
		if groups[g] > 0 {
			a.TotalUnits += groups[g]
			a.BanksWithStock++
		}
	}
	return a, nil
}

func (s *memStore) BankStatistics(_ context.Context, bankID uint) (*models.BloodBankStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stats[bankID]; ok {
		cp := *st
		return &cp, nil
	}
	return &models.BloodBankStatistics{BloodBankID: bankID}, nil
}

// RequestStore

func (s *memStore) Create(_ context.Context, req *models.BloodRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	req.ID = s.nextID
	s.requests[req.ID] = *req
	return nil
}

func (s *memStore) FindByID(_ context.Context, id uint) (*models.BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}
	req.CommunicationLog = append([]models.CommunicationEntry{}, s.comms[id]...)
	return &req, nil
}

func (s *memStore) UpdateStatus(_ context.Context, id uint, from, to models.RequestStatus, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok || req.Status != from {
		return repository.ErrStaleStatus
	}
	apply(&req, fields)
	req.Status = to
	s.requests[id] = req
	return nil
}

func (s *memStore) Fulfill(_ context.Context, f repository.Fulfillment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[f.RequestID]
	if !ok || req.Status != f.From {
		return repository.ErrStaleStatus
	}
	if s.units[f.BloodBankID][f.BloodGroup] < f.Units {
		return repository.ErrInsufficientStock
	}
	apply(&req, f.Fields)
	req.Status = f.To
	s.requests[f.RequestID] = req
	s.units[f.BloodBankID][f.BloodGroup] -= f.Units

	st, ok := s.stats[f.BloodBankID]
	if !ok {
		st = &models.BloodBankStatistics{BloodBankID: f.BloodBankID}
		s.stats[f.BloodBankID] = st
	}
	st.TotalHospitalRequestsFulfilled++
	st.TotalUnitsDistributed += int64(f.Units)
	return nil
}

func (s *memStore) AppendCommunication(_ context.Context, e *models.CommunicationEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comms[e.RequestID] = append(s.comms[e.RequestID], *e)
	return nil
}

func (s *memStore) List(_ context.Context, f repository.RequestFilter) ([]models.BloodRequest, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.BloodRequest{}
	for _, req := range s.requests {
		if f.HospitalID != nil && req.HospitalID != *f.HospitalID {
			continue
		}
		if f.BloodBankID != nil && req.BloodBankID != *f.BloodBankID {
			continue
		}
		out = append(out, req)
	}
	return out, int64(len(out)), nil
}

func (s *memStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[id]; !ok {
		return repository.ErrRequestNotFound
	}
	delete(s.requests, id)
	return nil
}

func (s *memStore) Statistics(_ context.Context, f repository.StatisticsFilter) (*repository.RequestStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &repository.RequestStatistics{
		ByStatus:  map[models.RequestStatus]int64{},
		ByUrgency: map[models.Urgency]int64{},
	}
	for _, req := range s.requests {
		if f.HospitalID != nil && req.HospitalID != *f.HospitalID {
			continue
		}
		if f.BloodBankID != nil && req.BloodBankID != *f.BloodBankID {
			continue
		}
		stats.Total++
		stats.ByStatus[req.Status]++
		stats.ByUrgency[req.Urgency]++
		stats.TotalUnitsRequested += int64(req.UnitsRequired)
		stats.TotalUnitsFulfilled += int64(req.UnitsFulfilled)
	}
	return stats, nil
}

func (s *memStore) ResponseTimes(_ context.Context, _ *uint) ([]repository.ResponseSample, error) {
	return nil, nil
}

// AuditLogger

func (s *memStore) CreateAuditLog(_ context.Context, actorID *uint, action, entity string, entityID uint, details string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, models.AuditLog{
		ID: uint(len(s.audit) + 1), ActorID: actorID, Action: action, Entity: entity, EntityID: entityID, Details: details,
	})
	return nil
}

func (s *memStore) ListForEntity(_ context.Context, entity string, entityID uint) ([]models.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.AuditLog{}
	for _, row := range s.audit {
		if row.Entity == entity && row.EntityID == entityID {
			out = append(out, row)
		}
	}
	return out, nil
}

// apply covers the columns the lifecycle writes; others are irrelevant to HTTP assertions
func apply(req *models.BloodRequest, fields map[string]interface{}) {
	for column, v := range fields {
		switch column {
		case "rejection_reason":
			req.RejectionReason = v.(string)
		case "cancellation_reason":
			req.CancellationReason = v.(string)
		case "blood_bank_response":
			req.BloodBankResponse = v.(string)
		case "units_fulfilled":
			req.UnitsFulfilled = v.(int)
		case "approval_approved":
			req.AdminApproval.Approved = v.(bool)
		case "blood_bank_id":
			req.BloodBankID = v.(uint)
		case "batch_numbers":
			req.BatchNumbers = v.(datatypes.JSONSlice[string])
		case "collection_method":
			req.CollectionMethod = v.(models.CollectionMethod)
		case "responded_at":
			t := v.(time.Time)
			req.RespondedAt = &t
		}
	}
}
