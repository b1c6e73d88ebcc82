package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"blood-request-routing/internal/models"
	"blood-request-routing/internal/repository"
	"blood-request-routing/internal/scoring"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// memStock keeps stock and bank totals in memory
type memStock struct {
	mu    sync.Mutex
	units map[uint]map[models.BloodGroup]int
	stats map[uint]*models.BloodBankStatistics
	err   error
}

func newMemStock() *memStock {
	return &memStock{
		units: map[uint]map[models.BloodGroup]int{},
		stats: map[uint]*models.BloodBankStatistics{},
	}
}

func (s *memStock) set(bankID uint, group models.BloodGroup, units int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.units[bankID] == nil {
		s.units[bankID] = map[models.BloodGroup]int{}
	}
	s.units[bankID][group] = units
}

func (s *memStock) get(bankID uint, group models.BloodGroup) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.units[bankID][group]
}

func (s *memStock) FindByBank(_ context.Context, bankID uint) (models.StockMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := models.StockMap{}
	for g, n := range s.units[bankID] {
		out[g] = models.StockLevel{Units: n}
	}
	return out, nil
}

func (s *memStock) AvailableUnits(_ context.Context, bankID uint, group models.BloodGroup) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.units[bankID][group], nil
}

func (s *memStock) UnitsByBank(_ context.Context, group models.BloodGroup) (map[uint]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[uint]int{}
	for bank, groups := range s.units {
		if n := groups[group]; n > 0 {
			out[bank] = n
		}
	}
	return out, nil
}

func (s *memStock) UpdateStock(_ context.Context, bankID uint, group models.BloodGroup, delta int) (*models.BloodStock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.units[bankID][group]
	if current+delta < 0 {
		return nil, repository.ErrInsufficientStock
	}
	if s.units[bankID] == nil {
		s.units[bankID] = map[models.BloodGroup]int{}
	}
	s.units[bankID][group] = current + delta
	return &models.BloodStock{BloodBankID: bankID, BloodGroup: group, Units: current + delta, LastUpdated: testNow}, nil
}

func (s *memStock) Availability(_ context.Context, group models.BloodGroup) (*models.BloodAvailability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	a := &models.BloodAvailability{BloodGroup: group, CheckedAt: testNow}
	for _, groups := range s.units {
		if n := groups[group]; n > 0 {
			a.TotalUnits += n
			a.BanksWithStock++
		}
	}
	return a, nil
}

func (s *memStock) BankStatistics(_ context.Context, bankID uint) (*models.BloodBankStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stats[bankID]; ok {
		cp := *st
		return &cp, nil
	}
	return &models.BloodBankStatistics{BloodBankID: bankID}, nil
}

// memRequests keeps requests in memory. Fulfill checks everything before mutating
// so a failed fulfillment leaves no trace.
type memRequests struct {
	mu       sync.Mutex
	stock    *memStock
	rows     map[uint]*models.BloodRequest
	comms    map[uint][]models.CommunicationEntry
	nextID   uint
	samples  []repository.ResponseSample
	lastList repository.RequestFilter
}

func newMemRequests(stock *memStock) *memRequests {
	return &memRequests{
		stock: stock,
		rows:  map[uint]*models.BloodRequest{},
		comms: map[uint][]models.CommunicationEntry{},
	}
}

func (r *memRequests) Create(_ context.Context, req *models.BloodRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	req.ID = r.nextID
	cp := *req
	r.rows[req.ID] = &cp
	return nil
}

func (r *memRequests) FindByID(_ context.Context, id uint) (*models.BloodRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}
	cp := *row
	cp.CommunicationLog = append([]models.CommunicationEntry{}, r.comms[id]...)
	return &cp, nil
}

func (r *memRequests) UpdateStatus(_ context.Context, id uint, from, to models.RequestStatus, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.Status != from {
		return repository.ErrStaleStatus
	}
	cp := *row
	if err := applyFields(&cp, fields); err != nil {
		return err
	}
	cp.Status = to
	r.rows[id] = &cp
	return nil
}

func (r *memRequests) Fulfill(_ context.Context, f repository.Fulfillment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[f.RequestID]
	if !ok || row.Status != f.From {
		return repository.ErrStaleStatus
	}

	r.stock.mu.Lock()
	defer r.stock.mu.Unlock()
	if r.stock.units[f.BloodBankID][f.BloodGroup] < f.Units {
		return repository.ErrInsufficientStock
	}

	cp := *row
	if err := applyFields(&cp, f.Fields); err != nil {
		return err
	}
	cp.Status = f.To
	r.rows[f.RequestID] = &cp

	r.stock.units[f.BloodBankID][f.BloodGroup] -= f.Units
	st, ok := r.stock.stats[f.BloodBankID]
	if !ok {
		st = &models.BloodBankStatistics{BloodBankID: f.BloodBankID}
		r.stock.stats[f.BloodBankID] = st
	}
	st.TotalHospitalRequestsFulfilled++
	st.TotalUnitsDistributed += int64(f.Units)
	return nil
}

func (r *memRequests) AppendCommunication(_ context.Context, entry *models.CommunicationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uint(len(r.comms[entry.RequestID]) + 1)
	r.comms[entry.RequestID] = append(r.comms[entry.RequestID], *entry)
	return nil
}

func (r *memRequests) List(_ context.Context, f repository.RequestFilter) ([]models.BloodRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = f

	var out []models.BloodRequest
	for _, row := range r.rows {
		if f.HospitalID != nil && row.HospitalID != *f.HospitalID {
			continue
		}
		if f.BloodBankID != nil && row.BloodBankID != *f.BloodBankID {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, row.Status) {
			continue
		}
		if f.CriticalOnly && row.Urgency != models.UrgencyCritical && row.Priority.Category != models.PriorityCritical {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.OrderByPriority {
			return out[i].Priority.Score > out[j].Priority.Score
		}
		return out[i].ID > out[j].ID
	})

	total := int64(len(out))
	start := (f.Page - 1) * f.Limit
	if start > len(out) {
		start = len(out)
	}
	end := start + f.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *memRequests) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrRequestNotFound
	}
	delete(r.rows, id)
	delete(r.comms, id)
	return nil
}

func (r *memRequests) Statistics(_ context.Context, f repository.StatisticsFilter) (*repository.RequestStatistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &repository.RequestStatistics{
		ByStatus:  map[models.RequestStatus]int64{},
		ByUrgency: map[models.Urgency]int64{},
	}
	for _, row := range r.rows {
		if f.HospitalID != nil && row.HospitalID != *f.HospitalID {
			continue
		}
		if f.BloodBankID != nil && row.BloodBankID != *f.BloodBankID {
			continue
		}
		stats.Total++
		stats.ByStatus[row.Status]++
		stats.ByUrgency[row.Urgency]++
		stats.TotalUnitsRequested += int64(row.UnitsRequired)
		stats.TotalUnitsFulfilled += int64(row.UnitsFulfilled)
	}
	return stats, nil
}

func (r *memRequests) ResponseTimes(_ context.Context, _ *uint) ([]repository.ResponseSample, error) {
	return r.samples, nil
}

func containsStatus(statuses []models.RequestStatus, s models.RequestStatus) bool {
	for _, want := range statuses {
		if want == s {
			return true
		}
	}
	return false
}

// applyFields mirrors the column updates the gorm repository would run
func applyFields(req *models.BloodRequest, fields map[string]interface{}) error {
	for column, v := range fields {
		switch column {
		case "blood_bank_response":
			req.BloodBankResponse = v.(string)
		case "responded_at":
			req.RespondedAt = ptr(v.(time.Time))
		case "rejection_reason":
			req.RejectionReason = v.(string)
		case "cancellation_reason":
			req.CancellationReason = v.(string)
		case "approval_approved":
			req.AdminApproval.Approved = v.(bool)
		case "approval_approved_by":
			req.AdminApproval.ApprovedBy = ptr(v.(uint))
		case "approval_approved_at":
			req.AdminApproval.ApprovedAt = ptr(v.(time.Time))
		case "approval_remarks":
			req.AdminApproval.Remarks = v.(string)
		case "blood_bank_id":
			req.BloodBankID = v.(uint)
		case "processed_by":
			req.ProcessedBy = v.(*uint)
		case "processing_started_at":
			req.ProcessingStartedAt = ptr(v.(time.Time))
		case "units_fulfilled":
			req.UnitsFulfilled = v.(int)
		case "fulfilled_at":
			req.FulfilledAt = ptr(v.(time.Time))
		case "batch_numbers":
			req.BatchNumbers = v.(datatypes.JSONSlice[string])
		case "expiry_dates":
			req.ExpiryDates = v.(datatypes.JSONSlice[string])
		case "collection_method":
			req.CollectionMethod = v.(models.CollectionMethod)
		case "priority_score":
			req.Priority.Score = v.(int)
		case "priority_category":
			req.Priority.Category = v.(models.PriorityCategory)
		case "priority_urgency_score":
			req.Priority.Breakdown.UrgencyScore = v.(int)
		case "priority_rarity_score":
			req.Priority.Breakdown.RarityScore = v.(int)
		case "priority_time_score":
			req.Priority.Breakdown.TimeScore = v.(int)
		case "priority_availability_score":
			req.Priority.Breakdown.AvailabilityScore = v.(int)
		case "priority_calculated_at":
			req.Priority.CalculatedAt = v.(*time.Time)
		case "priority_action_required":
			req.Priority.ActionRequired = v.(string)
		default:
			return fmt.Errorf("unexpected column %q", column)
		}
	}
	return nil
}

// mockOrgs is a testify mock for organization lookups
type mockOrgs struct {
	mock.Mock
}

func (m *mockOrgs) FindByIDAndType(ctx context.Context, id uint, orgType models.OrganizationType) (*models.Organization, error) {
	args := m.Called(ctx, id, orgType)
	org, _ := args.Get(0).(*models.Organization)
	return org, args.Error(1)
}

func (m *mockOrgs) ListByType(ctx context.Context, orgType models.OrganizationType) ([]models.Organization, error) {
	args := m.Called(ctx, orgType)
	orgs, _ := args.Get(0).([]models.Organization)
	return orgs, args.Error(1)
}

// register makes an organization resolvable by id and type
func (m *mockOrgs) register(org *models.Organization) {
	m.On("FindByIDAndType", mock.Anything, org.ID, org.Type).Return(org, nil).Maybe()
}

// memAudit records audit rows
type memAudit struct {
	mu      sync.Mutex
	rows    []models.AuditLog
	actions []string
	err     error
}

func (a *memAudit) CreateAuditLog(_ context.Context, actorID *uint, action, entity string, entityID uint, details string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.rows = append(a.rows, models.AuditLog{
		ID: uint(len(a.rows) + 1), ActorID: actorID, Action: action,
		Entity: entity, EntityID: entityID, Details: details, CreatedAt: testNow,
	})
	a.actions = append(a.actions, action)
	return nil
}

func (a *memAudit) ListForEntity(_ context.Context, entity string, entityID uint) ([]models.AuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []models.AuditLog{}
	for _, row := range a.rows {
		if row.Entity == entity && row.EntityID == entityID {
			out = append(out, row)
		}
	}
	return out, nil
}

// memCache is an in-memory availability cache that counts its traffic
type memCache struct {
	mu          sync.Mutex
	entries     map[models.BloodGroup]models.BloodAvailability
	hits        int
	invalidated []models.BloodGroup
}

func newMemCache() *memCache {
	return &memCache{entries: map[models.BloodGroup]models.BloodAvailability{}}
}

func (c *memCache) Get(_ context.Context, group models.BloodGroup) (*models.BloodAvailability, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.entries[group]
	if !ok {
		return nil, nil
	}
	c.hits++
	return &a, nil
}

func (c *memCache) Set(_ context.Context, a *models.BloodAvailability) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[a.BloodGroup] = *a
	return nil
}

func (c *memCache) Invalidate(_ context.Context, group models.BloodGroup) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, group)
	c.invalidated = append(c.invalidated, group)
	return nil
}

// Fixture organizations: hospital 1 and bank 10 have coordinates, bank 20 does not
func testHospital() *models.Organization {
	return &models.Organization{ID: 1, Type: models.OrganizationHospital, Name: "City Hospital",
		Latitude: ptr(12.9716), Longitude: ptr(77.5946), IsActive: true}
}

func testBank() *models.Organization {
	return &models.Organization{ID: 10, Type: models.OrganizationBloodBank, Name: "Central Blood Bank",
		Latitude: ptr(12.9352), Longitude: ptr(77.6245), IsActive: true}
}

func testBankNoLocation() *models.Organization {
	return &models.Organization{ID: 20, Type: models.OrganizationBloodBank, Name: "Rural Blood Bank", IsActive: true}
}

type testEnv struct {
	requests *memRequests
	stock    *memStock
	orgs     *mockOrgs
	audit    *memAudit
	cache    *memCache
	priority *PriorityService
	svc      *BloodRequestService
	stockSvc *BloodStockService
}

func newTestEnv() *testEnv {
	log := zap.NewNop()
	stock := newMemStock()
	requests := newMemRequests(stock)
	orgs := &mockOrgs{}
	orgs.register(testHospital())
	orgs.register(testBank())
	orgs.register(testBankNoLocation())
	orgs.On("FindByIDAndType", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, repository.ErrOrganizationNotFound).Maybe()

	audit := &memAudit{}
	cache := newMemCache()
	calc := scoring.NewPriorityCalculator(scoring.DefaultStockReferenceUnits, func() time.Time { return testNow })
	priority := NewPriorityService(stock, cache, calc, log)

	svc := NewBloodRequestService(requests, stock, orgs, priority, scoring.NewUrgencyCalculator(), audit, log)
	svc.now = func() time.Time { return testNow }

	return &testEnv{
		requests: requests,
		stock:    stock,
		orgs:     orgs,
		audit:    audit,
		cache:    cache,
		priority: priority,
		svc:      svc,
		stockSvc: NewBloodStockService(stock, orgs, priority, audit, log),
	}
}

// newShiftedCalculator scores as if d has passed since testNow
func newShiftedCalculator(d time.Duration) *scoring.PriorityCalculator {
	return scoring.NewPriorityCalculator(scoring.DefaultStockReferenceUnits, func() time.Time { return testNow.Add(d) })
}
