package repository

import (
	"context"
	"errors"
	"time"

	"blood-request-routing/internal/models"

	"gorm.io/gorm"
)

// RequestFilter narrows request listings. Zero values mean "any".
type RequestFilter struct {
	HospitalID      *uint
	BloodBankID     *uint
	Statuses        []models.RequestStatus
	Urgency         models.Urgency
	BloodGroup      models.BloodGroup
	CriticalOnly    bool
	OrderByPriority bool
	Page            int
	Limit           int
}

// StatisticsFilter scopes request statistics to a hospital and/or blood bank
type StatisticsFilter struct {
	HospitalID  *uint
	BloodBankID *uint
}

// RequestStatistics aggregates requests by status and urgency
type RequestStatistics struct {
	Total               int64                          `json:"total"`
	ByStatus            map[models.RequestStatus]int64 `json:"by_status"`
	ByUrgency           map[models.Urgency]int64       `json:"by_urgency"`
	TotalUnitsRequested int64                          `json:"total_units_requested"`
	TotalUnitsFulfilled int64                          `json:"total_units_fulfilled"`
}

// ResponseSample is the creation and first response time of one request
type ResponseSample struct {
	CreatedAt   time.Time
	RespondedAt time.Time
}

// Fulfillment moves a request out of its current status while taking units out of stock.
// The status change, the stock decrement and both statistics increments commit together.
type Fulfillment struct {
	RequestID   uint
	From        models.RequestStatus
	To          models.RequestStatus
	BloodBankID uint
	BloodGroup  models.BloodGroup
	Units       int
	Fields      map[string]interface{}
}

type BloodRequestRepository struct {
	db *gorm.DB
}

func NewBloodRequestRepo(db *gorm.DB) *BloodRequestRepository {
	return &BloodRequestRepository{db: db}
}

// Create persists a new request
func (r *BloodRequestRepository) Create(ctx context.Context, req *models.BloodRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// FindByID retrieves a request with its communication log
func (r *BloodRequestRepository) FindByID(ctx context.Context, id uint) (*models.BloodRequest, error) {
	var req models.BloodRequest
	err := r.db.WithContext(ctx).
		Preload("CommunicationLog", func(db *gorm.DB) *gorm.DB {
			return db.Order("request_communications.id ASC")
		}).
		First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// UpdateStatus moves a request from one status to another, applying fields in the same statement.
// Returns ErrStaleStatus when the request is no longer in the expected status.
func (r *BloodRequestRepository) UpdateStatus(ctx context.Context, id uint, from, to models.RequestStatus, fields map[string]interface{}) error {
	return updateStatus(r.db.WithContext(ctx), id, from, to, fields)
}

// Fulfill applies a fulfillment atomically
func (r *BloodRequestRepository) Fulfill(ctx context.Context, f Fulfillment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateStatus(tx, f.RequestID, f.From, f.To, f.Fields); err != nil {
			return err
		}
		if err := decrementStock(tx, f.BloodBankID, f.BloodGroup, f.Units); err != nil {
			return err
		}
		if err := incrementStatistic(tx, f.BloodBankID, models.StatHospitalRequestsFulfilled, 1); err != nil {
			return err
		}
		return incrementStatistic(tx, f.BloodBankID, models.StatUnitsDistributed, int64(f.Units))
	})
}

// AppendCommunication adds an entry to a request's communication log
func (r *BloodRequestRepository) AppendCommunication(ctx context.Context, entry *models.CommunicationEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns one page of requests matching the filter and the total match count
func (r *BloodRequestRepository) List(ctx context.Context, f RequestFilter) ([]models.BloodRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BloodRequest{})

	if f.HospitalID != nil {
		query = query.Where("hospital_id = ?", *f.HospitalID)
	}
	if f.BloodBankID != nil {
		query = query.Where("blood_bank_id = ?", *f.BloodBankID)
	}
	if len(f.Statuses) > 0 {
		query = query.Where("status IN ?", f.Statuses)
	}
	if f.Urgency != "" {
		query = query.Where("urgency = ?", f.Urgency)
	}
	if f.BloodGroup != "" {
		query = query.Where("blood_group = ?", f.BloodGroup)
	}
	if f.CriticalOnly {
		query = query.Where("(urgency = ? OR priority_category = ?)", models.UrgencyCritical, models.PriorityCritical)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.OrderByPriority {
		query = query.Order("priority_score DESC").Order("created_at ASC")
	} else {
		query = query.Order("created_at DESC")
	}
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * f.Limit).Limit(f.Limit)
	}

	var requests []models.BloodRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Delete removes a request and its communication log
func (r *BloodRequestRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", id).Delete(&models.CommunicationEntry{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.BloodRequest{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRequestNotFound
		}
		return nil
	})
}

// Statistics aggregates requests in scope by status and urgency
func (r *BloodRequestRepository) Statistics(ctx context.Context, f StatisticsFilter) (*RequestStatistics, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.BloodRequest{})
		if f.HospitalID != nil {
			q = q.Where("hospital_id = ?", *f.HospitalID)
		}
		if f.BloodBankID != nil {
			q = q.Where("blood_bank_id = ?", *f.BloodBankID)
		}
		return q
	}

	var byStatus []struct {
		Status    models.RequestStatus
		Count     int64
		Requested int64
		Fulfilled int64
	}
	err := scope().
		Select("status, COUNT(*) AS count, " +
			"COALESCE(SUM(units_required), 0) AS requested, " +
			"COALESCE(SUM(units_fulfilled), 0) AS fulfilled").
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, err
	}

	var byUrgency []struct {
		Urgency models.Urgency
		Count   int64
	}
	if err := scope().Select("urgency, COUNT(*) AS count").Group("urgency").Scan(&byUrgency).Error; err != nil {
		return nil, err
	}

	stats := &RequestStatistics{
		ByStatus:  make(map[models.RequestStatus]int64, len(models.RequestStatuses)),
		ByUrgency: make(map[models.Urgency]int64, 4),
	}
	for _, s := range models.RequestStatuses {
		stats.ByStatus[s] = 0
	}
	for _, row := range byStatus {
		stats.ByStatus[row.Status] = row.Count
		stats.Total += row.Count
		stats.TotalUnitsRequested += row.Requested
		stats.TotalUnitsFulfilled += row.Fulfilled
	}
	for _, row := range byUrgency {
		stats.ByUrgency[row.Urgency] = row.Count
	}
	return stats, nil
}

// ResponseTimes returns creation and response times of every responded request, optionally for one bank
func (r *BloodRequestRepository) ResponseTimes(ctx context.Context, bloodBankID *uint) ([]ResponseSample, error) {
	query := r.db.WithContext(ctx).
		Model(&models.BloodRequest{}).
		Select("created_at, responded_at").
		Where("responded_at IS NOT NULL")
	if bloodBankID != nil {
		query = query.Where("blood_bank_id = ?", *bloodBankID)
	}

	var samples []ResponseSample
	err := query.Scan(&samples).Error
	return samples, err
}

func updateStatus(db *gorm.DB, id uint, from, to models.RequestStatus, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["status"] = to

	res := db.Model(&models.BloodRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}
