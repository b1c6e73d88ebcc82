package service

import (
	"context"
	"reflect"
	"strings"

	"blood-request-routing/internal/models"
	"blood-request-routing/internal/repository"

	"github.com/go-playground/validator/v10"
)

// RequestStore persists blood requests
type RequestStore interface {
	Create(ctx context.Context, req *models.BloodRequest) error
	FindByID(ctx context.Context, id uint) (*models.BloodRequest, error)
	UpdateStatus(ctx context.Context, id uint, from, to models.RequestStatus, fields map[string]interface{}) error
	Fulfill(ctx context.Context, f repository.Fulfillment) error
	AppendCommunication(ctx context.Context, entry *models.CommunicationEntry) error
	List(ctx context.Context, f repository.RequestFilter) ([]models.BloodRequest, int64, error)
	Delete(ctx context.Context, id uint) error
	Statistics(ctx context.Context, f repository.StatisticsFilter) (*repository.RequestStatistics, error)
	ResponseTimes(ctx context.Context, bloodBankID *uint) ([]repository.ResponseSample, error)
}

// StockStore reads and adjusts blood bank stock
type StockStore interface {
	FindByBank(ctx context.Context, bankID uint) (models.StockMap, error)
	AvailableUnits(ctx context.Context, bankID uint, group models.BloodGroup) (int, error)
	UnitsByBank(ctx context.Context, group models.BloodGroup) (map[uint]int, error)
	UpdateStock(ctx context.Context, bankID uint, group models.BloodGroup, delta int) (*models.BloodStock, error)
	Availability(ctx context.Context, group models.BloodGroup) (*models.BloodAvailability, error)
	BankStatistics(ctx context.Context, bankID uint) (*models.BloodBankStatistics, error)
}

// OrganizationLookup resolves hospitals and blood banks from the single organization store
type OrganizationLookup interface {
	FindByIDAndType(ctx context.Context, id uint, orgType models.OrganizationType) (*models.Organization, error)
	ListByType(ctx context.Context, orgType models.OrganizationType) ([]models.Organization, error)
}

// AuditLogger records state-changing actions and reads them back
type AuditLogger interface {
	CreateAuditLog(ctx context.Context, actorID *uint, action, entity string, entityID uint, details string) error
	ListForEntity(ctx context.Context, entity string, entityID uint) ([]models.AuditLog, error)
}

// AvailabilityCache holds recent availability snapshots. Get returns nil on a miss.
type AvailabilityCache interface {
	Get(ctx context.Context, group models.BloodGroup) (*models.BloodAvailability, error)
	Set(ctx context.Context, availability *models.BloodAvailability) error
	Invalidate(ctx context.Context, group models.BloodGroup) error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match what callers sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}
