package service

import (
	"context"
	"errors"
	"fmt"

	"blood-request-routing/internal/models"
	"blood-request-routing/internal/repository"

	"go.uber.org/zap"
)

// BankStock is a blood bank's full stock sheet with its running totals
type BankStock struct {
	BloodBank  models.OrganizationDetails  `json:"blood_bank"`
	Stock      models.StockMap             `json:"stock"`
	TotalUnits int                         `json:"total_units"`
	Statistics *models.BloodBankStatistics `json:"statistics"`
}

type BloodStockService struct {
	stock    StockStore
	orgs     OrganizationLookup
	priority *PriorityService
	audit    AuditLogger
	log      *zap.Logger
}

func NewBloodStockService(
	stock StockStore,
	orgs OrganizationLookup,
	priority *PriorityService,
	audit AuditLogger,
	log *zap.Logger,
) *BloodStockService {
	return &BloodStockService{
		stock:    stock,
		orgs:     orgs,
		priority: priority,
		audit:    audit,
		log:      log,
	}
}

// GetBankStock returns every blood group's level for a bank, zero for groups never stocked
func (s *BloodStockService) GetBankStock(ctx context.Context, bankID uint) (*BankStock, error) {
	bank, err := s.findBloodBank(ctx, bankID)
	if err != nil {
		return nil, err
	}

	stored, err := s.stock.FindByBank(ctx, bankID)
	if err != nil {
		return nil, err
	}
	stats, err := s.stock.BankStatistics(ctx, bankID)
	if err != nil {
		return nil, err
	}

	sheet := &BankStock{
		BloodBank:  bank.Details(),
		Stock:      make(models.StockMap, len(models.BloodGroups)),
		Statistics: stats,
	}
	for _, g := range models.BloodGroups {
		level := stored[g]
		sheet.Stock[g] = level
		sheet.TotalUnits += level.Units
	}
	return sheet, nil
}

// UpdateStock applies a signed delta to one group of a bank's stock
func (s *BloodStockService) UpdateStock(ctx context.Context, bankID uint, group models.BloodGroup, delta int, actorID *uint) (*models.BloodStock, error) {
	if !group.IsValid() {
		return nil, validationError("invalid blood group %q", group)
	}
	if delta == 0 {
		return nil, validationError("delta must not be zero")
	}
	if _, err := s.findBloodBank(ctx, bankID); err != nil {
		return nil, err
	}

	updated, err := s.stock.UpdateStock(ctx, bankID, group, delta)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			available, lookupErr := s.stock.AvailableUnits(ctx, bankID, group)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return nil, &InsufficientStockError{BloodGroup: group, Requested: -delta, Available: available}
		}
		return nil, err
	}

	s.priority.InvalidateAvailability(ctx, group)
	recordAudit(ctx, s.audit, s.log, actorID, "stock_update", entityBloodStock, bankID,
		fmt.Sprintf("Blood group %s changed by %+d to %d units", group, delta, updated.Units))

	return updated, nil
}

// GetAvailability returns the cross-bank snapshot for one group
func (s *BloodStockService) GetAvailability(ctx context.Context, group models.BloodGroup) (*models.BloodAvailability, error) {
	return s.priority.GetBloodAvailability(ctx, group)
}

func (s *BloodStockService) findBloodBank(ctx context.Context, bankID uint) (*models.Organization, error) {
	bank, err := s.orgs.FindByIDAndType(ctx, bankID, models.OrganizationBloodBank)
	if err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			return nil, &NotFoundError{Resource: "blood bank"}
		}
		return nil, err
	}
	return bank, nil
}
