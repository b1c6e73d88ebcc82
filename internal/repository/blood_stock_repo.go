package repository

import (
	"context"
	"errors"
	"time"

	"blood-request-routing/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BloodStockRepository struct {
	db *gorm.DB
}

func NewBloodStockRepo(db *gorm.DB) *BloodStockRepository {
	return &BloodStockRepository{db: db}
}

// FindByBank returns the bank's stock keyed by blood group
func (r *BloodStockRepository) FindByBank(ctx context.Context, bankID uint) (models.StockMap, error) {
	var rows []models.BloodStock
	if err := r.db.WithContext(ctx).Where("blood_bank_id = ?", bankID).Find(&rows).Error; err != nil {
		return nil, err
	}

	stock := make(models.StockMap, len(rows))
	for _, row := range rows {
		updated := row.LastUpdated
		stock[row.BloodGroup] = models.StockLevel{Units: row.Units, LastUpdated: &updated}
	}
	return stock, nil
}

// AvailableUnits returns the units a bank holds for one group, zero when never stocked
func (r *BloodStockRepository) AvailableUnits(ctx context.Context, bankID uint, group models.BloodGroup) (int, error) {
	var row models.BloodStock
	err := r.db.WithContext(ctx).
		Where("blood_bank_id = ? AND blood_group = ?", bankID, group).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Units, nil
}

// UnitsByBank returns units held for a group by every active blood bank that stocks it
func (r *BloodStockRepository) UnitsByBank(ctx context.Context, group models.BloodGroup) (map[uint]int, error) {
	var rows []models.BloodStock
	err := r.db.WithContext(ctx).
		Joins("INNER JOIN organizations ON organizations.id = blood_stocks.blood_bank_id").
		Where("blood_stocks.blood_group = ? AND organizations.type = ? AND organizations.is_active = ?",
			group, models.OrganizationBloodBank, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	units := make(map[uint]int, len(rows))
	for _, row := range rows {
		units[row.BloodBankID] = row.Units
	}
	return units, nil
}

// UpdateStock applies a signed delta to a bank's stock; the result may not go below zero
func (r *BloodStockRepository) UpdateStock(ctx context.Context, bankID uint, group models.BloodGroup, delta int) (*models.BloodStock, error) {
	var stock models.BloodStock
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("blood_bank_id = ? AND blood_group = ?", bankID, group).
			First(&stock).Error

		now := time.Now().UTC()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if delta < 0 {
				return ErrInsufficientStock
			}
			stock = models.BloodStock{BloodBankID: bankID, BloodGroup: group, Units: delta, LastUpdated: now}
			return tx.Create(&stock).Error
		}
		if err != nil {
			return err
		}

		if stock.Units+delta < 0 {
			return ErrInsufficientStock
		}
		stock.Units += delta
		stock.LastUpdated = now
		return tx.Model(&stock).Updates(map[string]interface{}{
			"units":        stock.Units,
			"last_updated": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

// Availability sums a group's units across all active blood banks
func (r *BloodStockRepository) Availability(ctx context.Context, group models.BloodGroup) (*models.BloodAvailability, error) {
	var row struct {
		TotalUnits     int
		BanksWithStock int
	}
	err := r.db.WithContext(ctx).
		Model(&models.BloodStock{}).
		Select("COALESCE(SUM(blood_stocks.units), 0) AS total_units, "+
			"COUNT(CASE WHEN blood_stocks.units > 0 THEN 1 END) AS banks_with_stock").
		Joins("INNER JOIN organizations ON organizations.id = blood_stocks.blood_bank_id").
		Where("blood_stocks.blood_group = ? AND organizations.type = ? AND organizations.is_active = ?",
			group, models.OrganizationBloodBank, true).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &models.BloodAvailability{
		BloodGroup:     group,
		TotalUnits:     row.TotalUnits,
		BanksWithStock: row.BanksWithStock,
		CheckedAt:      time.Now().UTC(),
	}, nil
}

// BankStatistics returns a bank's running totals, zeroed when nothing was fulfilled yet
func (r *BloodStockRepository) BankStatistics(ctx context.Context, bankID uint) (*models.BloodBankStatistics, error) {
	var stats models.BloodBankStatistics
	err := r.db.WithContext(ctx).Where("blood_bank_id = ?", bankID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.BloodBankStatistics{BloodBankID: bankID}, nil
		}
		return nil, err
	}
	return &stats, nil
}

// IncrementStatistic adds delta to one of the bank's running totals
func (r *BloodStockRepository) IncrementStatistic(ctx context.Context, bankID uint, name string, delta int64) error {
	return incrementStatistic(r.db.WithContext(ctx), bankID, name, delta)
}

// decrementStock removes units only while enough remain, in a single conditional update
func decrementStock(tx *gorm.DB, bankID uint, group models.BloodGroup, units int) error {
	res := tx.Model(&models.BloodStock{}).
		Where("blood_bank_id = ? AND blood_group = ? AND units >= ?", bankID, group, units).
		Updates(map[string]interface{}{
			"units":        gorm.Expr("units - ?", units),
			"last_updated": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func incrementStatistic(tx *gorm.DB, bankID uint, name string, delta int64) error {
	stats := models.BloodBankStatistics{BloodBankID: bankID, UpdatedAt: time.Now().UTC()}
	switch name {
	case models.StatHospitalRequestsFulfilled:
		stats.TotalHospitalRequestsFulfilled = delta
	case models.StatUnitsDistributed:
		stats.TotalUnitsDistributed = delta
	default:
		return ErrUnknownStatistic
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "blood_bank_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			name:         gorm.Expr("blood_bank_statistics."+name+" + ?", delta),
			"updated_at": stats.UpdatedAt,
		}),
	}).Create(&stats).Error
}
