package models

import "time"

// BloodStock is the number of units a blood bank holds for one group
type BloodStock struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	BloodBankID uint       `gorm:"not null;uniqueIndex:idx_stock_bank_group" json:"blood_bank_id"`
	BloodGroup  BloodGroup `gorm:"size:3;not null;uniqueIndex:idx_stock_bank_group" json:"blood_group"`
	Units       int        `gorm:"not null;default:0" json:"units"`
	LastUpdated time.Time  `json:"last_updated"`
}

// TableName specifies the table name for BloodStock model
func (BloodStock) TableName() string {
	return "blood_stocks"
}

// StockLevel is one entry of a bank's stock map
type StockLevel struct {
	Units       int        `json:"units"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// StockMap is a bank's stock keyed by blood group
type StockMap map[BloodGroup]StockLevel

// Available returns the units held for g, zero when never stocked
func (m StockMap) Available(g BloodGroup) int {
	return m[g].Units
}

// BloodAvailability is a stock snapshot for one group across all active banks
type BloodAvailability struct {
	BloodGroup     BloodGroup `json:"blood_group"`
	TotalUnits     int        `json:"total_units"`
	BanksWithStock int        `json:"banks_with_stock"`
	CheckedAt      time.Time  `json:"checked_at"`
}
