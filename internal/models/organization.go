package models

import (
	"time"

	"blood-request-routing/pkg/geo"
)

// OrganizationType distinguishes the kinds of organization sharing one table
type OrganizationType string

const (
	OrganizationHospital  OrganizationType = "hospital"
	OrganizationBloodBank OrganizationType = "bloodbank"
	OrganizationNGO       OrganizationType = "ngo"
)

// Organization is a hospital, blood bank or NGO
type Organization struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Type      OrganizationType `gorm:"size:20;not null;index" json:"type"`
	Code      string           `gorm:"size:50;uniqueIndex" json:"code"`
	Name      string           `gorm:"size:255;not null" json:"name"`
	Email     string           `gorm:"size:255" json:"email,omitempty"`
	Phone     string           `gorm:"size:50" json:"phone,omitempty"`
	Address   string           `gorm:"type:text" json:"address,omitempty"`
	City      string           `gorm:"size:100" json:"city,omitempty"`
	Latitude  *float64         `json:"latitude,omitempty"`
	Longitude *float64         `json:"longitude,omitempty"`
	IsActive  bool             `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TableName specifies the table name for Organization model
func (Organization) TableName() string {
	return "organizations"
}

// Location returns the organization's point, or false when coordinates were never set
func (o *Organization) Location() (geo.Point, bool) {
	if o.Latitude == nil || o.Longitude == nil {
		return geo.Point{}, false
	}
	return geo.GeoJSONPoint(*o.Longitude, *o.Latitude), true
}

// OrganizationDetails is the public view of an organization attached to responses
type OrganizationDetails struct {
	ID       uint             `json:"id"`
	Type     OrganizationType `json:"type"`
	Name     string           `json:"name"`
	Email    string           `json:"email,omitempty"`
	Phone    string           `json:"phone,omitempty"`
	Address  string           `json:"address,omitempty"`
	City     string           `json:"city,omitempty"`
	Location *geo.Point       `json:"location,omitempty"`
}

// Details builds the public view
func (o *Organization) Details() OrganizationDetails {
	d := OrganizationDetails{
		ID:      o.ID,
		Type:    o.Type,
		Name:    o.Name,
		Email:   o.Email,
		Phone:   o.Phone,
		Address: o.Address,
		City:    o.City,
	}
	if loc, ok := o.Location(); ok {
		d.Location = &loc
	}
	return d
}

// Statistic names accepted by IncrementStatistic
const (
	StatHospitalRequestsFulfilled = "total_hospital_requests_fulfilled"
	StatUnitsDistributed          = "total_units_distributed"
)

// BloodBankStatistics holds running totals per blood bank
type BloodBankStatistics struct {
	BloodBankID                    uint      `gorm:"primaryKey;autoIncrement:false" json:"blood_bank_id"`
	TotalHospitalRequestsFulfilled int64     `gorm:"not null;default:0" json:"total_hospital_requests_fulfilled"`
	TotalUnitsDistributed          int64     `gorm:"not null;default:0" json:"total_units_distributed"`
	UpdatedAt                      time.Time `json:"updated_at"`
}

// TableName specifies the table name for BloodBankStatistics model
func (BloodBankStatistics) TableName() string {
	return "blood_bank_statistics"
}
