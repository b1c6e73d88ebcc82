package models

import (
	"time"

	"gorm.io/datatypes"
)

// PriorityCategory is the band a priority score falls into
type PriorityCategory string

const (
	PriorityCritical PriorityCategory = "CRITICAL"
	PriorityHigh     PriorityCategory = "HIGH"
	PriorityMedium   PriorityCategory = "MEDIUM"
	PriorityLow      PriorityCategory = "LOW"
)

// PatientInfo holds the clinical attributes urgency is derived from
type PatientInfo struct {
	Age        int    `json:"age"`
	Condition  string `gorm:"size:255" json:"condition"`
	Department string `gorm:"size:100" json:"department"`
}

// PriorityBreakdown shows how each factor contributed to the score
type PriorityBreakdown struct {
	UrgencyScore      int `json:"urgency_score"`
	RarityScore       int `json:"rarity_score"`
	TimeScore         int `json:"time_score"`
	AvailabilityScore int `json:"availability_score"`
}

// Priority is the scored ranking embedded in every request
type Priority struct {
	Score          int               `gorm:"index" json:"score"`
	Category       PriorityCategory  `gorm:"size:10;index" json:"category"`
	Breakdown      PriorityBreakdown `gorm:"embedded" json:"breakdown"`
	CalculatedAt   *time.Time        `json:"calculated_at"`
	ActionRequired string            `gorm:"size:255" json:"action_required,omitempty"`
}

// AdminApproval records the super admin sign-off on CRITICAL requests
type AdminApproval struct {
	Approved   bool       `gorm:"default:false" json:"approved"`
	ApprovedBy *uint      `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	Remarks    string     `gorm:"type:text" json:"remarks,omitempty"`
}

// BloodRequest represents a hospital's request for units from a blood bank
type BloodRequest struct {
	ID                    uint                        `gorm:"primaryKey" json:"id"`
	HospitalID            uint                        `gorm:"index;not null" json:"hospital_id"`
	BloodBankID           uint                        `gorm:"index;not null" json:"blood_bank_id"`
	BloodGroup            BloodGroup                  `gorm:"size:3;not null;index" json:"blood_group"`
	UnitsRequired         int                         `gorm:"not null" json:"units_required"`
	Urgency               Urgency                     `gorm:"size:10;not null;index" json:"urgency"`
	UrgencyReasons        datatypes.JSONSlice[string] `json:"urgency_reasons,omitempty"`
	Patient               PatientInfo                 `gorm:"embedded;embeddedPrefix:patient_" json:"patient_info"`
	Priority              Priority                    `gorm:"embedded;embeddedPrefix:priority_" json:"priority"`
	Status                RequestStatus               `gorm:"size:20;not null;index" json:"status"`
	RequiresAdminApproval bool                        `gorm:"default:false" json:"requires_admin_approval"`
	AdminApproval         AdminApproval               `gorm:"embedded;embeddedPrefix:approval_" json:"admin_approval"`
	BloodBankResponse     string                      `gorm:"type:text" json:"blood_bank_response,omitempty"`
	ProcessedBy           *uint                       `json:"processed_by,omitempty"`
	UnitsFulfilled        int                         `gorm:"default:0" json:"units_fulfilled"`
	BatchNumbers          datatypes.JSONSlice[string] `json:"batch_numbers,omitempty"`
	ExpiryDates           datatypes.JSONSlice[string] `json:"expiry_dates,omitempty"`
	CollectionMethod      CollectionMethod            `gorm:"size:20" json:"collection_method,omitempty"`
	RejectionReason       string                      `gorm:"type:text" json:"rejection_reason,omitempty"`
	CancellationReason    string                      `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CreatedAt             time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time                   `json:"updated_at"`
	RespondedAt           *time.Time                  `json:"responded_at,omitempty"`
	ProcessingStartedAt   *time.Time                  `json:"processing_started_at,omitempty"`
	FulfilledAt           *time.Time                  `json:"fulfilled_at,omitempty"`
	CommunicationLog      []CommunicationEntry        `gorm:"foreignKey:RequestID" json:"communication_log"`
}

// TableName specifies the table name for BloodRequest model
func (BloodRequest) TableName() string {
	return "blood_requests"
}

// CommunicationEntry is one append-only message on a request's thread
type CommunicationEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RequestID uint      `gorm:"index;not null" json:"request_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Author    string    `gorm:"size:100" json:"author"`
	CreatedAt time.Time `json:"timestamp"`
}

// TableName specifies the table name for CommunicationEntry model
func (CommunicationEntry) TableName() string {
	return "request_communications"
}
