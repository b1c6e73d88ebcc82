package models

import "time"

// AuditLog represents the audit_logs table
// One row per state-changing action on requests and stock
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   *uint     `gorm:"index" json:"actor_id"`
	Action    string    `gorm:"size:100;not null" json:"action"`
	Entity    string    `gorm:"size:50;index" json:"entity"`
	EntityID  uint      `gorm:"index" json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Roles carried in access tokens
const (
	RoleSuperAdmin = "super_admin"
	RoleHospital   = "hospital"
	RoleBloodBank  = "bloodbank"
)
