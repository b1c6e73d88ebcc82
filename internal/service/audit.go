package service

import (
	"context"

	"go.uber.org/zap"
)

// Audit entities
const (
	entityBloodRequest = "blood_request"
	entityBloodStock   = "blood_stock"
)

// recordAudit writes an audit row; a failed write is logged and never fails the action
func recordAudit(ctx context.Context, audit AuditLogger, log *zap.Logger, actorID *uint, action, entity string, entityID uint, details string) {
	if err := audit.CreateAuditLog(ctx, actorID, action, entity, entityID, details); err != nil {
		log.Warn("failed to write audit log",
			zap.String("action", action),
			zap.String("entity", entity),
			zap.Uint("entity_id", entityID),
			zap.Error(err),
		)
	}
}
