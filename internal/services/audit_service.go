package services

import (
	"encoding/json"

	"finbot/internal/logger"
	"finbot/internal/models"

	"gorm.io/gorm"
)

// Audit actions recorded by the ledger services.
const (
	AuditActionAddCategory    = "ADD_CATEGORY"
	AuditActionDeleteCategory = "DELETE_CATEGORY"
	AuditActionSetBudget      = "SET_BUDGET"
	AuditActionSetCurrency    = "SET_CURRENCY"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(userID, action, resourceType, resourceID string, changes map[string]any) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// nopAudit is used when a service is built without an audit sink.
type nopAudit struct{}

func (nopAudit) Log(string, string, string, string, map[string]any) {}

func auditOrNop(a AuditServicer) AuditServicer {
	if a == nil {
		return nopAudit{}
	}
	return a
}
