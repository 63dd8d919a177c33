package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionAutoApprovalConfigUpdate = "AUTO_APPROVAL_CONFIG_UPDATE"
	AuditActionAutoApprovalToggle       = "AUTO_APPROVAL_TOGGLE"
	AuditActionVerificationApprove      = "VERIFICATION_APPROVE"
	AuditActionVerificationReject       = "VERIFICATION_REJECT"
	AuditActionVerificationOverride     = "VERIFICATION_OVERRIDE"
	AuditActionBatchApprove             = "VERIFICATION_BATCH_APPROVE"
	AuditActionBatchReject              = "VERIFICATION_BATCH_REJECT"
	AuditActionAutoVerify               = "VERIFICATION_AUTO_VERIFY"
	AuditActionOverrideExport           = "VERIFICATION_OVERRIDE_EXPORT"
)

// AuditLog represents an audit trail record. Rows are purged after the configured retention.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  []byte    `db:"old_values" json:"oldValues,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
