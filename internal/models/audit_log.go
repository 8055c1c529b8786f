package models

// AuditLog records a mutation made through the API. Changes holds the
// JSON-encoded request details, empty when there were none.
type AuditLog struct {
	Base
	Action       string `gorm:"not null;size:64;index" json:"action"`
	ResourceType string `gorm:"not null;size:32;index:idx_audit_logs_resource,priority:1" json:"resource_type"`
	ResourceID   string `gorm:"size:64;index:idx_audit_logs_resource,priority:2" json:"resource_id"`
	IPAddress    string `gorm:"size:45" json:"ip_address,omitempty"`
	Changes      string `gorm:"type:text" json:"changes,omitempty"`
}
