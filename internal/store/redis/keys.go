package redis

const (
	// KeyAuditTrail is the list holding the audit trail, newest first.
	KeyAuditTrail = "shellgate:audit:trail"
)
