package model

import "time"

// Action is the kind of mutation recorded in an audit entry.
type Action string

const (
	ActionCreate     Action = "CREATE"
	ActionUpdate     Action = "UPDATE"
	ActionSoftDelete Action = "SOFT_DELETE"
	ActionRestore    Action = "RESTORE"
)

// ResourceKind names the table an audit entry's resource_id points into.
// The set is closed: ResourceKinds lists every value and ParseResourceKind
// rejects anything else.
type ResourceKind string

const (
	ResourceCategory          ResourceKind = "CATEGORY"
	ResourceProduct           ResourceKind = "PRODUCT"
	ResourceUser              ResourceKind = "USER"
	ResourceInventory         ResourceKind = "INVENTORY"
	ResourceInventoryMovement ResourceKind = "INVENTORY_MOVEMENT"
)

// ResourceKinds lists every known resource kind.
var ResourceKinds = []ResourceKind{
	ResourceCategory,
	ResourceProduct,
	ResourceUser,
	ResourceInventory,
	ResourceInventoryMovement,
}

// ParseResourceKind maps a stored string to a known kind.
func ParseResourceKind(s string) (ResourceKind, bool) {
	for _, k := range ResourceKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// AuditLog mirrors a row of the append-only `audit_logs` table. Role is a
// snapshot of the actor's role when the action happened, not a live
// reference. ResourceID may point at a row that was later soft- or
// hard-deleted.
type AuditLog struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	Action     Action    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID *string   `json:"resource_id"`
	IP         string    `json:"ip"`
	CreatedAt  time.Time `json:"created_at"`
}

// DecodedAuditLog is an audit row enriched with human readable names.
// Absent names are omitted from the JSON output.
type DecodedAuditLog struct {
	AuditLog
	UserName     *string `json:"userName,omitempty"`
	ResourceName *string `json:"resourceName,omitempty"`
}

// Pagination describes one fixed-size page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the page metadata; TotalPages is ceil(total/limit).
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 && total > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// PaginatedAudits is the response body of every audit listing.
type PaginatedAudits struct {
	Data       []DecodedAuditLog `json:"data"`
	Pagination Pagination        `json:"pagination"`
}
