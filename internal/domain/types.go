package domain

// ID is used across domain entities.
type ID int64

// Pagination carries paging params and totals.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total,omitempty"`
}

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the actor holds administrative privilege.
func (rc RequestContext) IsAdmin() bool {
	return rc.Role == RoleAdmin
}

// Roles known to the platform.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)
