package types

// Identity is the authenticated caller as asserted by the auth layer.
// It is attached to the request context by middleware and trusted by
// every service-level authorization check.
type Identity struct {
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}

func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}
