package types

// Principal identifies the authenticated caller of a core operation.
// Every service method takes it explicitly; nothing in the core reads
// identity from request-scoped or global state.
type Principal struct {
	UserID uint
	Role   string
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsCustomer() bool {
	return p.Role == RoleCustomer
}
