package constant

// Role names stored on the user record and embedded in access-token claims.
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// DefaultUserRole is assigned at registration.
const DefaultUserRole = RoleCustomer

// ValidRoles lists every role the service accepts.
var ValidRoles = []string{RoleCustomer, RoleSeller, RoleAdmin}

// PasswordMinLength is the floor enforced by the password complexity rule.
const PasswordMinLength = 8
