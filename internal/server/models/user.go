package models

// Role grants access to operations. Admin implies operator.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

// User is an authenticated principal. The hash never leaves the server.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Role         Role   `json:"role"`
	PasswordHash []byte `json:"-"`
}
