package model

type Role string

const (
	RoleManager Role = "MANAGER"
	RoleViewer  Role = "VIEWER"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID int64
	Role   Role
}

func (p Principal) IsManager() bool { return p.Role == RoleManager }
func (p Principal) IsViewer() bool  { return p.Role == RoleViewer }
