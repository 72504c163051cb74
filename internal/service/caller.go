package service

import "github.com/Skotchmaster/storefront/internal/models"

// Caller is the authenticated identity taken from the bearer token.
type Caller struct {
	UserID uint
	Role   string
}

func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

func (c Caller) CanAccess(ownerID uint) bool {
	return c.IsAdmin() || c.UserID == ownerID
}
