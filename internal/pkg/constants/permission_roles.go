package constants

import "impacto-backend/internal/models"

// PermissionRoles maps each permission to the roles allowed to perform it.
// The hierarchy is not linear inheritance: each action has its own capability set.
var PermissionRoles = map[string][]models.Role{
	ManageBeneficiarios: {models.RoleAssistente, models.RoleAdmin},
	ApproveOrg:          {models.RoleAdmin},
	ApproveArticle:      {models.RoleAdmin},
	AppendLedger:        {models.RoleAdmin},
	ViewRatingStats:     {models.RoleAdmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission string, role models.Role) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
