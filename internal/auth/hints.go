package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/voltline/voltline-backend/pkg/enums"
)

// UIHints tells the frontend which surfaces to render. It is advisory only:
// no middleware or handler consults it for authorization, which is always
// re-derived from the JWT claims and the user_roles table.
type UIHints struct {
	ShowAdminUI  bool `json:"show_admin_ui"`
	IsSuperAdmin bool `json:"is_super_admin"`
}

func hintsForRole(role enums.UserRole) UIHints {
	return UIHints{
		ShowAdminUI:  role.IsAdmin(),
		IsSuperAdmin: role == enums.UserRoleSuperAdmin,
	}
}

// UIHints resolves rendering hints for a user. A failed role lookup returns
// zero-value hints, never an error: the portal renders the restricted view
// and server-side checks still apply.
func (s *service) UIHints(ctx context.Context, userID uuid.UUID) UIHints {
	if userID == uuid.Nil {
		return UIHints{}
	}
	role, err := s.roles.RoleFor(ctx, userID)
	if err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "resolving ui hints role, failing closed", err)
		return UIHints{}
	}
	return hintsForRole(role)
}
