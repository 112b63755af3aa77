package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
)

// RolesRepository owns the user_roles table. Role reads from this table are
// authoritative for authorization decisions.
type RolesRepository struct {
	db *gorm.DB
}

// NewRolesRepository constructs a roles repo bound to the provided GORM DB.
func NewRolesRepository(db *gorm.DB) *RolesRepository {
	return &RolesRepository{db: db}
}

// RoleFor returns the stored role for a user, defaulting to the base role
// when no row exists.
func (r *RolesRepository) RoleFor(ctx context.Context, userID uuid.UUID) (enums.UserRole, error) {
	var row models.UserRole
	err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return enums.UserRoleUser, nil
	}
	if err != nil {
		return "", err
	}
	if !row.Role.IsValid() {
		return enums.UserRoleUser, nil
	}
	return row.Role, nil
}

// Assign upserts the role for a user.
func (r *RolesRepository) Assign(ctx context.Context, userID uuid.UUID, role enums.UserRole) error {
	row := models.UserRole{UserID: userID, Role: role}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).
		Create(&row).Error
}
