package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tavola-app/tavola-backend/pkg/enums"
)

// User represents the canonical identity entity. Staff users carry the same
// authorization weight as the manager role.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string     `gorm:"column:username;type:text;not null;uniqueIndex"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	IsStaff      bool       `gorm:"column:is_staff;not null;default:false"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	Roles        []UserRole `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// UserRole records membership of a user in a named role group.
type UserRole struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_user_roles_user_role"`
	Role      enums.Role `gorm:"column:role;type:text;not null;uniqueIndex:idx_user_roles_user_role"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the join table name explicit.
func (UserRole) TableName() string {
	return "user_roles"
}
