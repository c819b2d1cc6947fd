package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tavola-app/tavola-backend/pkg/auth"
	"github.com/tavola-app/tavola-backend/pkg/enums"
	pkgerrors "github.com/tavola-app/tavola-backend/pkg/errors"
)

// Service manages role group membership and actor resolution.
type Service interface {
	ResolveActor(ctx context.Context, userID uuid.UUID) (auth.Actor, error)
	ListRoleMembers(ctx context.Context, actor auth.Actor, role enums.Role) ([]MemberDTO, error)
	AddRoleMember(ctx context.Context, actor auth.Actor, role enums.Role, username string) (*MemberDTO, error)
	RemoveRoleMember(ctx context.Context, actor auth.Actor, role enums.Role, userID uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds the accounts service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	return &service{repo: repo}, nil
}

// ResolveActor loads the caller's role memberships from the database. Roles
// live here rather than in the token so group changes apply immediately.
func (s *service) ResolveActor(ctx context.Context, userID uuid.UUID) (auth.Actor, error) {
	if userID == uuid.Nil {
		return auth.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown user")
		}
		return auth.Actor{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return auth.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user deactivated")
	}

	roles := make([]enums.Role, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Role)
	}
	return auth.Actor{
		UserID:  user.ID,
		IsStaff: user.IsStaff,
		Roles:   roles,
	}, nil
}

func (s *service) ListRoleMembers(ctx context.Context, actor auth.Actor, role enums.Role) ([]MemberDTO, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown role group")
	}

	users, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list role members")
	}

	members := make([]MemberDTO, 0, len(users))
	for _, user := range users {
		members = append(members, memberFromModel(user))
	}
	return members, nil
}

func (s *service) AddRoleMember(ctx context.Context, actor auth.Actor, role enums.Role, username string) (*MemberDTO, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown role group")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}

	if err := s.repo.AddRole(ctx, user.ID, role); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add role member")
	}

	updated, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload user")
	}
	member := memberFromModel(*updated)
	return &member, nil
}

// RemoveRoleMember fails with NotFound when the target is not currently in
// the role, for both groups. Authorization is always checked first.
func (s *service) RemoveRoleMember(ctx context.Context, actor auth.Actor, role enums.Role, userID uuid.UUID) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeNotFound, "unknown role group")
	}
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}

	removed, err := s.repo.RemoveRole(ctx, userID, role)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove role member")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user is not in this role")
	}
	return nil
}

func requireManager(actor auth.Actor) error {
	if !actor.IsManagerOrAdmin() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "manager role required")
	}
	return nil
}
