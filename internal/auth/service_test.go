package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tavola-app/tavola-backend/internal/accounts"
	"github.com/tavola-app/tavola-backend/pkg/config"
	"github.com/tavola-app/tavola-backend/pkg/db/models"
	"github.com/tavola-app/tavola-backend/pkg/enums"
	pkgerrors "github.com/tavola-app/tavola-backend/pkg/errors"
	"github.com/tavola-app/tavola-backend/pkg/security"
)

type stubUsersRepo struct {
	users       []models.User
	lastLoginID uuid.UUID
}

func (s *stubUsersRepo) WithTx(_ *gorm.DB) accounts.Repository { return s }

func (s *stubUsersRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	s.users = append(s.users, *user)
	return user, nil
}

func (s *stubUsersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for i := range s.users {
		if s.users[i].Username == username {
			return &s.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for i := range s.users {
		if s.users[i].Email == email {
			return &s.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) ListByRole(_ context.Context, _ enums.Role) ([]models.User, error) {
	return nil, nil
}

func (s *stubUsersRepo) AddRole(_ context.Context, _ uuid.UUID, _ enums.Role) error {
	return nil
}

func (s *stubUsersRepo) RemoveRole(_ context.Context, _ uuid.UUID, _ enums.Role) (bool, error) {
	return false, nil
}

func (s *stubUsersRepo) HasRole(_ context.Context, _ uuid.UUID, _ enums.Role) (bool, error) {
	return false, nil
}

func (s *stubUsersRepo) TouchLastLogin(_ context.Context, userID uuid.UUID) error {
	s.lastLoginID = userID
	return nil
}

type stubSessions struct {
	created []string
	revoked []string
}

func (s *stubSessions) Create(_ context.Context, accessID string) error {
	s.created = append(s.created, accessID)
	return nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test-secret",
		Issuer:            "tavola-test",
		ExpirationMinutes: 15,
		SessionTTLMinutes: 30,
	}
}

func newTestService(t *testing.T, users *stubUsersRepo, sessions *stubSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Users:       users,
		Sessions:    sessions,
		JWTConfig:   testJWTConfig(),
		PasswordCfg: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func assertErrorCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != want {
		t.Fatalf("expected code %s, got %s", want, appErr.Code())
	}
}

func TestRegisterCreatesCustomerAndSession(t *testing.T) {
	users := &stubUsersRepo{}
	sessions := &stubSessions{}
	svc := newTestService(t, users, sessions)

	dto, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.AccessToken == "" {
		t.Fatalf("expected access token")
	}
	if len(sessions.created) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions.created))
	}
	if len(users.users) != 1 {
		t.Fatalf("expected one user, got %d", len(users.users))
	}
	if users.users[0].Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", users.users[0].Email)
	}
	if users.users[0].PasswordHash == "correct horse battery" {
		t.Fatalf("password stored in plaintext")
	}
	if users.users[0].IsStaff {
		t.Fatalf("new users must not be staff")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users := &stubUsersRepo{users: []models.User{{ID: uuid.New(), Username: "alice", Email: "a@b.c"}}}
	svc := newTestService(t, users, &stubSessions{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "password123",
	})
	assertErrorCode(t, err, pkgerrors.CodeConflict)
}

func TestLogin(t *testing.T) {
	hash, err := security.HashPassword("password123", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user := models.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		IsActive:     true,
	}
	users := &stubUsersRepo{users: []models.User{user}}
	sessions := &stubSessions{}
	svc := newTestService(t, users, sessions)

	dto, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.UserID != user.ID {
		t.Fatalf("unexpected user id: %s", dto.UserID)
	}
	if users.lastLoginID != user.ID {
		t.Fatalf("last login not recorded")
	}

	_, err = svc.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong"})
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.Login(context.Background(), LoginInput{Username: "nobody", Password: "password123"})
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginInactiveUser(t *testing.T) {
	hash, _ := security.HashPassword("password123", config.PasswordConfig{})
	users := &stubUsersRepo{users: []models.User{{
		ID:           uuid.New(),
		Username:     "alice",
		PasswordHash: hash,
		IsActive:     false,
	}}}
	svc := newTestService(t, users, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "password123"})
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessions{}
	svc := newTestService(t, &stubUsersRepo{}, sessions)

	if err := svc.Logout(context.Background(), "some-jti"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "some-jti" {
		t.Fatalf("session not revoked: %+v", sessions.revoked)
	}

	err := svc.Logout(context.Background(), "  ")
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)
}
