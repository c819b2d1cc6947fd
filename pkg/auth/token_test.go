package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tavola-app/tavola-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "tavola",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: userID, JTI: "session-1"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.ID != "session-1" {
		t.Fatalf("expected jti session-1, got %s", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %s", claims.Issuer)
	}
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now().UTC(), AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(testJWTConfig(), token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		t.Fatalf("jti is not a uuid: %v", err)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now().UTC(), AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	bad := testJWTConfig()
	bad.Secret = "other-secret"
	if _, err := ParseAccessToken(bad, token); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now().UTC(), AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := testJWTConfig()
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer validation to fail")
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	now := time.Now().UTC()

	if _, err := MintAccessToken(config.JWTConfig{}, now, AccessTokenPayload{UserID: uuid.New()}); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := MintAccessToken(testJWTConfig(), now, AccessTokenPayload{}); err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestActorRoleChecks(t *testing.T) {
	staff := Actor{UserID: uuid.New(), IsStaff: true}
	if !staff.IsManagerOrAdmin() {
		t.Fatal("staff must pass the manager check")
	}
	if staff.IsDeliveryCrew() {
		t.Fatal("staff alone is not delivery crew")
	}

	plain := Actor{UserID: uuid.New()}
	if plain.IsManagerOrAdmin() || plain.IsDeliveryCrew() {
		t.Fatal("customer must hold no elevated roles")
	}
}
