package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/averoza/marketplace/internal/config"
	"github.com/averoza/marketplace/internal/constants"
	"github.com/averoza/marketplace/internal/models"
	"github.com/averoza/marketplace/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newAuthTestService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Store{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	// Register opens its transaction on the package-level handle.
	models.DB = db

	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:             "0123456789abcdef0123456789abcdef",
			ExpireHours:           24,
			RememberMeExpireHours: 168,
		},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{
				MinLength:     8,
				RequireLower:  true,
				RequireNumber: true,
			},
		},
	}
	return NewAuthService(cfg, repository.NewUserRepository(db), repository.NewStoreRepository(db)), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthTestService(t)

	user, token, expiresAt, err := svc.Register(RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.Role != constants.RoleCustomer {
		t.Fatalf("role = %s, want customer", user.Role)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %s", user.Email)
	}
	if token == "" || expiresAt.Before(time.Now()) {
		t.Fatalf("bad token/expiry: %q %v", token, expiresAt)
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT error: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != constants.RoleCustomer {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	logged, _, _, err := svc.Login("alice@example.com", "password123", false)
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("logged in as wrong user: %d", logged.ID)
	}

	if _, _, _, err := svc.Login("alice@example.com", "wrongpass1", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login("nobody@example.com", "password123", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterVendorCreatesStore(t *testing.T) {
	svc, db := newAuthTestService(t)

	user, _, _, err := svc.Register(RegisterInput{
		Username:  "bob",
		Email:     "bob@example.com",
		Password:  "password123",
		Role:      constants.RoleVendor,
		StoreName: "Bob's Bargains",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	var store models.Store
	if err := db.Where("vendor_id = ?", user.ID).First(&store).Error; err != nil {
		t.Fatalf("vendor store not created: %v", err)
	}
	if store.Name != "Bob's Bargains" || !store.IsActive || store.Slug == "" {
		t.Fatalf("unexpected store: %+v", store)
	}
}

func TestRegisterRejections(t *testing.T) {
	svc, _ := newAuthTestService(t)

	if _, _, _, err := svc.Register(RegisterInput{
		Username: "carol", Email: "carol@example.com", Password: "short",
	}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	if _, _, _, err := svc.Register(RegisterInput{
		Username: "carol", Email: "carol@example.com", Password: "password123", Role: "superuser",
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad role, got %v", err)
	}

	if _, _, _, err := svc.Register(RegisterInput{
		Username: "carol", Email: "carol@example.com", Password: "password123",
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	// Same address with different casing counts as taken.
	if _, _, _, err := svc.Register(RegisterInput{
		Username: "carol2", Email: "CAROL@example.com", Password: "password123",
	}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, db := newAuthTestService(t)

	user, _, _, err := svc.Register(RegisterInput{
		Username: "dave", Email: "dave@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("disable account: %v", err)
	}

	if _, _, _, err := svc.Login("dave@example.com", "password123", false); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestChangePasswordRevokesOldTokens(t *testing.T) {
	svc, db := newAuthTestService(t)

	user, _, _, err := svc.Register(RegisterInput{
		Username: "erin", Email: "erin@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "nope12345", "newpassword1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong old password, got %v", err)
	}

	if err := svc.ChangePassword(user.ID, "password123", "newpassword1"); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}

	var reloaded models.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.TokenVersion != user.TokenVersion+1 {
		t.Fatalf("token version = %d, want %d", reloaded.TokenVersion, user.TokenVersion+1)
	}

	if _, _, _, err := svc.Login("erin@example.com", "password123", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should be rejected, got %v", err)
	}
	if _, _, _, err := svc.Login("erin@example.com", "newpassword1", false); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}
