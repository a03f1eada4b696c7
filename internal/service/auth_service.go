package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/averoza/marketplace/internal/cache"
	"github.com/averoza/marketplace/internal/config"
	"github.com/averoza/marketplace/internal/constants"
	"github.com/averoza/marketplace/internal/logger"
	"github.com/averoza/marketplace/internal/models"
	"github.com/averoza/marketplace/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService account registration, login and profile management.
// Registering as a vendor provisions the vendor's store in the same
// transaction.
type AuthService struct {
	cfg       *config.Config
	userRepo  repository.UserRepository
	storeRepo repository.StoreRepository
}

// NewAuthService creates the auth service
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, storeRepo repository.StoreRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, storeRepo: storeRepo}
}

// JWTClaims bearer token claims
type JWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT signs a bearer token for the account
func (s *AuthService) GenerateJWT(user *models.User, expireHours int) (string, time.Time, error) {
	if expireHours <= 0 {
		expireHours = s.cfg.JWT.ExpireHours
		if expireHours <= 0 {
			expireHours = 24
		}
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireHours) * time.Hour)
	claims := JWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT validates and decodes a bearer token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &JWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// RegisterInput registration payload
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Role      string // customer (default) or vendor
	StoreName string // vendor only; falls back to "<username>'s store"
}

// Register creates an account and, for vendors, the store that goes
// with it. Returns the account plus a signed token.
func (s *AuthService) Register(input RegisterInput) (*models.User, string, time.Time, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, "", time.Time{}, fmt.Errorf("%w: username required", ErrValidation)
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = constants.RoleCustomer
	}
	if role != constants.RoleCustomer && role != constants.RoleVendor {
		return nil, "", time.Time{}, fmt.Errorf("%w: role must be customer or vendor", ErrValidation)
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, "", time.Time{}, err
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if existing != nil {
		return nil, "", time.Time{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(user); err != nil {
			return err
		}
		if role != constants.RoleVendor {
			return nil
		}
		storeName := strings.TrimSpace(input.StoreName)
		if storeName == "" {
			storeName = username + "'s store"
		}
		store := &models.Store{
			VendorID: user.ID,
			Name:     storeName,
			Slug:     uniqueSlugWithSuffix(slugify(storeName), user.ID),
			IsActive: true,
		}
		return s.storeRepo.WithTx(tx).Create(store)
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.GenerateJWT(user, 0)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	logger.Infow("user_registered", "user_id", user.ID, "role", user.Role)
	return user, token, expiresAt, nil
}

// Login verifies credentials and signs a token
func (s *AuthService) Login(email, password string, rememberMe bool) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", time.Time{}, ErrAccountDisabled
	}

	expireHours := 0
	if rememberMe {
		expireHours = s.cfg.JWT.RememberMeExpireHours
	}
	token, expiresAt, err := s.GenerateJWT(user, expireHours)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(user.ID, now); err != nil {
		logger.Warnw("touch_last_login_failed", "user_id", user.ID, "error", err)
	}
	return user, token, expiresAt, nil
}

// GetUserByID fetches an account
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile updates mutable profile fields
func (s *AuthService) UpdateProfile(userID uint, username, phone, avatar *string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if username != nil {
		trimmed := strings.TrimSpace(*username)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: username cannot be empty", ErrValidation)
		}
		updates["username"] = trimmed
	}
	if phone != nil {
		updates["phone"] = strings.TrimSpace(*phone)
	}
	if avatar != nil {
		updates["avatar_url"] = strings.TrimSpace(*avatar)
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.userRepo.UpdateFields(userID, updates); err != nil {
		return nil, err
	}
	return s.GetUserByID(userID)
}

// ChangePassword verifies the old password, stores the new hash, and
// bumps the token version so every outstanding token dies.
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()
	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{
		"password_hash":        string(hash),
		"token_invalid_before": now,
	}); err != nil {
		return err
	}
	if err := s.userRepo.BumpTokenVersion(userID); err != nil {
		return err
	}
	// Drop the cached auth snapshot so revocation is immediate.
	if err := cache.DelUserAuthState(context.Background(), userID); err != nil {
		logger.Warnw("auth_state_invalidate_failed", "user_id", userID, "error", err)
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
