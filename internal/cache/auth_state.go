package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/averoza/marketplace/internal/models"
)

// UserAuthState is a short-lived snapshot consulted by the auth
// middleware so token revocation checks don't hit the database on
// every request.
type UserAuthState struct {
	UserID             uint       `json:"user_id"`
	Role               string     `json:"role"`
	IsActive           bool       `json:"is_active"`
	TokenVersion       uint64     `json:"token_version"`
	TokenInvalidBefore *time.Time `json:"token_invalid_before,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

const authStateTTL = 10 * time.Minute

func authStateKey(userID uint) string {
	return fmt.Sprintf("auth:user:%d", userID)
}

// BuildUserAuthState snapshots the revocation-relevant fields
func BuildUserAuthState(user *models.User) *UserAuthState {
	return &UserAuthState{
		UserID:             user.ID,
		Role:               user.Role,
		IsActive:           user.IsActive,
		TokenVersion:       user.TokenVersion,
		TokenInvalidBefore: user.TokenInvalidBefore,
		UpdatedAt:          time.Now(),
	}
}

// GetUserAuthState reads a cached snapshot; the bool reports a hit
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	var state UserAuthState
	found, err := GetJSON(ctx, authStateKey(userID), &state)
	if err != nil || !found {
		return nil, false, err
	}
	return &state, true, nil
}

// SetUserAuthState stores a snapshot with the default TTL
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil {
		return nil
	}
	return SetJSON(ctx, authStateKey(state.UserID), state, authStateTTL)
}

// DelUserAuthState drops the snapshot, forcing a fresh DB read on the
// next request. Called after password or status changes.
func DelUserAuthState(ctx context.Context, userID uint) error {
	return Del(ctx, authStateKey(userID))
}
