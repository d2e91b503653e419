package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/futig/launchpad-backend/internal/telegram/state"
	"github.com/patrickmn/go-cache"
)

var _ state.Storage = &TelegramStateMemory{}

// TelegramStateMemory keeps telegram user mappings in a TTL cache
type TelegramStateMemory struct {
	cache *cache.Cache
}

// NewTelegramStateMemory creates a new telegram state repository
func NewTelegramStateMemory(ttl, cleanup time.Duration) *TelegramStateMemory {
	return &TelegramStateMemory{
		cache: cache.New(ttl, cleanup),
	}
}

// Get retrieves telegram session by user ID
func (r *TelegramStateMemory) Get(_ context.Context, userID int64) (*state.TelegramSession, error) {
	v, ok := r.cache.Get(key(userID))
	if !ok {
		return nil, fmt.Errorf("telegram session not found: %d", userID)
	}
	session := *v.(*state.TelegramSession)
	return &session, nil
}

// Set saves telegram session
func (r *TelegramStateMemory) Set(_ context.Context, session *state.TelegramSession) error {
	stored := *session
	r.cache.Set(key(session.UserID), &stored, cache.DefaultExpiration)
	return nil
}

// Delete removes telegram session
func (r *TelegramStateMemory) Delete(_ context.Context, userID int64) error {
	r.cache.Delete(key(userID))
	return nil
}

// GetByProjectID retrieves the telegram session bound to a project
func (r *TelegramStateMemory) GetByProjectID(_ context.Context, projectID string) (*state.TelegramSession, error) {
	for _, item := range r.cache.Items() {
		session, ok := item.Object.(*state.TelegramSession)
		if ok && session.ProjectID == projectID {
			found := *session
			return &found, nil
		}
	}
	return nil, fmt.Errorf("telegram session not found for project: %s", projectID)
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
