package state

import (
	"context"
	"encoding/json"
	"time"
)

// TelegramSession binds a telegram user to the project they are working on
type TelegramSession struct {
	UserID    int64           `json:"user_id"`
	ProjectID string          `json:"project_id,omitempty"`
	StateData json.RawMessage `json:"state_data,omitempty"` // Telegram-specific UI state
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Step is the position of the user inside the bot dialog
type Step string

const (
	StepIdle         Step = ""
	StepAwaitingName Step = "awaiting_name"
	StepChatting     Step = "chatting"
)

// StateData contains telegram-specific UI state
type StateData struct {
	// Version for compatibility tracking (current version: 1)
	Version int `json:"version,omitempty"`

	Step   Step  `json:"step,omitempty"`
	ChatID int64 `json:"chat_id,omitempty"`

	// Message carrying the latest suggestion buttons, cleared once they are resolved
	SuggestionsMessageID int `json:"suggestions_message_id,omitempty"`

	// Confirmation for destructive actions
	PendingConfirmation string `json:"pending_confirmation,omitempty"` // "cancel"
}

const (
	// StateDataCurrentVersion is the current version of StateData
	StateDataCurrentVersion = 1
)

// Storage defines the interface for telegram session persistence
type Storage interface {
	// Get retrieves telegram session by user ID
	Get(ctx context.Context, userID int64) (*TelegramSession, error)

	// Set saves telegram session
	Set(ctx context.Context, session *TelegramSession) error

	// Delete removes telegram session
	Delete(ctx context.Context, userID int64) error

	// GetByProjectID retrieves the telegram session bound to a project
	GetByProjectID(ctx context.Context, projectID string) (*TelegramSession, error)
}
