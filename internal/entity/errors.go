package entity

import "errors"

// Domain errors
var (
	// Project errors
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidProject  = errors.New("invalid project data")

	// Workflow errors
	ErrUnknownStage = errors.New("unknown stage")

	// Conversation errors
	ErrConversationBusy    = errors.New("conversation is processing another message")
	ErrConversationMissing = errors.New("conversation not started")
	ErrMessageNotFound     = errors.New("message not found")
	ErrSuggestionNotFound  = errors.New("suggestion not found")
	ErrSuggestionResolved  = errors.New("suggestion already resolved")
	ErrEmptyUtterance      = errors.New("message text is empty")

	// Capability errors
	ErrProviderUnavailable = errors.New("no AI provider credential configured")
	ErrProviderError       = errors.New("AI provider request failed")
	ErrExtractionParse     = errors.New("malformed insights payload")
	ErrSummaryUpdate       = errors.New("conversation summary update failed")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")

	// Report errors
	ErrFormatUnavailable = errors.New("report format unavailable")
)
