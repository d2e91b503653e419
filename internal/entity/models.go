package entity

import (
	"fmt"
	"time"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// MessageType classifies assistant messages for the UI
type MessageType string

const (
	MessageTypeQuestion        MessageType = "question"
	MessageTypeSuggestion      MessageType = "suggestion"
	MessageTypeSummary         MessageType = "summary"
	MessageTypeError           MessageType = "error"
	MessageTypeFeatureProposal MessageType = "feature_proposal"
	MessageTypeConfirmation    MessageType = "confirmation"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Normalize maps unknown priorities to medium
func (p Priority) Normalize() Priority {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p
	default:
		return PriorityMedium
	}
}

type SuggestionStatus string

const (
	SuggestionStatusPending  SuggestionStatus = "pending"
	SuggestionStatusAccepted SuggestionStatus = "accepted"
	SuggestionStatusDeclined SuggestionStatus = "declined"
)

// SuggestionDecision is the user action on a pending suggestion
type SuggestionDecision string

const (
	DecisionAccept  SuggestionDecision = "accept"
	DecisionDecline SuggestionDecision = "decline"
)

func (d SuggestionDecision) Validate() error {
	switch d {
	case DecisionAccept, DecisionDecline:
		return nil
	default:
		return fmt.Errorf("%w: unknown decision %q", ErrInvalidParameter, d)
	}
}

// Status returns the terminal status the decision leads to
func (d SuggestionDecision) Status() SuggestionStatus {
	if d == DecisionAccept {
		return SuggestionStatusAccepted
	}
	return SuggestionStatusDeclined
}

type FeatureSuggestion struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Reasoning   string           `json:"reasoning"`
	Priority    Priority         `json:"priority"`
	Status      SuggestionStatus `json:"status"`
	Category    string           `json:"category"`
}

type MessageMetadata struct {
	Type          MessageType          `json:"type,omitempty"`
	Stage         Stage                `json:"stage,omitempty"`
	Suggestions   []*FeatureSuggestion `json:"suggestions,omitempty"`
	ExtractedData map[string]string    `json:"extracted_data,omitempty"`
	ErrorCode     string               `json:"error_code,omitempty"`
}

// ChatMessage is immutable once created except for embedded suggestion status
type ChatMessage struct {
	ID        string           `json:"id"`
	Role      MessageRole      `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// Clone copies the message together with its suggestions
func (m *ChatMessage) Clone() *ChatMessage {
	if m == nil {
		return nil
	}

	clone := *m
	if m.Metadata != nil {
		meta := *m.Metadata
		if len(m.Metadata.Suggestions) > 0 {
			meta.Suggestions = make([]*FeatureSuggestion, 0, len(m.Metadata.Suggestions))
			for _, s := range m.Metadata.Suggestions {
				sc := *s
				meta.Suggestions = append(meta.Suggestions, &sc)
			}
		}
		if m.Metadata.ExtractedData != nil {
			meta.ExtractedData = make(map[string]string, len(m.Metadata.ExtractedData))
			for k, v := range m.Metadata.ExtractedData {
				meta.ExtractedData[k] = v
			}
		}
		clone.Metadata = &meta
	}

	return &clone
}

// ConversationContext is the running state of one stage conversation
type ConversationContext struct {
	Stage           Stage                `json:"stage"`
	CollectedData   map[string]string    `json:"collected_data"`
	CompletedTopics []string             `json:"completed_topics"`
	Suggestions     []*FeatureSuggestion `json:"suggestions"`
}

// NewConversationContext creates an empty context for the stage
func NewConversationContext(stage Stage) *ConversationContext {
	return &ConversationContext{
		Stage:           stage,
		CollectedData:   make(map[string]string),
		CompletedTopics: make([]string, 0),
		Suggestions:     make([]*FeatureSuggestion, 0),
	}
}

// HasTopic reports whether the topic was already completed
func (c *ConversationContext) HasTopic(topic string) bool {
	for _, t := range c.CompletedTopics {
		if t == topic {
			return true
		}
	}
	return false
}

// CompleteTopic records the topic once, keeping discovery order
func (c *ConversationContext) CompleteTopic(topic string) bool {
	if c.HasTopic(topic) {
		return false
	}
	c.CompletedTopics = append(c.CompletedTopics, topic)
	return true
}

// Clone returns a snapshot of the context
func (c *ConversationContext) Clone() *ConversationContext {
	clone := &ConversationContext{
		Stage:           c.Stage,
		CollectedData:   make(map[string]string, len(c.CollectedData)),
		CompletedTopics: append(make([]string, 0, len(c.CompletedTopics)), c.CompletedTopics...),
		Suggestions:     make([]*FeatureSuggestion, 0, len(c.Suggestions)),
	}
	for k, v := range c.CollectedData {
		clone.CollectedData[k] = v
	}
	for _, s := range c.Suggestions {
		sc := *s
		clone.Suggestions = append(clone.Suggestions, &sc)
	}
	return clone
}
