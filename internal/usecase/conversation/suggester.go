package conversation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	SuggesterRule       = "rule"
	SuggesterCapability = "capability"
)

// SuggestInput is the exchange the suggestions are derived from
type SuggestInput struct {
	Utterance       string
	Response        string
	BusinessContext string
	Topic           string
	// TopicCompleted is set when this turn completed Topic
	TopicCompleted bool
}

// Suggester proposes features; failures degrade to an empty list
type Suggester interface {
	Name() string
	Suggest(ctx context.Context, in SuggestInput) []*entity.FeatureSuggestion
}

// Gate decides whether suggestions are generated for a turn
type Gate func() bool

func AlwaysSuggest() bool { return true }

func NeverSuggest() bool { return false }

// RandomGate passes with the given probability
func RandomGate(probability float64) Gate {
	return func() bool {
		return rand.Float64() < probability
	}
}

type suggestionRule struct {
	topic    string
	keywords []string
	draft    entity.SuggestionDraft
}

// "book" also covers booking and booked
var suggestionRules = []suggestionRule{
	{
		topic:    "solution",
		keywords: []string{"mobile"},
		draft: entity.SuggestionDraft{
			Title:       "Push Notifications",
			Description: "Send timely reminders and updates to keep users engaged",
			Reasoning:   "Since you mentioned mobile functionality, push notifications could increase user retention",
			Priority:    string(entity.PriorityHigh),
			Category:    "engagement",
		},
	},
	{
		topic:    "solution",
		keywords: []string{"book", "schedule"},
		draft: entity.SuggestionDraft{
			Title:       "Calendar Integration",
			Description: "Sync with Google Calendar, Outlook, and other calendar apps",
			Reasoning:   "Booking systems work better when integrated with users' existing calendars",
			Priority:    string(entity.PriorityHigh),
			Category:    "integration",
		},
	},
	{
		topic:    "target_audience",
		keywords: []string{"business"},
		draft: entity.SuggestionDraft{
			Title:       "Team Management",
			Description: "Allow multiple team members to manage bookings and settings",
			Reasoning:   "Business customers often need team collaboration features",
			Priority:    string(entity.PriorityMedium),
			Category:    "collaboration",
		},
	},
}

// RuleSuggester matches fixed keywords per topic, only on the turn that
// completes the topic
type RuleSuggester struct{}

func (RuleSuggester) Name() string { return SuggesterRule }

func (RuleSuggester) Suggest(_ context.Context, in SuggestInput) []*entity.FeatureSuggestion {
	if !in.TopicCompleted {
		return nil
	}

	text := strings.ToLower(in.Utterance)

	var out []*entity.FeatureSuggestion
	for _, rule := range suggestionRules {
		if rule.topic != in.Topic {
			continue
		}
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				out = append(out, newSuggestion(rule.draft))
				break
			}
		}
	}
	return out
}

// CapabilitySuggester asks the LLM for up to two suggestions
type CapabilitySuggester struct {
	capability Capability
}

func NewCapabilitySuggester(capability Capability) *CapabilitySuggester {
	return &CapabilitySuggester{capability: capability}
}

func (s *CapabilitySuggester) Name() string { return SuggesterCapability }

func (s *CapabilitySuggester) Suggest(ctx context.Context, in SuggestInput) []*entity.FeatureSuggestion {
	if s.capability == nil || !s.capability.Configured() {
		return nil
	}

	drafts, err := s.capability.SuggestFeatures(ctx, entity.SuggestionPrompt{
		Utterance:       in.Utterance,
		Response:        in.Response,
		BusinessContext: in.BusinessContext,
	})
	if err != nil {
		ctxzap.Warn(ctx, "feature suggestion failed", zap.Error(err))
		return nil
	}

	out := make([]*entity.FeatureSuggestion, 0, len(drafts))
	for _, d := range drafts {
		if strings.TrimSpace(d.Title) == "" {
			continue
		}
		out = append(out, newSuggestion(d))
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

const maxSuggestions = 2

func newSuggestion(d entity.SuggestionDraft) *entity.FeatureSuggestion {
	return &entity.FeatureSuggestion{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Reasoning:   strings.TrimSpace(d.Reasoning),
		Priority:    entity.Priority(strings.ToLower(d.Priority)).Normalize(),
		Status:      entity.SuggestionStatusPending,
		Category:    d.Category,
	}
}

// NewSuggester selects a suggester by its configured name
func NewSuggester(name string, capability Capability) (Suggester, error) {
	switch name {
	case SuggesterRule:
		return RuleSuggester{}, nil
	case SuggesterCapability:
		return NewCapabilitySuggester(capability), nil
	default:
		return nil, fmt.Errorf("%w: unknown suggester %q", entity.ErrInvalidParameter, name)
	}
}
