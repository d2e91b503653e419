package conversation

import (
	"fmt"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/knowledge"
)

const (
	CompletionSubstance  = "substance"
	CompletionExtraction = "extraction"
)

// TurnOutcome is what a completion strategy sees of one answered utterance.
// Extracted counts insights produced by the turn's extraction and is -1 when
// extraction did not run or failed.
type TurnOutcome struct {
	Stage       entity.Stage
	Required    []string
	Completed   []string
	Topic       entity.Topic
	Utterance   string
	Substantive bool
	Extracted   int
	Knowledge   *knowledge.Store
}

// TopicCompletion marks a topic done; Value is recorded as user input when non-empty
type TopicCompletion struct {
	Topic string
	Value string
}

// CompletionStrategy decides which topics an answered utterance completes
type CompletionStrategy interface {
	Name() string
	Complete(out TurnOutcome) []TopicCompletion
}

// SubstanceCompletion completes the open topic when the utterance is long enough
type SubstanceCompletion struct{}

func (SubstanceCompletion) Name() string { return CompletionSubstance }

func (SubstanceCompletion) Complete(out TurnOutcome) []TopicCompletion {
	if !out.Substantive || out.Topic.ID == "" {
		return nil
	}
	return []TopicCompletion{{Topic: out.Topic.ID, Value: out.Utterance}}
}

// ExtractionCompletion completes topics that extraction produced knowledge for
type ExtractionCompletion struct{}

func (ExtractionCompletion) Name() string { return CompletionExtraction }

func (ExtractionCompletion) Complete(out TurnOutcome) []TopicCompletion {
	if out.Extracted < 0 || out.Knowledge == nil {
		return nil
	}

	done := make(map[string]struct{}, len(out.Completed))
	for _, t := range out.Completed {
		done[t] = struct{}{}
	}

	var result []TopicCompletion
	typed := false
	for _, topic := range out.Required {
		kt := knowledge.TypeForTopic(topic)
		if kt == entity.KnowledgeInsight {
			continue
		}
		typed = true
		if _, ok := done[topic]; ok {
			continue
		}
		if out.Knowledge.Has(kt, out.Stage) {
			result = append(result, TopicCompletion{Topic: topic})
		}
	}

	if !typed && out.Extracted > 0 && out.Topic.ID != "" {
		result = append(result, TopicCompletion{Topic: out.Topic.ID})
	}
	return result
}

// NewCompletionStrategy selects a strategy by its configured name
func NewCompletionStrategy(name string) (CompletionStrategy, error) {
	switch name {
	case CompletionSubstance:
		return SubstanceCompletion{}, nil
	case CompletionExtraction:
		return ExtractionCompletion{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown completion strategy %q", entity.ErrInvalidParameter, name)
	}
}
