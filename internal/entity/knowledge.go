package entity

import "time"

type KnowledgeType string

const (
	KnowledgeBusinessIdea     KnowledgeType = "business_idea"
	KnowledgeProblemStatement KnowledgeType = "problem_statement"
	KnowledgeTargetAudience   KnowledgeType = "target_audience"
	KnowledgeSolution         KnowledgeType = "solution"
	KnowledgeUniqueValue      KnowledgeType = "unique_value"
	KnowledgeFeature          KnowledgeType = "feature"
	KnowledgeInsight          KnowledgeType = "insight"
)

type KnowledgeSource string

const (
	SourceUserInput    KnowledgeSource = "user_input"
	SourceAIAnalysis   KnowledgeSource = "ai_analysis"
	SourceAISuggestion KnowledgeSource = "ai_suggestion"
)

// KnowledgeEntry is a durable fact extracted from conversation
type KnowledgeEntry struct {
	ID         string          `json:"id"`
	Type       KnowledgeType   `json:"type"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Source     KnowledgeSource `json:"source"`
	Stage      Stage           `json:"stage"`
	Timestamp  time.Time       `json:"timestamp"`
	Confidence float64         `json:"confidence"`
	Tags       []string        `json:"tags"`
}
