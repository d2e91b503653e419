package entity

type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
)

// Providers lists providers in default-selection order
var Providers = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGoogle}

func (p Provider) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle:
		return true
	default:
		return false
	}
}

// Credentials maps a provider to its API key
type Credentials map[Provider]string

// Any reports whether at least one non-empty key is present
func (c Credentials) Any() bool {
	for _, key := range c {
		if key != "" {
			return true
		}
	}
	return false
}

// Merge returns credentials where keys of override win over c
func (c Credentials) Merge(override Credentials) Credentials {
	merged := make(Credentials, len(c)+len(override))
	for p, key := range c {
		if key != "" {
			merged[p] = key
		}
	}
	for p, key := range override {
		if key != "" {
			merged[p] = key
		}
	}
	return merged
}

type LLMMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ChatOptions tunes a single completion call; zero values fall back to defaults
type ChatOptions struct {
	Provider    Provider
	Temperature float64
	MaxTokens   int
}

// StreamChunk is one piece of a streamed completion
type StreamChunk struct {
	Content  string   `json:"content"`
	Finished bool     `json:"finished"`
	Provider Provider `json:"provider"`
}

// BusinessInsights is the structured payload returned by insight extraction
type BusinessInsights struct {
	BusinessIdea      string   `json:"businessIdea,omitempty"`
	ProblemStatement  string   `json:"problemStatement,omitempty"`
	TargetAudience    string   `json:"targetAudience,omitempty"`
	Solution          string   `json:"solution,omitempty"`
	UniqueValue       string   `json:"uniqueValue,omitempty"`
	SuggestedFeatures []string `json:"suggestedFeatures,omitempty"`
}

// Fields returns the scalar insights keyed by their JSON field name, in a stable order
func (bi *BusinessInsights) Fields() [][2]string {
	return [][2]string{
		{"businessIdea", bi.BusinessIdea},
		{"problemStatement", bi.ProblemStatement},
		{"targetAudience", bi.TargetAudience},
		{"solution", bi.Solution},
		{"uniqueValue", bi.UniqueValue},
	}
}

// SuggestionDraft is a feature suggestion as returned by the model
type SuggestionDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Reasoning   string `json:"reasoning"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

// SuggestionPrompt carries the inputs of a feature-suggestion request
type SuggestionPrompt struct {
	Utterance       string
	Response        string
	BusinessContext string
}
