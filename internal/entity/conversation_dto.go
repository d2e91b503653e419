package entity

// SendMessageRequest is the body of POST /projects/{id}/messages
type SendMessageRequest struct {
	Text string `json:"text"`
}

// ChatTurn is everything a front end needs to render after one utterance
type ChatTurn struct {
	Message       *ChatMessage         `json:"message"`
	Greeting      *ChatMessage         `json:"greeting,omitempty"`
	StageSummary  *ChatMessage         `json:"stage_summary,omitempty"`
	Context       *ConversationContext `json:"context"`
	Knowledge     []*KnowledgeEntry    `json:"knowledge"`
	StageComplete bool                 `json:"stage_complete"`
	AdvancedTo    Stage                `json:"advanced_to,omitempty"`
	Project       *Project             `json:"project"`
}

type HistoryResponse struct {
	Stage    Stage          `json:"stage"`
	Messages []*ChatMessage `json:"messages"`
	Summary  string         `json:"summary,omitempty"`
}

type KnowledgeResponse struct {
	Entries []*KnowledgeEntry `json:"entries"`
}

// ContextResponse mirrors the running conversation state of the active stage
type ContextResponse struct {
	Context       *ConversationContext `json:"context"`
	OpenTopic     string               `json:"open_topic,omitempty"`
	StageComplete bool                 `json:"stage_complete"`
	Summary       string               `json:"summary,omitempty"`
}

// StreamEvent is one server-sent event of a streamed reply
type StreamEvent struct {
	Type  string    `json:"type"`
	Delta string    `json:"delta,omitempty"`
	Turn  *ChatTurn `json:"turn,omitempty"`
	Error string    `json:"error,omitempty"`
}

const (
	StreamEventChunk = "chunk"
	StreamEventDone  = "done"
	StreamEventError = "error"
)

// ResolveSuggestionResponse carries the confirmation of an accepted or declined suggestion
type ResolveSuggestionResponse struct {
	Message    *ChatMessage         `json:"message"`
	Suggestion *FeatureSuggestion   `json:"suggestion"`
	Context    *ConversationContext `json:"context"`
}
