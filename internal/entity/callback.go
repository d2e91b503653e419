package entity

// CallbackEventType is the kind of lifecycle event pushed to a project's callback URL
type CallbackEventType string

const (
	CallbackEventStageCompleted     CallbackEventType = "stage_completed"
	CallbackEventSuggestionResolved CallbackEventType = "suggestion_resolved"
	CallbackEventError              CallbackEventType = "error"
)

type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	ProjectID string            `json:"project_id"`
	Timestamp string            `json:"timestamp"`
	Data      any               `json:"data"`
}

type CallbackStageCompletedData struct {
	Stage      Stage      `json:"stage"`
	NextStage  Stage      `json:"next_stage,omitempty"`
	Progress   int        `json:"progress"`
	StageData  *StageData `json:"stage_data"`
	FinalStage bool       `json:"final_stage"`
}

type CallbackSuggestionResolvedData struct {
	Suggestion *FeatureSuggestion `json:"suggestion"`
}

type CallbackErrorData struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
