package entity

import "time"

// CreateProjectRequest represents the request body for creating a project
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// CallbackURL receives stage lifecycle events when set
	CallbackURL string `json:"callback_url,omitempty"`
}

// ListProjectsRequest represents query parameters for listing projects
type ListProjectsRequest struct {
	Skip  int
	Limit int
}

// Normalize sets default values for pagination
func (r *ListProjectsRequest) Normalize() {
	if r.Skip < 0 {
		r.Skip = 0
	}
	if r.Limit <= 0 || r.Limit > 100 {
		r.Limit = 20
	}
}

// SetCredentialsRequest carries per-project provider keys
type SetCredentialsRequest struct {
	OpenAI    string `json:"openai,omitempty"`
	Anthropic string `json:"anthropic,omitempty"`
	Google    string `json:"google,omitempty"`
}

func (r *SetCredentialsRequest) ToCredentials() Credentials {
	return Credentials{
		ProviderOpenAI:    r.OpenAI,
		ProviderAnthropic: r.Anthropic,
		ProviderGoogle:    r.Google,
	}
}

// ProjectSummary is the list view of a project
type ProjectSummary struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Stage    Stage     `json:"stage"`
	Progress int       `json:"progress"`
	Updated  time.Time `json:"updated_at"`
}

type ListProjectsResponse struct {
	Projects []*ProjectSummary `json:"projects"`
}

type DeleteProjectResponse struct {
	Status string `json:"status"`
}

// CredentialsStatusResponse reports which providers are configured without echoing keys
type CredentialsStatusResponse struct {
	Configured bool       `json:"configured"`
	Providers  []Provider `json:"providers"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
