package conversation

import (
	"encoding/json"
	"net/http"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/pkg/logger"
	"github.com/futig/launchpad-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase ConversationUsecase
	stages  StageRegistry
}

func NewHandler(usecase ConversationUsecase, stages StageRegistry) *Handler {
	return &Handler{
		usecase: usecase,
		stages:  stages,
	}
}

// ListStages handles GET /stages
func (h *Handler) ListStages(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string][]entity.StageConfig{
		"stages": h.stages.Stages(),
	})
}

// StartConversation handles POST /projects/{project_id}/conversation
func (h *Handler) StartConversation(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("project_id", projectID),
		zap.String("action", "StartConversation"),
	)

	greeting, err := h.usecase.StartConversation(ctx, projectID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, greeting)
}

// SendMessage handles POST /projects/{project_id}/messages, streaming with ?stream=true
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("project_id", projectID),
		zap.String("action", "SendMessage"),
	)

	var req entity.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if r.URL.Query().Get("stream") != "true" {
		turn, err := h.usecase.SendMessage(ctx, projectID, req.Text, nil)
		if err != nil {
			response.UsecaseError(ctx, w, err)
			return
		}
		response.Success(w, turn)
		return
	}

	stream, ok := newEventStream(w)
	if !ok {
		response.Error(ctx, w, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}

	sink := func(delta string) {
		if err := stream.Send(&entity.StreamEvent{Type: entity.StreamEventChunk, Delta: delta}); err != nil {
			ctxzap.Warn(ctx, "failed to write stream chunk", zap.Error(err))
		}
	}

	turn, err := h.usecase.SendMessage(ctx, projectID, req.Text, sink)
	if err != nil {
		if !stream.Started() {
			response.UsecaseError(ctx, w, err)
			return
		}
		ctxzap.Error(ctx, "streamed turn failed", zap.Error(err))
		stream.Send(&entity.StreamEvent{Type: entity.StreamEventError, Error: err.Error()})
		return
	}

	if err := stream.Send(&entity.StreamEvent{Type: entity.StreamEventDone, Turn: turn}); err != nil {
		ctxzap.Warn(ctx, "failed to write stream result", zap.Error(err))
	}
}

// History handles GET /projects/{project_id}/messages?stage=
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("project_id", projectID),
		zap.String("action", "History"),
	)

	history, err := h.usecase.History(ctx, projectID, r.URL.Query().Get("stage"))
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, history)
}

// AcceptSuggestion handles POST /projects/{project_id}/suggestions/{suggestion_id}/accept
func (h *Handler) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	h.resolveSuggestion(w, r, entity.DecisionAccept)
}

// DeclineSuggestion handles POST /projects/{project_id}/suggestions/{suggestion_id}/decline
func (h *Handler) DeclineSuggestion(w http.ResponseWriter, r *http.Request) {
	h.resolveSuggestion(w, r, entity.DecisionDecline)
}

func (h *Handler) resolveSuggestion(w http.ResponseWriter, r *http.Request, decision entity.SuggestionDecision) {
	projectID := chi.URLParam(r, "project_id")
	suggestionID := chi.URLParam(r, "suggestion_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("project_id", projectID),
		zap.String("suggestion_id", suggestionID),
		zap.String("action", "ResolveSuggestion"),
	)

	resp, err := h.usecase.ResolveSuggestion(ctx, projectID, suggestionID, decision)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

// Knowledge handles GET /projects/{project_id}/knowledge?stage=
func (h *Handler) Knowledge(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("project_id", projectID),
		zap.String("action", "Knowledge"),
	)

	resp, err := h.usecase.Knowledge(ctx, projectID, r.URL.Query().Get("stage"))
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

// Context handles GET /projects/{project_id}/context
func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("project_id", projectID),
		zap.String("action", "Context"),
	)

	resp, err := h.usecase.Context(ctx, projectID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}
