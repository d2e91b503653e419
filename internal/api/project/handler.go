package project

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/pkg/logger"
	"github.com/futig/launchpad-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase ProjectUsecase
}

func NewHandler(usecase ProjectUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// CreateProject handles POST /projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateProject")

	var req entity.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	project, err := h.usecase.CreateProject(ctx, &req)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Created(w, project)
}

// ListProjects handles GET /projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListProjects")

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	req := entity.ListProjectsRequest{
		Skip:  skip,
		Limit: limit,
	}

	ctxzap.Debug(ctx, "listing projects", zap.Int("skip", skip), zap.Int("limit", limit))

	resp, err := h.usecase.ListProjects(ctx, &req)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

// GetProject handles GET /projects/{project_id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("project_id", projectID),
		zap.String("action", "GetProject"),
	)

	project, err := h.usecase.GetProject(ctx, projectID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, project)
}

// DeleteProject handles DELETE /projects/{project_id}
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("project_id", projectID),
		zap.String("action", "DeleteProject"),
	)

	if err := h.usecase.DeleteProject(ctx, projectID); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, &entity.DeleteProjectResponse{Status: "deleted"})
}

// SetCredentials handles PUT /projects/{project_id}/credentials
func (h *Handler) SetCredentials(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("project_id", projectID),
		zap.String("action", "SetCredentials"),
	)

	var req entity.SetCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	status, err := h.usecase.SetCredentials(ctx, projectID, &req)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, status)
}

// CredentialsStatus handles GET /projects/{project_id}/credentials
func (h *Handler) CredentialsStatus(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("project_id", projectID),
		zap.String("action", "CredentialsStatus"),
	)

	status, err := h.usecase.CredentialsStatus(ctx, projectID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, status)
}

// Report handles GET /projects/{project_id}/report?format=markdown|pdf|docx
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("project_id", projectID),
		zap.String("action", "Report"),
	)

	format, err := entity.ParseReportFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid format parameter", err)
		return
	}

	file, err := h.usecase.Report(ctx, projectID, format)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Attachment(w, file)
}
