package project

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/pkg/formatter"
	"github.com/futig/launchpad-backend/internal/pkg/logger"
	"github.com/futig/launchpad-backend/internal/pkg/validator"
	"github.com/futig/launchpad-backend/internal/repository"
	"github.com/futig/launchpad-backend/internal/usecase/conversation"
	"github.com/futig/launchpad-backend/internal/workflow"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// projectRuntime is the live, non-persisted state of a project
type projectRuntime struct {
	// advance serializes stage transitions of the project
	advance    sync.Mutex
	creds      entity.Credentials
	capability *capabilityHandle
	engines    map[entity.Stage]*conversation.Engine
}

// ProjectUsecase implements project business logic
type ProjectUsecase struct {
	projectRepo repository.ProjectRepository
	engines     *conversation.Factory
	registry    *workflow.Registry
	llmFactory  CapabilityFactory
	notifier    Notifier
	formatters  *formatter.Factory
	validator   *validator.Validator
	logger      *zap.Logger

	mu       sync.Mutex
	runtimes map[string]*projectRuntime
	pending  sync.WaitGroup
	now      func() time.Time
}

// NewUsecase creates a new project use case
func NewUsecase(
	projectRepo repository.ProjectRepository,
	engines *conversation.Factory,
	llmFactory CapabilityFactory,
	notifier Notifier,
	formatters *formatter.Factory,
	validator *validator.Validator,
	logger *zap.Logger,
) *ProjectUsecase {
	return &ProjectUsecase{
		projectRepo: projectRepo,
		engines:     engines,
		registry:    engines.Registry(),
		llmFactory:  llmFactory,
		notifier:    notifier,
		formatters:  formatters,
		validator:   validator,
		logger:      logger,
		runtimes:    make(map[string]*projectRuntime),
		now:         time.Now,
	}
}

// Registry exposes the stage workflow the projects travel through
func (uc *ProjectUsecase) Registry() *workflow.Registry {
	return uc.registry
}

// CreateProject stores a new project positioned at the first stage
func (uc *ProjectUsecase) CreateProject(ctx context.Context, req *entity.CreateProjectRequest) (*entity.Project, error) {
	if err := uc.validator.ValidateCreateProject(req); err != nil {
		return nil, err
	}

	now := uc.now()
	project, err := uc.projectRepo.Create(ctx, entity.Project{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Stage:       uc.registry.First(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Data:        make(map[entity.Stage]*entity.StageData),
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	ctxzap.Info(ctx, "project created",
		zap.String("project_id", project.ID),
		zap.String("name", project.Name),
	)

	return project, nil
}

func (uc *ProjectUsecase) GetProject(ctx context.Context, projectID string) (*entity.Project, error) {
	return uc.projectRepo.Get(ctx, projectID)
}

func (uc *ProjectUsecase) ListProjects(ctx context.Context, req *entity.ListProjectsRequest) (*entity.ListProjectsResponse, error) {
	req.Normalize()

	projects, err := uc.projectRepo.List(ctx, req.Skip, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	resp := &entity.ListProjectsResponse{Projects: make([]*entity.ProjectSummary, 0, len(projects))}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, &entity.ProjectSummary{
			ID:       p.ID,
			Name:     p.Name,
			Stage:    p.Stage,
			Progress: p.Progress,
			Updated:  p.UpdatedAt,
		})
	}
	return resp, nil
}

// DeleteProject removes the project and drops its conversations
func (uc *ProjectUsecase) DeleteProject(ctx context.Context, projectID string) error {
	if err := uc.projectRepo.Delete(ctx, projectID); err != nil {
		return err
	}
	uc.Forget(projectID)

	ctxzap.Info(ctx, "project deleted", zap.String("project_id", projectID))
	return nil
}

// Forget drops the runtime state of a project, e.g. after cache eviction
func (uc *ProjectUsecase) Forget(projectID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.runtimes, projectID)
}

// SetCredentials overlays per-project provider keys on the server keys
// and swaps the capability of every engine of the project.
func (uc *ProjectUsecase) SetCredentials(ctx context.Context, projectID string, req *entity.SetCredentialsRequest) (*entity.CredentialsStatusResponse, error) {
	if err := uc.validator.ValidateCredentials(req); err != nil {
		return nil, err
	}
	if _, err := uc.projectRepo.Get(ctx, projectID); err != nil {
		return nil, err
	}

	rt, err := uc.runtime(ctx, projectID)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	creds := make(entity.Credentials, len(rt.creds))
	for p, key := range rt.creds {
		creds[p] = key
	}
	for p, key := range req.ToCredentials() {
		if key != "" {
			creds[p] = key
		}
	}

	svc, err := uc.llmFactory.NewService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("build capability: %w", err)
	}
	rt.creds = creds
	rt.capability.swap(svc)

	ctxzap.Info(ctx, "project credentials updated",
		zap.String("project_id", projectID),
		zap.Int("providers", len(svc.Providers())),
	)

	return &entity.CredentialsStatusResponse{
		Configured: svc.Configured(),
		Providers:  svc.Providers(),
	}, nil
}

func (uc *ProjectUsecase) CredentialsStatus(ctx context.Context, projectID string) (*entity.CredentialsStatusResponse, error) {
	if _, err := uc.projectRepo.Get(ctx, projectID); err != nil {
		return nil, err
	}

	rt, err := uc.runtime(ctx, projectID)
	if err != nil {
		return nil, err
	}

	svc := rt.capability.service()
	return &entity.CredentialsStatusResponse{
		Configured: svc.Configured(),
		Providers:  svc.Providers(),
	}, nil
}

// StartConversation returns the greeting of the project's active stage
func (uc *ProjectUsecase) StartConversation(ctx context.Context, projectID string) (*entity.ChatMessage, error) {
	project, err := uc.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	engine, err := uc.engine(ctx, project.ID, project.Stage)
	if err != nil {
		return nil, err
	}
	return engine.Greeting(), nil
}

// SendMessage runs one conversation turn on the active stage and advances
// the project when the turn completes the stage.
func (uc *ProjectUsecase) SendMessage(ctx context.Context, projectID, text string, sink func(string)) (*entity.ChatTurn, error) {
	text, err := uc.validator.ValidateMessage(text)
	if err != nil {
		return nil, err
	}

	project, err := uc.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ctx = logger.AddFields(ctx,
		zap.String("project_id", project.ID),
		zap.String("stage", string(project.Stage)),
	)

	engine, err := uc.engine(ctx, project.ID, project.Stage)
	if err != nil {
		return nil, err
	}

	var opts []conversation.RespondOption
	if sink != nil {
		opts = append(opts, conversation.WithChunkSink(sink))
	}

	msg, err := engine.Respond(ctx, text, opts...)
	if err != nil {
		return nil, fmt.Errorf("respond: %w", err)
	}

	turn := &entity.ChatTurn{Message: msg}

	if msg.Metadata != nil && msg.Metadata.Type == entity.MessageTypeError {
		uc.notify(ctx, func(ctx context.Context) {
			uc.notifier.SendError(ctx, project, msg.Content, map[string]any{
				"stage":      project.Stage,
				"error_code": msg.Metadata.ErrorCode,
			})
		})
	}

	active := engine
	if engine.IsStageComplete() {
		turn.StageComplete = true
		next, updated, err := uc.completeStage(ctx, project.ID, engine, turn)
		if err != nil {
			return nil, err
		}
		project = updated
		if next != nil {
			active = next
		}
	}

	store, err := uc.projectRepo.Knowledge(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	turn.Context = active.Context()
	turn.Knowledge = store.Entries()
	turn.Project = project
	return turn, nil
}

// completeStage archives the finished stage once and opens the next one
func (uc *ProjectUsecase) completeStage(ctx context.Context, projectID string, engine *conversation.Engine, turn *entity.ChatTurn) (*conversation.Engine, *entity.Project, error) {
	rt, err := uc.runtime(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	rt.advance.Lock()
	defer rt.advance.Unlock()

	project, err := uc.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	stage := engine.Stage()
	if data := project.Data[stage]; data != nil && data.Completed {
		return nil, project, nil
	}

	summary, err := engine.Conclude()
	if err != nil {
		return nil, nil, fmt.Errorf("conclude stage: %w", err)
	}
	turn.StageSummary = summary

	adv := uc.registry.Advance(project, stage, engine.Context(), uc.now())
	project, err = uc.projectRepo.Update(ctx, *project)
	if err != nil {
		return nil, nil, fmt.Errorf("update project: %w", err)
	}

	ctxzap.Info(ctx, "stage completed",
		zap.String("completed_stage", string(stage)),
		zap.String("next_stage", string(adv.To)),
		zap.Int("progress", adv.Progress),
	)

	completed := project.Clone()
	uc.notify(ctx, func(ctx context.Context) {
		uc.notifier.SendStageCompleted(ctx, completed, &entity.CallbackStageCompletedData{
			Stage:      stage,
			NextStage:  adv.To,
			Progress:   adv.Progress,
			StageData:  completed.Data[stage],
			FinalStage: adv.FinalStage,
		})
	})

	if !adv.Advanced {
		return nil, project, nil
	}

	next, err := uc.engine(ctx, projectID, adv.To)
	if err != nil {
		return nil, nil, err
	}
	turn.AdvancedTo = adv.To
	turn.Greeting = next.Greeting()
	return next, project, nil
}

// ResolveSuggestion accepts or declines a suggestion of any stage conversation
func (uc *ProjectUsecase) ResolveSuggestion(
	ctx context.Context,
	projectID, suggestionID string,
	decision entity.SuggestionDecision,
) (*entity.ResolveSuggestionResponse, error) {
	if err := decision.Validate(); err != nil {
		return nil, err
	}

	project, err := uc.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	engine := uc.findSuggestionOwner(projectID, suggestionID)
	if engine == nil {
		return nil, entity.ErrSuggestionNotFound
	}

	msg, suggestion, err := engine.ResolveSuggestion(ctx, suggestionID, decision)
	if err != nil {
		return nil, fmt.Errorf("resolve suggestion: %w", err)
	}

	ctxzap.Info(ctx, "suggestion resolved",
		zap.String("project_id", projectID),
		zap.String("suggestion_id", suggestionID),
		zap.String("status", string(suggestion.Status)),
	)

	uc.notify(ctx, func(ctx context.Context) {
		uc.notifier.SendSuggestionResolved(ctx, project, suggestion)
	})

	return &entity.ResolveSuggestionResponse{
		Message:    msg,
		Suggestion: suggestion,
		Context:    engine.Context(),
	}, nil
}

// History returns the conversation of a stage, the active stage when stage is empty
func (uc *ProjectUsecase) History(ctx context.Context, projectID, rawStage string) (*entity.HistoryResponse, error) {
	project, err := uc.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	stage := project.Stage
	if rawStage != "" {
		if stage, err = uc.registry.ParseStage(rawStage); err != nil {
			return nil, err
		}
	}

	resp := &entity.HistoryResponse{Stage: stage, Messages: []*entity.ChatMessage{}}
	if engine := uc.existingEngine(projectID, stage); engine != nil {
		resp.Messages = engine.History()
		resp.Summary = engine.Summary()
	}
	return resp, nil
}

// Knowledge lists the project knowledge base, optionally for one stage
func (uc *ProjectUsecase) Knowledge(ctx context.Context, projectID, rawStage string) (*entity.KnowledgeResponse, error) {
	store, err := uc.projectRepo.Knowledge(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if rawStage == "" {
		return &entity.KnowledgeResponse{Entries: store.Entries()}, nil
	}

	stage, err := uc.registry.ParseStage(rawStage)
	if err != nil {
		return nil, err
	}
	return &entity.KnowledgeResponse{Entries: store.ByStage(stage)}, nil
}

// Context returns the running conversation state of the active stage
func (uc *ProjectUsecase) Context(ctx context.Context, projectID string) (*entity.ContextResponse, error) {
	project, err := uc.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	engine, err := uc.engine(ctx, project.ID, project.Stage)
	if err != nil {
		return nil, err
	}

	resp := &entity.ContextResponse{
		Context:       engine.Context(),
		StageComplete: engine.IsStageComplete(),
		Summary:       engine.Summary(),
	}
	if topic, ok := engine.OpenTopic(); ok {
		resp.OpenTopic = topic.ID
	}
	return resp, nil
}

// Wait blocks until every queued webhook delivery has finished
func (uc *ProjectUsecase) Wait() {
	uc.pending.Wait()
}

// notify delivers a webhook in the background, detached from request cancellation
func (uc *ProjectUsecase) notify(ctx context.Context, send func(ctx context.Context)) {
	if uc.notifier == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	uc.pending.Add(1)
	go func() {
		defer uc.pending.Done()
		send(ctx)
	}()
}

func (uc *ProjectUsecase) runtime(ctx context.Context, projectID string) (*projectRuntime, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if rt, ok := uc.runtimes[projectID]; ok {
		return rt, nil
	}

	creds := uc.llmFactory.ServerCredentials()
	svc, err := uc.llmFactory.NewService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("build capability: %w", err)
	}

	rt := &projectRuntime{
		creds:      creds,
		capability: newCapabilityHandle(svc),
		engines:    make(map[entity.Stage]*conversation.Engine),
	}
	uc.runtimes[projectID] = rt
	return rt, nil
}

// engine returns the stage conversation, creating it on first use
func (uc *ProjectUsecase) engine(ctx context.Context, projectID string, stage entity.Stage) (*conversation.Engine, error) {
	rt, err := uc.runtime(ctx, projectID)
	if err != nil {
		return nil, err
	}

	store, err := uc.projectRepo.Knowledge(ctx, projectID)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if e, ok := rt.engines[stage]; ok {
		return e, nil
	}

	e, err := uc.engines.New(stage, store, rt.capability)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	rt.engines[stage] = e

	ctxzap.Debug(ctx, "conversation created",
		zap.String("project_id", projectID),
		zap.String("stage", string(stage)),
	)
	return e, nil
}

func (uc *ProjectUsecase) existingEngine(projectID string, stage entity.Stage) *conversation.Engine {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	rt, ok := uc.runtimes[projectID]
	if !ok {
		return nil
	}
	return rt.engines[stage]
}

func (uc *ProjectUsecase) findSuggestionOwner(projectID, suggestionID string) *conversation.Engine {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	rt, ok := uc.runtimes[projectID]
	if !ok {
		return nil
	}
	for _, e := range rt.engines {
		if e.HasSuggestion(suggestionID) {
			return e
		}
	}
	return nil
}
