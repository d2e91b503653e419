package conversation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/knowledge"
	"github.com/futig/launchpad-backend/internal/pkg/logger"
	"github.com/futig/launchpad-backend/internal/workflow"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// minInsightLength is the length a scalar insight must exceed to be recorded
const minInsightLength = 10

// Settings tunes thresholds and windows of an engine
type Settings struct {
	MinSubstance     int
	SummaryInterval  int
	ExtractionWindow int
	ContextWindow    int
}

// DefaultSettings mirrors the configuration defaults
func DefaultSettings() Settings {
	return Settings{
		MinSubstance:     50,
		SummaryInterval:  5,
		ExtractionWindow: 4,
		ContextWindow:    6,
	}
}

// Dependencies are the collaborators of an engine; nil strategies fall back to
// the rule-based variants.
type Dependencies struct {
	Registry   *workflow.Registry
	Store      *knowledge.Store
	Capability Capability
	Responder  Responder
	Suggester  Suggester
	Gate       Gate
	Completion CompletionStrategy
}

// Engine runs the conversation of one project stage.
// At most one Respond or ResolveSuggestion runs at a time; overlapping calls
// fail with entity.ErrConversationBusy.
type Engine struct {
	turn sync.Mutex

	mu       sync.RWMutex
	history  []*entity.ChatMessage
	cc       *entity.ConversationContext
	summary  string
	owners   map[string]*entity.ChatMessage
	greeted  bool
	settings Settings

	stage      entity.StageConfig
	registry   *workflow.Registry
	store      *knowledge.Store
	capability Capability
	responder  Responder
	suggester  Suggester
	gate       Gate
	completion CompletionStrategy
	now        func() time.Time
}

func NewEngine(stage entity.Stage, deps Dependencies, settings Settings) *Engine {
	if deps.Registry == nil {
		deps.Registry = workflow.Default()
	}
	if deps.Store == nil {
		deps.Store = knowledge.NewStore()
	}
	if deps.Responder == nil {
		deps.Responder = StaticResponder{}
	}
	if deps.Suggester == nil {
		deps.Suggester = RuleSuggester{}
	}
	if deps.Gate == nil {
		deps.Gate = NeverSuggest
	}
	if deps.Completion == nil {
		deps.Completion = SubstanceCompletion{}
	}

	defaults := DefaultSettings()
	if settings.MinSubstance <= 0 {
		settings.MinSubstance = defaults.MinSubstance
	}
	if settings.SummaryInterval <= 0 {
		settings.SummaryInterval = defaults.SummaryInterval
	}
	if settings.ExtractionWindow <= 0 {
		settings.ExtractionWindow = defaults.ExtractionWindow
	}
	if settings.ContextWindow <= 0 {
		settings.ContextWindow = defaults.ContextWindow
	}

	cfg := deps.Registry.StageConfig(stage)

	return &Engine{
		history:    make([]*entity.ChatMessage, 0),
		cc:         entity.NewConversationContext(cfg.ID),
		owners:     make(map[string]*entity.ChatMessage),
		settings:   settings,
		stage:      cfg,
		registry:   deps.Registry,
		store:      deps.Store,
		capability: deps.Capability,
		responder:  deps.Responder,
		suggester:  deps.Suggester,
		gate:       deps.Gate,
		completion: deps.Completion,
		now:        time.Now,
	}
}

// RespondOption customises a single Respond call
type RespondOption func(*respondOptions)

type respondOptions struct {
	sink func(string)
}

// WithChunkSink forwards every reply chunk to sink as it is produced
func WithChunkSink(sink func(string)) RespondOption {
	return func(o *respondOptions) {
		o.sink = sink
	}
}

func (e *Engine) Stage() entity.Stage {
	return e.stage.ID
}

// Greeting appends the opening assistant message once and returns it
func (e *Engine) Greeting() *entity.ChatMessage {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.greeted {
		for _, m := range e.history {
			if m.Role == entity.RoleAssistant {
				return m.Clone()
			}
		}
	}
	e.greeted = true

	content := stageGreeting(e.stage)
	if e.stage.ID == e.registry.First() {
		content = greetingReady
	}
	if e.responder.NeedsCapability() && (e.capability == nil || !e.capability.Configured()) {
		content = greetingNoKey
	}

	msg := e.newMessage(entity.RoleAssistant, content, &entity.MessageMetadata{
		Type:  entity.MessageTypeQuestion,
		Stage: e.stage.ID,
	})
	e.history = append(e.history, msg)
	return msg.Clone()
}

// Respond answers one user utterance and advances the stage sub-machine
func (e *Engine) Respond(ctx context.Context, utterance string, opts ...RespondOption) (*entity.ChatMessage, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, entity.ErrEmptyUtterance
	}

	if !e.turn.TryLock() {
		return nil, entity.ErrConversationBusy
	}
	defer e.turn.Unlock()

	o := &respondOptions{}
	for _, opt := range opts {
		opt(o)
	}

	ctx = logger.WithAction(ctx, "conversation_respond")
	ctx = logger.AddFields(ctx, zap.String("stage", string(e.stage.ID)))

	e.mu.Lock()
	e.history = append(e.history, e.newMessage(entity.RoleUser, utterance, nil))
	completed := append([]string(nil), e.cc.CompletedTopics...)
	e.mu.Unlock()

	topic, open := e.registry.OpenTopic(e.stage.ID, completed)
	if !open {
		msg := e.summaryMessage()
		if o.sink != nil {
			o.sink(msg.Content)
		}
		return e.snapshot(e.appendAssistant(msg)), nil
	}

	businessContext := e.businessContext()
	substantive := utf8.RuneCountInString(utterance) > e.settings.MinSubstance

	reply, err := e.responder.Reply(ctx, ReplyInput{
		Stage:           e.stage.ID,
		Topic:           topic,
		Utterance:       utterance,
		Substantive:     substantive,
		BusinessContext: businessContext + "\n\nConversation Context: " + e.recentConversation(),
		Sink:            o.sink,
	})

	var msg *entity.ChatMessage
	if err != nil {
		msg = e.fallbackMessage(ctx, err)
		if o.sink != nil {
			o.sink(msg.Content)
		}
	} else {
		msg = e.newMessage(entity.RoleAssistant, reply, &entity.MessageMetadata{
			Type:  entity.MessageTypeQuestion,
			Stage: e.stage.ID,
		})
	}
	msg = e.appendAssistant(msg)

	extracted := e.extractKnowledge(ctx)

	if err == nil {
		values := e.applyCompletion(TurnOutcome{
			Stage:       e.stage.ID,
			Required:    e.registry.RequiredTopics(e.stage.ID),
			Completed:   completed,
			Topic:       topic,
			Utterance:   utterance,
			Substantive: substantive,
			Extracted:   extracted,
			Knowledge:   e.store,
		})
		if len(values) > 0 {
			e.mu.Lock()
			msg.Metadata.ExtractedData = values
			e.mu.Unlock()
		}

		e.proposeFeatures(ctx, msg, SuggestInput{
			Utterance:       utterance,
			Response:        reply,
			BusinessContext: businessContext,
			Topic:           topic.ID,
			TopicCompleted:  e.topicCompleted(topic.ID),
		}, o.sink)
	}

	e.refreshSummary(ctx)

	return e.snapshot(msg), nil
}

// Conclude appends the stage summary once every required topic is completed
func (e *Engine) Conclude() (*entity.ChatMessage, error) {
	if !e.turn.TryLock() {
		return nil, entity.ErrConversationBusy
	}
	defer e.turn.Unlock()

	if !e.IsStageComplete() {
		return nil, fmt.Errorf("%w: stage %s has open topics", entity.ErrInvalidParameter, e.stage.ID)
	}
	return e.snapshot(e.appendAssistant(e.summaryMessage())), nil
}

// ResolveSuggestion moves a pending suggestion to accepted or declined and
// appends the confirmation message.
func (e *Engine) ResolveSuggestion(ctx context.Context, suggestionID string, decision entity.SuggestionDecision) (*entity.ChatMessage, *entity.FeatureSuggestion, error) {
	if err := decision.Validate(); err != nil {
		return nil, nil, err
	}

	if !e.turn.TryLock() {
		return nil, nil, entity.ErrConversationBusy
	}
	defer e.turn.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	owner, ok := e.owners[suggestionID]
	if !ok {
		return nil, nil, entity.ErrSuggestionNotFound
	}

	var suggestion *entity.FeatureSuggestion
	for _, s := range owner.Metadata.Suggestions {
		if s.ID == suggestionID {
			suggestion = s
			break
		}
	}
	if suggestion == nil {
		return nil, nil, entity.ErrSuggestionNotFound
	}
	if suggestion.Status != entity.SuggestionStatusPending {
		return nil, nil, fmt.Errorf("%w: suggestion %s is %s", entity.ErrSuggestionResolved, suggestionID, suggestion.Status)
	}

	suggestion.Status = decision.Status()

	content := confirmDeclined
	if decision == entity.DecisionAccept {
		content = confirmAccepted
		e.store.Append(&entity.KnowledgeEntry{
			Type:       entity.KnowledgeFeature,
			Title:      suggestion.Title,
			Content:    suggestion.Description,
			Source:     entity.SourceUserInput,
			Stage:      e.stage.ID,
			Confidence: knowledge.ConfidenceAcceptedSuggestion,
			Tags:       []string{"feature", "accepted"},
		})
	}

	msg := e.newMessage(entity.RoleAssistant, content, &entity.MessageMetadata{
		Type:  entity.MessageTypeConfirmation,
		Stage: e.stage.ID,
	})
	e.history = append(e.history, msg)

	ctxzap.Info(ctx, "suggestion resolved",
		zap.String("suggestion_id", suggestionID),
		zap.String("status", string(suggestion.Status)),
	)

	resolved := *suggestion
	return msg.Clone(), &resolved, nil
}

// HasSuggestion reports whether the suggestion was proposed in this conversation
func (e *Engine) HasSuggestion(suggestionID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.owners[suggestionID]
	return ok
}

// IsStageComplete reports whether every required topic is completed
func (e *Engine) IsStageComplete() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.IsStageComplete(e.stage.ID, e.cc.CompletedTopics)
}

// OpenTopic returns the topic the conversation is currently collecting
func (e *Engine) OpenTopic() (entity.Topic, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.OpenTopic(e.stage.ID, e.cc.CompletedTopics)
}

func (e *Engine) Context() *entity.ConversationContext {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cc.Clone()
}

func (e *Engine) History() []*entity.ChatMessage {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*entity.ChatMessage, 0, len(e.history))
	for _, m := range e.history {
		out = append(out, m.Clone())
	}
	return out
}

func (e *Engine) Summary() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.summary
}

// Knowledge returns the knowledge entries of this stage
func (e *Engine) Knowledge() []*entity.KnowledgeEntry {
	return e.store.ByStage(e.stage.ID)
}

func (e *Engine) newMessage(role entity.MessageRole, content string, meta *entity.MessageMetadata) *entity.ChatMessage {
	return &entity.ChatMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: e.now(),
		Metadata:  meta,
	}
}

func (e *Engine) appendAssistant(msg *entity.ChatMessage) *entity.ChatMessage {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, msg)
	if msg.Metadata != nil {
		for _, s := range msg.Metadata.Suggestions {
			e.owners[s.ID] = msg
			e.cc.Suggestions = append(e.cc.Suggestions, s)
		}
	}
	return msg
}

func (e *Engine) snapshot(msg *entity.ChatMessage) *entity.ChatMessage {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return msg.Clone()
}

func (e *Engine) summaryMessage() *entity.ChatMessage {
	var next *entity.StageConfig
	if id, ok := e.registry.NextStage(e.stage.ID); ok {
		cfg := e.registry.StageConfig(id)
		next = &cfg
	}

	return e.newMessage(entity.RoleAssistant, stageSummary(e.store.ByStage(e.stage.ID), next), &entity.MessageMetadata{
		Type:  entity.MessageTypeSummary,
		Stage: e.stage.ID,
	})
}

func (e *Engine) fallbackMessage(ctx context.Context, err error) *entity.ChatMessage {
	meta := &entity.MessageMetadata{
		Type:  entity.MessageTypeError,
		Stage: e.stage.ID,
	}

	content := fallbackError
	if errors.Is(err, entity.ErrProviderUnavailable) {
		content = fallbackUnavailable
		meta.ErrorCode = errorCodeNoKey
		ctxzap.Info(ctx, "no provider configured, replying with fallback")
	} else {
		meta.ErrorCode = errorCodeProvider
		ctxzap.Error(ctx, "responder failed", zap.Error(err))
	}

	return e.newMessage(entity.RoleAssistant, content, meta)
}

// proposeFeatures attaches new suggestions to the reply and lists them in its content
func (e *Engine) proposeFeatures(ctx context.Context, msg *entity.ChatMessage, in SuggestInput, sink func(string)) {
	if !e.gate() {
		return
	}

	suggestions := e.withoutPending(e.suggester.Suggest(ctx, in))
	if len(suggestions) == 0 {
		return
	}

	list := suggestionList(suggestions)

	e.mu.Lock()
	msg.Metadata.Type = entity.MessageTypeFeatureProposal
	msg.Metadata.Suggestions = suggestions
	msg.Content += list
	for _, s := range suggestions {
		e.owners[s.ID] = msg
		e.cc.Suggestions = append(e.cc.Suggestions, s)
	}
	e.mu.Unlock()

	if sink != nil {
		sink(list)
	}

	ctxzap.Debug(ctx, "features suggested",
		zap.String("suggester", e.suggester.Name()),
		zap.Int("count", len(suggestions)),
	)
}

// withoutPending drops suggestions whose title is already awaiting a decision
func (e *Engine) withoutPending(suggestions []*entity.FeatureSuggestion) []*entity.FeatureSuggestion {
	e.mu.RLock()
	defer e.mu.RUnlock()

	pending := make(map[string]struct{}, len(e.cc.Suggestions))
	for _, s := range e.cc.Suggestions {
		if s.Status == entity.SuggestionStatusPending {
			pending[strings.ToLower(s.Title)] = struct{}{}
		}
	}

	out := suggestions[:0]
	for _, s := range suggestions {
		key := strings.ToLower(s.Title)
		if _, ok := pending[key]; ok {
			continue
		}
		pending[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (e *Engine) topicCompleted(topic string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Contains(e.cc.CompletedTopics, topic)
}

// applyCompletion marks topics done and returns the values recorded from user input
func (e *Engine) applyCompletion(out TurnOutcome) map[string]string {
	completions := e.completion.Complete(out)
	if len(completions) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var values map[string]string
	for _, c := range completions {
		if !e.cc.CompleteTopic(c.Topic) {
			continue
		}
		if c.Value == "" {
			continue
		}

		key := knowledge.FieldKey(c.Topic)
		e.cc.CollectedData[key] = c.Value
		if values == nil {
			values = make(map[string]string)
		}
		values[key] = c.Value

		if utf8.RuneCountInString(c.Value) > minInsightLength {
			e.store.Append(&entity.KnowledgeEntry{
				Type:       knowledge.TypeForTopic(c.Topic),
				Title:      knowledge.FormatTitle(key),
				Content:    c.Value,
				Source:     entity.SourceUserInput,
				Stage:      e.stage.ID,
				Confidence: knowledge.ConfidenceUserInput,
				Tags:       knowledge.GenerateTags(c.Value),
			})
		}
	}
	return values
}

// extractKnowledge returns the number of insights found, or -1 when extraction did not succeed
func (e *Engine) extractKnowledge(ctx context.Context) int {
	if e.capability == nil || !e.capability.Configured() {
		return -1
	}

	e.mu.RLock()
	transcript := transcriptOf(lastN(e.history, e.settings.ExtractionWindow))
	e.mu.RUnlock()

	insights, err := e.capability.ExtractInsights(ctx, transcript)
	if err != nil {
		ctxzap.Warn(ctx, "knowledge extraction failed", zap.Error(err))
		return -1
	}

	found := 0
	for _, field := range insights.Fields() {
		name, value := field[0], strings.TrimSpace(field[1])
		if utf8.RuneCountInString(value) <= minInsightLength {
			continue
		}
		found++

		added := e.store.Append(&entity.KnowledgeEntry{
			Type:       knowledge.TypeForField(name),
			Title:      knowledge.FormatTitle(name),
			Content:    value,
			Source:     entity.SourceAIAnalysis,
			Stage:      e.stage.ID,
			Confidence: knowledge.ConfidenceAIAnalysis,
			Tags:       knowledge.GenerateTags(value),
		})

		e.mu.Lock()
		if _, ok := e.cc.CollectedData[name]; !ok {
			e.cc.CollectedData[name] = value
		}
		e.mu.Unlock()

		if !added {
			ctxzap.Debug(ctx, "insight already known", zap.String("field", name))
		}
	}

	for _, feature := range insights.SuggestedFeatures {
		feature = strings.TrimSpace(feature)
		if feature == "" {
			continue
		}
		found++
		e.store.Append(&entity.KnowledgeEntry{
			Type:       entity.KnowledgeFeature,
			Title:      feature,
			Content:    "Suggested feature: " + feature,
			Source:     entity.SourceAISuggestion,
			Stage:      e.stage.ID,
			Confidence: knowledge.ConfidenceAISuggestion,
			Tags:       []string{"feature", "ai-suggested"},
		})
	}

	ctxzap.Debug(ctx, "knowledge extracted", zap.Int("insights", found))
	return found
}

func (e *Engine) refreshSummary(ctx context.Context) {
	if e.capability == nil || !e.capability.Configured() {
		return
	}

	e.mu.RLock()
	n := len(e.history)
	transcript := transcriptOf(e.history)
	e.mu.RUnlock()

	if n%e.settings.SummaryInterval != 0 {
		return
	}

	summary, err := e.capability.Summarize(ctx, transcript)
	if err != nil || strings.TrimSpace(summary) == "" {
		ctxzap.Warn(ctx, "summary update failed, keeping previous summary",
			zap.Error(errors.Join(entity.ErrSummaryUpdate, err)),
		)
		return
	}

	e.mu.Lock()
	e.summary = summary
	e.mu.Unlock()
}

// businessContext describes the stage, its known facts and the rolling summary
func (e *Engine) businessContext() string {
	e.mu.RLock()
	completed := strings.Join(e.cc.CompletedTopics, ", ")
	summary := e.summary
	e.mu.RUnlock()

	entries := e.store.ByStage(e.stage.ID)
	known := make([]string, 0, len(entries))
	for _, entry := range entries {
		known = append(known, entry.Title+": "+entry.Content)
	}

	return fmt.Sprintf("Current Stage: %s\nCompleted Topics: %s\nKnown Information:\n%s\n\nConversation Summary: %s",
		e.stage.ID, completed, strings.Join(known, "\n"), summary)
}

func (e *Engine) recentConversation() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return "Recent conversation:\n" + transcriptOf(lastN(e.history, e.settings.ContextWindow))
}

func lastN(messages []*entity.ChatMessage, n int) []*entity.ChatMessage {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

func transcriptOf(messages []*entity.ChatMessage) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, string(m.Role)+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}
