package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/knowledge"
	"github.com/futig/launchpad-backend/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCapability struct {
	mu sync.Mutex

	configured bool
	advice     string
	adviceErr  error
	chunks     []string
	insights   *entity.BusinessInsights
	extractErr error
	drafts     []entity.SuggestionDraft
	summary    string

	started chan struct{}
	release chan struct{}

	extractCalls   int
	summarizeCalls int
	lastContext    string
}

func (f *fakeCapability) Configured() bool { return f.configured }

func (f *fakeCapability) Advise(_ context.Context, businessContext, _ string) (string, error) {
	f.mu.Lock()
	f.lastContext = businessContext
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
		<-f.release
	}
	if f.adviceErr != nil {
		return "", f.adviceErr
	}
	return f.advice, nil
}

func (f *fakeCapability) AdviseStream(ctx context.Context, businessContext, question string, sink func(string)) (string, error) {
	if f.adviceErr != nil {
		return "", f.adviceErr
	}
	for _, c := range f.chunks {
		sink(c)
	}
	return strings.Join(f.chunks, ""), nil
}

func (f *fakeCapability) ExtractInsights(context.Context, string) (*entity.BusinessInsights, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extractCalls++
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	if f.insights == nil {
		return &entity.BusinessInsights{}, nil
	}
	copied := *f.insights
	return &copied, nil
}

func (f *fakeCapability) SuggestFeatures(context.Context, entity.SuggestionPrompt) ([]entity.SuggestionDraft, error) {
	return f.drafts, nil
}

func (f *fakeCapability) Summarize(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summarizeCalls++
	return f.summary, nil
}

const (
	ideaAnswer     = "An app that matches dog owners with trusted neighbours who can walk their dogs"
	problemAnswer  = "Busy owners cannot leave work at lunch and dog walkers are expensive and unreliable"
	audienceAnswer = "Young professionals in big cities who own dogs and work long office hours"
	solutionAnswer = "A mobile app that lets people book fitness classes at studios near them"
	uniqueAnswer   = "Verified neighbours with reviews and insurance included in every single walk"
)

func newStaticEngine(t *testing.T, gate Gate) (*Engine, *knowledge.Store) {
	t.Helper()
	store := knowledge.NewStore()
	e := NewEngine(entity.StageSpark, Dependencies{
		Registry:   workflow.Default(),
		Store:      store,
		Responder:  StaticResponder{},
		Suggester:  RuleSuggester{},
		Gate:       gate,
		Completion: SubstanceCompletion{},
	}, DefaultSettings())
	return e, store
}

func respond(t *testing.T, e *Engine, text string) *entity.ChatMessage {
	t.Helper()
	msg, err := e.Respond(context.Background(), text)
	require.NoError(t, err)
	require.NotNil(t, msg)
	return msg
}

func TestEngine_ShortUtteranceDoesNotCompleteTopic(t *testing.T) {
	e, store := newStaticEngine(t, NeverSuggest)

	msg := respond(t, e, "Yes.")

	question := workflow.Default().StageConfig(entity.StageSpark).Topics[0].Question
	assert.Equal(t, question, msg.Content)
	assert.Empty(t, e.Context().CompletedTopics)
	assert.Zero(t, store.Len())

	topic, ok := e.OpenTopic()
	require.True(t, ok)
	assert.Equal(t, "business_idea", topic.ID)
}

func TestEngine_SubstantiveUtteranceCompletesTopic(t *testing.T) {
	e, store := newStaticEngine(t, NeverSuggest)

	msg := respond(t, e, ideaAnswer)

	followUp := workflow.Default().StageConfig(entity.StageSpark).Topics[0].FollowUp
	assert.Equal(t, followUp, msg.Content)
	assert.Equal(t, []string{"business_idea"}, e.Context().CompletedTopics)
	assert.Equal(t, ideaAnswer, e.Context().CollectedData["businessIdea"])
	assert.Equal(t, map[string]string{"businessIdea": ideaAnswer}, msg.Metadata.ExtractedData)

	entries := store.ByStage(entity.StageSpark)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.KnowledgeBusinessIdea, entries[0].Type)
	assert.Equal(t, entity.SourceUserInput, entries[0].Source)
	assert.Equal(t, "Business Idea", entries[0].Title)
	assert.InDelta(t, knowledge.ConfidenceUserInput, entries[0].Confidence, 1e-9)
	assert.Contains(t, entries[0].Tags, "mobile")
}

func TestEngine_RuleSuggestionsForMobileBooking(t *testing.T) {
	e, _ := newStaticEngine(t, AlwaysSuggest)

	respond(t, e, ideaAnswer)
	respond(t, e, problemAnswer)
	respond(t, e, audienceAnswer)
	msg := respond(t, e, solutionAnswer)

	assert.Contains(t, e.Context().CompletedTopics, "solution")
	assert.Equal(t, entity.MessageTypeFeatureProposal, msg.Metadata.Type)

	require.Len(t, msg.Metadata.Suggestions, 2)
	assert.Equal(t, "Push Notifications", msg.Metadata.Suggestions[0].Title)
	assert.Equal(t, "Calendar Integration", msg.Metadata.Suggestions[1].Title)
	for _, s := range msg.Metadata.Suggestions {
		assert.Equal(t, entity.SuggestionStatusPending, s.Status)
		assert.NotEmpty(t, s.ID)
	}
	assert.Contains(t, msg.Content, "1. **Push Notifications**")
	assert.Contains(t, msg.Content, "2. **Calendar Integration**")
	assert.Len(t, e.Context().Suggestions, 2)
}

func TestEngine_RuleSuggestionsWaitForCompletedTopic(t *testing.T) {
	e, _ := newStaticEngine(t, AlwaysSuggest)

	respond(t, e, ideaAnswer)
	respond(t, e, problemAnswer)
	respond(t, e, audienceAnswer)

	msg := respond(t, e, "mobile booking")
	assert.NotContains(t, e.Context().CompletedTopics, "solution")
	assert.Equal(t, entity.MessageTypeQuestion, msg.Metadata.Type)
	assert.Empty(t, msg.Metadata.Suggestions)

	respond(t, e, "mobile booking")
	assert.Empty(t, e.Context().Suggestions)

	msg = respond(t, e, solutionAnswer)
	assert.Len(t, msg.Metadata.Suggestions, 2)
	assert.Len(t, e.Context().Suggestions, 2)
}

func TestEngine_PendingSuggestionsAreNotRepeated(t *testing.T) {
	capability := &fakeCapability{
		configured: true,
		advice:     "Tell me more.",
		drafts: []entity.SuggestionDraft{
			{Title: "Live Tracking", Description: "Follow the walk on a map", Priority: "high"},
		},
	}
	e := NewEngine(entity.StageSpark, Dependencies{
		Registry:   workflow.Default(),
		Capability: capability,
		Responder:  NewCapabilityResponder(capability),
		Suggester:  NewCapabilitySuggester(capability),
		Gate:       AlwaysSuggest,
	}, DefaultSettings())

	first := respond(t, e, "dogs")
	require.Len(t, first.Metadata.Suggestions, 1)

	second := respond(t, e, "walks")
	assert.Empty(t, second.Metadata.Suggestions)
	assert.Len(t, e.Context().Suggestions, 1)

	_, _, err := e.ResolveSuggestion(context.Background(), first.Metadata.Suggestions[0].ID, entity.DecisionDecline)
	require.NoError(t, err)

	third := respond(t, e, "parks")
	assert.Len(t, third.Metadata.Suggestions, 1)
}

func TestEngine_FiftyCharacterAnswerIsNotSubstantive(t *testing.T) {
	const answer = "A mobile app that lets people book fitness classes"
	require.Equal(t, 50, len(answer))

	e, _ := newStaticEngine(t, AlwaysSuggest)
	respond(t, e, ideaAnswer)
	respond(t, e, problemAnswer)
	respond(t, e, audienceAnswer)

	msg := respond(t, e, answer)
	solution := workflow.Default().StageConfig(entity.StageSpark).Topics[3]
	assert.Equal(t, solution.Question, msg.Content)
	assert.NotContains(t, e.Context().CompletedTopics, "solution")
	assert.Empty(t, msg.Metadata.Suggestions)

	msg = respond(t, e, answer+".")
	assert.Contains(t, e.Context().CompletedTopics, "solution")
	require.Len(t, msg.Metadata.Suggestions, 2)
	assert.Equal(t, "Push Notifications", msg.Metadata.Suggestions[0].Title)
	assert.Equal(t, "Calendar Integration", msg.Metadata.Suggestions[1].Title)
}

func TestEngine_AllTopicsProduceSummary(t *testing.T) {
	e, store := newStaticEngine(t, NeverSuggest)

	for _, answer := range []string{ideaAnswer, problemAnswer, audienceAnswer, solutionAnswer, uniqueAnswer} {
		respond(t, e, answer)
	}
	require.True(t, e.IsStageComplete())
	assert.True(t, workflow.Default().IsStageComplete(entity.StageSpark, e.Context().CompletedTopics))

	msg := respond(t, e, "What now?")
	assert.Equal(t, entity.MessageTypeSummary, msg.Metadata.Type)
	for _, entry := range store.ByStage(entity.StageSpark) {
		assert.Contains(t, msg.Content, "**"+entry.Title+"**: "+entry.Content)
	}
	assert.Contains(t, msg.Content, "Validate")

	concluded, err := e.Conclude()
	require.NoError(t, err)
	assert.Equal(t, entity.MessageTypeSummary, concluded.Metadata.Type)
}

func TestEngine_ConcludeRequiresCompleteStage(t *testing.T) {
	e, _ := newStaticEngine(t, NeverSuggest)

	_, err := e.Conclude()
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestEngine_NoCredentialsYieldsUnavailableMessage(t *testing.T) {
	store := knowledge.NewStore()
	capability := &fakeCapability{configured: false}
	e := NewEngine(entity.StageSpark, Dependencies{
		Store:      store,
		Capability: capability,
		Responder:  NewCapabilityResponder(capability),
		Suggester:  NewCapabilitySuggester(capability),
		Gate:       AlwaysSuggest,
	}, DefaultSettings())

	greeting := e.Greeting()
	assert.Equal(t, greetingNoKey, greeting.Content)

	msg := respond(t, e, ideaAnswer)

	assert.Equal(t, entity.MessageTypeError, msg.Metadata.Type)
	assert.Equal(t, errorCodeNoKey, msg.Metadata.ErrorCode)
	assert.Equal(t, fallbackUnavailable, msg.Content)
	assert.Empty(t, e.Context().CompletedTopics)
	assert.Zero(t, store.Len())
	assert.Zero(t, capability.extractCalls)
}

func TestEngine_ProviderErrorStillExtracts(t *testing.T) {
	store := knowledge.NewStore()
	capability := &fakeCapability{
		configured: true,
		adviceErr:  errors.New("upstream down"),
		insights:   &entity.BusinessInsights{BusinessIdea: "Dog walking marketplace"},
	}
	e := NewEngine(entity.StageSpark, Dependencies{
		Store:      store,
		Capability: capability,
		Responder:  NewCapabilityResponder(capability),
	}, DefaultSettings())

	msg := respond(t, e, ideaAnswer)

	assert.Equal(t, fallbackError, msg.Content)
	assert.Equal(t, errorCodeProvider, msg.Metadata.ErrorCode)
	assert.Empty(t, e.Context().CompletedTopics)
	assert.Equal(t, 1, capability.extractCalls)
	assert.True(t, store.Has(entity.KnowledgeBusinessIdea, entity.StageSpark))
}

func TestEngine_ExtractionIsDeduplicated(t *testing.T) {
	store := knowledge.NewStore()
	capability := &fakeCapability{
		configured: true,
		advice:     "Tell me more!",
		insights: &entity.BusinessInsights{
			BusinessIdea:      "Dog walking marketplace",
			TargetAudience:    "short",
			SuggestedFeatures: []string{"Live GPS tracking"},
		},
	}
	e := NewEngine(entity.StageSpark, Dependencies{
		Store:      store,
		Capability: capability,
		Responder:  NewCapabilityResponder(capability),
	}, DefaultSettings())

	respond(t, e, "hello")
	respond(t, e, "hello again")

	var analysis, features int
	for _, entry := range store.Entries() {
		switch entry.Source {
		case entity.SourceAIAnalysis:
			analysis++
			assert.Equal(t, entity.KnowledgeBusinessIdea, entry.Type)
			assert.InDelta(t, knowledge.ConfidenceAIAnalysis, entry.Confidence, 1e-9)
		case entity.SourceAISuggestion:
			features++
			assert.Equal(t, entity.KnowledgeFeature, entry.Type)
			assert.Equal(t, []string{"feature", "ai-suggested"}, entry.Tags)
		}
	}
	assert.Equal(t, 1, analysis)
	assert.Equal(t, 2, features)
	assert.Equal(t, "Dog walking marketplace", e.Context().CollectedData["businessIdea"])
}

func TestEngine_ExtractionCompletionStrategy(t *testing.T) {
	capability := &fakeCapability{
		configured: true,
		advice:     "Great start!",
		insights: &entity.BusinessInsights{
			BusinessIdea:     "Dog walking marketplace",
			ProblemStatement: "Owners have no time at lunch",
		},
	}
	e := NewEngine(entity.StageSpark, Dependencies{
		Capability: capability,
		Responder:  NewCapabilityResponder(capability),
		Completion: ExtractionCompletion{},
	}, DefaultSettings())

	respond(t, e, "ok")

	assert.Equal(t, []string{"business_idea", "problem_statement"}, e.Context().CompletedTopics)
}

func TestEngine_ExtractionCompletionForUntypedTopics(t *testing.T) {
	capability := &fakeCapability{
		configured: true,
		advice:     "Noted.",
		insights:   &entity.BusinessInsights{SuggestedFeatures: []string{"Competitor alerts"}},
	}
	e := NewEngine(entity.StageValidate, Dependencies{
		Capability: capability,
		Responder:  NewCapabilityResponder(capability),
		Completion: ExtractionCompletion{},
	}, DefaultSettings())

	respond(t, e, "The market is about two billion dollars")
	assert.Equal(t, []string{"market_research"}, e.Context().CompletedTopics)

	capability.extractErr = errors.New("malformed")
	respond(t, e, "Competitors are mostly spreadsheets")
	assert.Equal(t, []string{"market_research"}, e.Context().CompletedTopics)
}

func TestEngine_RollingSummary(t *testing.T) {
	capability := &fakeCapability{configured: true, advice: "Interesting!", summary: "The user wants a dog walking app."}
	e := NewEngine(entity.StageSpark, Dependencies{
		Capability: capability,
		Responder:  NewCapabilityResponder(capability),
	}, DefaultSettings())

	e.Greeting()
	respond(t, e, "first")
	assert.Empty(t, e.Summary())

	respond(t, e, "second")
	assert.Equal(t, "The user wants a dog walking app.", e.Summary())
	assert.Equal(t, 1, capability.summarizeCalls)

	capability.summary = ""
	for range 5 {
		respond(t, e, "more")
	}
	assert.Equal(t, "The user wants a dog walking app.", e.Summary())

	respond(t, e, "again")
	assert.Contains(t, capability.lastContext, "Conversation Summary: The user wants a dog walking app.")
	assert.Contains(t, capability.lastContext, "Recent conversation:")
}

func TestEngine_StreamingForwardsChunks(t *testing.T) {
	capability := &fakeCapability{configured: true, chunks: []string{"Tell ", "me ", "more"}}
	e := NewEngine(entity.StageSpark, Dependencies{
		Capability: capability,
		Responder:  NewCapabilityResponder(capability),
	}, DefaultSettings())

	var got []string
	msg, err := e.Respond(context.Background(), "hi", WithChunkSink(func(c string) { got = append(got, c) }))
	require.NoError(t, err)

	assert.Equal(t, "Tell me more", msg.Content)
	assert.Equal(t, msg.Content, strings.Join(got, ""))
}

func TestEngine_ResolveSuggestion(t *testing.T) {
	e, store := newStaticEngine(t, AlwaysSuggest)
	respond(t, e, ideaAnswer)
	respond(t, e, problemAnswer)
	respond(t, e, audienceAnswer)
	msg := respond(t, e, solutionAnswer)
	require.Len(t, msg.Metadata.Suggestions, 2)

	accepted := msg.Metadata.Suggestions[0].ID
	declined := msg.Metadata.Suggestions[1].ID

	confirmation, suggestion, err := e.ResolveSuggestion(context.Background(), accepted, entity.DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, confirmAccepted, confirmation.Content)
	assert.Equal(t, entity.SuggestionStatusAccepted, suggestion.Status)

	var feature *entity.KnowledgeEntry
	for _, entry := range store.Entries() {
		if entry.Type == entity.KnowledgeFeature {
			feature = entry
		}
	}
	require.NotNil(t, feature)
	assert.Equal(t, "Push Notifications", feature.Title)
	assert.InDelta(t, knowledge.ConfidenceAcceptedSuggestion, feature.Confidence, 1e-9)

	confirmation, _, err = e.ResolveSuggestion(context.Background(), declined, entity.DecisionDecline)
	require.NoError(t, err)
	assert.Equal(t, confirmDeclined, confirmation.Content)

	before := len(e.History())
	_, _, err = e.ResolveSuggestion(context.Background(), declined, entity.DecisionDecline)
	assert.ErrorIs(t, err, entity.ErrSuggestionResolved)
	assert.Len(t, e.History(), before)

	history := e.History()
	var owner *entity.ChatMessage
	for _, m := range history {
		if m.ID == msg.ID {
			owner = m
		}
	}
	require.NotNil(t, owner)
	assert.Equal(t, entity.SuggestionStatusAccepted, owner.Metadata.Suggestions[0].Status)
	assert.Equal(t, entity.SuggestionStatusDeclined, owner.Metadata.Suggestions[1].Status)

	_, _, err = e.ResolveSuggestion(context.Background(), "missing", entity.DecisionAccept)
	assert.ErrorIs(t, err, entity.ErrSuggestionNotFound)

	_, _, err = e.ResolveSuggestion(context.Background(), accepted, "maybe")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestEngine_RejectsConcurrentRespond(t *testing.T) {
	capability := &fakeCapability{
		configured: true,
		advice:     "ok",
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	e := NewEngine(entity.StageSpark, Dependencies{
		Capability: capability,
		Responder:  NewCapabilityResponder(capability),
	}, DefaultSettings())

	done := make(chan error, 1)
	go func() {
		_, err := e.Respond(context.Background(), "first")
		done <- err
	}()

	select {
	case <-capability.started:
	case <-time.After(time.Second):
		t.Fatal("first respond did not start")
	}

	_, err := e.Respond(context.Background(), "second")
	assert.ErrorIs(t, err, entity.ErrConversationBusy)

	close(capability.release)
	require.NoError(t, <-done)
	assert.Len(t, e.History(), 2)
}

func TestEngine_EmptyUtterance(t *testing.T) {
	e, _ := newStaticEngine(t, NeverSuggest)

	_, err := e.Respond(context.Background(), "   ")
	assert.ErrorIs(t, err, entity.ErrEmptyUtterance)
	assert.Empty(t, e.History())
}

func TestEngine_Greeting(t *testing.T) {
	e, _ := newStaticEngine(t, NeverSuggest)
	first := e.Greeting()
	assert.Equal(t, greetingReady, first.Content)

	again := e.Greeting()
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, e.History(), 1)

	validate := NewEngine(entity.StageValidate, Dependencies{}, DefaultSettings())
	msg := validate.Greeting()
	assert.True(t, strings.HasPrefix(msg.Content, "Welcome to the Validate stage!"))
}
