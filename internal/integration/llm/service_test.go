package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnector struct {
	provider entity.Provider
	replies  []string
	errs     []error
	chunks   []string
	calls    int
	lastReq  *Request
}

func (f *fakeConnector) Provider() entity.Provider { return f.provider }

func (f *fakeConnector) Model() string { return "fake" }

func (f *fakeConnector) Complete(_ context.Context, req *Request) (string, error) {
	f.lastReq = req
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	if len(f.replies) > 0 {
		return f.replies[len(f.replies)-1], nil
	}
	return "", nil
}

func (f *fakeConnector) Stream(ctx context.Context, req *Request, onDelta func(string)) error {
	f.lastReq = req
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return f.errs[i]
	}
	for _, c := range f.chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		onDelta(c)
	}
	return nil
}

func fastRetry() []retry.Option {
	return []retry.Option{retry.Attempts(3), retry.Delay(time.Millisecond), retry.MaxDelay(time.Millisecond)}
}

func TestService_NoConnectorsIsUnavailable(t *testing.T) {
	s := NewService(nil, entity.ProviderOpenAI)

	assert.False(t, s.Configured())
	_, err := s.Advise(context.Background(), "ctx", "hello")
	assert.ErrorIs(t, err, entity.ErrProviderUnavailable)
	assert.True(t, IsUnavailable(err))

	for _, err := range s.Stream(context.Background(), nil, entity.ChatOptions{}) {
		assert.ErrorIs(t, err, entity.ErrProviderUnavailable)
	}
}

func TestService_DefaultProviderOrder(t *testing.T) {
	google := &fakeConnector{provider: entity.ProviderGoogle}
	anthropic := &fakeConnector{provider: entity.ProviderAnthropic}

	s := NewService([]Connector{google, anthropic}, entity.ProviderOpenAI)
	assert.Equal(t, entity.ProviderAnthropic, s.DefaultProvider())
	assert.Equal(t, []entity.Provider{entity.ProviderAnthropic, entity.ProviderGoogle}, s.Providers())

	s = NewService([]Connector{google, anthropic}, entity.ProviderGoogle)
	assert.Equal(t, entity.ProviderGoogle, s.DefaultProvider())
}

func TestService_ExplicitProviderWithoutKey(t *testing.T) {
	s := NewService([]Connector{&fakeConnector{provider: entity.ProviderOpenAI}}, "")

	_, err := s.Complete(context.Background(), nil, entity.ChatOptions{Provider: entity.ProviderGoogle})
	assert.ErrorIs(t, err, entity.ErrProviderUnavailable)
}

func TestService_CompleteAppliesDefaultsAndFoldsSystem(t *testing.T) {
	conn := &fakeConnector{provider: entity.ProviderOpenAI, replies: []string{"ok"}}
	s := NewService([]Connector{conn}, entity.ProviderOpenAI)

	reply, err := s.Complete(context.Background(), []entity.LLMMessage{
		{Role: entity.RoleSystem, Content: "be brief"},
		{Role: entity.RoleUser, Content: "hi"},
	}, entity.ChatOptions{})
	require.NoError(t, err)

	assert.Equal(t, "ok", reply)
	assert.Equal(t, "be brief", conn.lastReq.System)
	require.Len(t, conn.lastReq.Messages, 1)
	assert.InDelta(t, 0.7, conn.lastReq.Temperature, 1e-9)
	assert.Equal(t, 1000, conn.lastReq.MaxTokens)
}

func TestService_AdviseUsesAdviceSettings(t *testing.T) {
	conn := &fakeConnector{provider: entity.ProviderOpenAI, replies: []string{"advice"}}
	s := NewService([]Connector{conn}, entity.ProviderOpenAI)

	_, err := s.Advise(context.Background(), "Current Stage: spark", "I want to build a bakery app")
	require.NoError(t, err)

	assert.Equal(t, PurposeAdvice, conn.lastReq.Purpose)
	assert.InDelta(t, 0.8, conn.lastReq.Temperature, 1e-9)
	assert.Equal(t, 500, conn.lastReq.MaxTokens)
	assert.Contains(t, conn.lastReq.System, "Current Stage: spark")
}

func TestService_RetriesRetryableErrors(t *testing.T) {
	conn := &fakeConnector{
		provider: entity.ProviderOpenAI,
		errs:     []error{errors.New("status 503 service unavailable"), nil},
		replies:  []string{"", "recovered"},
	}
	s := NewService([]Connector{conn}, entity.ProviderOpenAI, fastRetry()...)

	reply, err := s.Complete(context.Background(), []entity.LLMMessage{{Role: entity.RoleUser, Content: "x"}}, entity.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.Equal(t, 2, conn.calls)
}

func TestService_DoesNotRetryAuthErrors(t *testing.T) {
	conn := &fakeConnector{provider: entity.ProviderOpenAI, errs: []error{errors.New("401 unauthorized")}}
	s := NewService([]Connector{conn}, entity.ProviderOpenAI, fastRetry()...)

	_, err := s.Complete(context.Background(), []entity.LLMMessage{{Role: entity.RoleUser, Content: "x"}}, entity.ChatOptions{})
	require.Error(t, err)
	assert.Equal(t, 1, conn.calls)
	assert.ErrorIs(t, err, entity.ErrProviderError)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorKindAuth, pe.Kind)
}

func TestService_ExtractInsights(t *testing.T) {
	conn := &fakeConnector{provider: entity.ProviderOpenAI, replies: []string{
		"Here you go:\n```json\n{\"businessIdea\": \"Fitness class booking\", \"suggestedFeatures\": [\"Waitlists\"]}\n```",
	}}
	s := NewService([]Connector{conn}, entity.ProviderOpenAI)

	insights, err := s.ExtractInsights(context.Background(), "user: hi")
	require.NoError(t, err)
	assert.Equal(t, "Fitness class booking", insights.BusinessIdea)
	assert.Equal(t, []string{"Waitlists"}, insights.SuggestedFeatures)
	assert.InDelta(t, 0.3, conn.lastReq.Temperature, 1e-9)
	assert.Equal(t, 800, conn.lastReq.MaxTokens)
}

func TestService_ExtractInsightsMalformed(t *testing.T) {
	conn := &fakeConnector{provider: entity.ProviderOpenAI, replies: []string{"I could not find anything"}}
	s := NewService([]Connector{conn}, entity.ProviderOpenAI)

	_, err := s.ExtractInsights(context.Background(), "user: hi")
	assert.ErrorIs(t, err, entity.ErrExtractionParse)
}

func TestService_SuggestFeaturesAndSummarize(t *testing.T) {
	conn := &fakeConnector{provider: entity.ProviderOpenAI, replies: []string{
		`[{"title":"Waitlist","description":"d","reasoning":"r","priority":"urgent","category":"engagement"}]`,
		"  A short summary.  ",
	}}
	s := NewService([]Connector{conn}, entity.ProviderOpenAI)

	drafts, err := s.SuggestFeatures(context.Background(), entity.SuggestionPrompt{Utterance: "u", Response: "r"})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Waitlist", drafts[0].Title)

	summary, err := s.Summarize(context.Background(), "user: a\nassistant: b")
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", summary)
	assert.Equal(t, 150, conn.lastReq.MaxTokens)
}

func TestService_StreamYieldsChunksThenFinished(t *testing.T) {
	conn := &fakeConnector{provider: entity.ProviderAnthropic, chunks: []string{"Hel", "lo"}}
	s := NewService([]Connector{conn}, entity.ProviderAnthropic)

	var got []entity.StreamChunk
	for chunk, err := range s.Stream(context.Background(), []entity.LLMMessage{{Role: entity.RoleUser, Content: "x"}}, entity.ChatOptions{}) {
		require.NoError(t, err)
		got = append(got, chunk)
	}

	require.Len(t, got, 3)
	assert.Equal(t, "Hel", got[0].Content)
	assert.Equal(t, entity.ProviderAnthropic, got[1].Provider)
	assert.True(t, got[2].Finished)
}

func TestService_StreamStopsWhenConsumerBreaks(t *testing.T) {
	conn := &fakeConnector{provider: entity.ProviderOpenAI, chunks: []string{"a", "b", "c"}}
	s := NewService([]Connector{conn}, entity.ProviderOpenAI)

	count := 0
	for range s.Stream(context.Background(), []entity.LLMMessage{{Role: entity.RoleUser, Content: "x"}}, entity.ChatOptions{}) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestService_AdviseStreamForwardsChunks(t *testing.T) {
	conn := &fakeConnector{provider: entity.ProviderOpenAI, chunks: []string{"Tell ", "me ", "more"}}
	s := NewService([]Connector{conn}, entity.ProviderOpenAI)

	var forwarded []string
	reply, err := s.AdviseStream(context.Background(), "ctx", "q", func(c string) { forwarded = append(forwarded, c) })
	require.NoError(t, err)

	assert.Equal(t, "Tell me more", reply)
	assert.Equal(t, "Tell me more", strings.Join(forwarded, ""))
}

func TestMockConnector(t *testing.T) {
	s := NewService([]Connector{NewMockConnector(entity.ProviderOpenAI)}, entity.ProviderOpenAI)

	insights, err := s.ExtractInsights(context.Background(), "user: A booking tool for yoga studios\nassistant: nice")
	require.NoError(t, err)
	assert.Equal(t, "A booking tool for yoga studios", insights.BusinessIdea)

	reply, err := s.AdviseStream(context.Background(), "ctx", "hello there", nil)
	require.NoError(t, err)
	assert.Contains(t, reply, "hello there")
}
