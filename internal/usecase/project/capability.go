package project

import (
	"context"
	"sync/atomic"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/integration/llm"
	"github.com/futig/launchpad-backend/internal/usecase/conversation"
)

var _ conversation.Capability = &capabilityHandle{}

// capabilityHandle lets a credential update reach engines that already exist
type capabilityHandle struct {
	current atomic.Pointer[llm.Service]
}

func newCapabilityHandle(svc *llm.Service) *capabilityHandle {
	h := &capabilityHandle{}
	h.current.Store(svc)
	return h
}

func (h *capabilityHandle) swap(svc *llm.Service) {
	h.current.Store(svc)
}

func (h *capabilityHandle) service() *llm.Service {
	return h.current.Load()
}

func (h *capabilityHandle) Configured() bool {
	return h.service().Configured()
}

func (h *capabilityHandle) Advise(ctx context.Context, businessContext, question string) (string, error) {
	return h.service().Advise(ctx, businessContext, question)
}

func (h *capabilityHandle) AdviseStream(ctx context.Context, businessContext, question string, sink func(string)) (string, error) {
	return h.service().AdviseStream(ctx, businessContext, question, sink)
}

func (h *capabilityHandle) ExtractInsights(ctx context.Context, conversation string) (*entity.BusinessInsights, error) {
	return h.service().ExtractInsights(ctx, conversation)
}

func (h *capabilityHandle) SuggestFeatures(ctx context.Context, prompt entity.SuggestionPrompt) ([]entity.SuggestionDraft, error) {
	return h.service().SuggestFeatures(ctx, prompt)
}

func (h *capabilityHandle) Summarize(ctx context.Context, transcript string) (string, error) {
	return h.service().Summarize(ctx, transcript)
}
