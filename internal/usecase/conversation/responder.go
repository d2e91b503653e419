package conversation

import (
	"context"
	"fmt"

	"github.com/futig/launchpad-backend/internal/entity"
)

const (
	ResponderStatic     = "static"
	ResponderCapability = "capability"
)

// ReplyInput is everything a responder may use to answer one utterance
type ReplyInput struct {
	Stage           entity.Stage
	Topic           entity.Topic
	Utterance       string
	Substantive     bool
	BusinessContext string
	Sink            func(string)
}

// Responder produces the assistant reply for an open topic
type Responder interface {
	Name() string
	// NeedsCapability reports whether replies require a configured provider
	NeedsCapability() bool
	Reply(ctx context.Context, in ReplyInput) (string, error)
}

// StaticResponder asks the topic questions from the stage catalogue
type StaticResponder struct{}

func (StaticResponder) Name() string { return ResponderStatic }

func (StaticResponder) NeedsCapability() bool { return false }

func (StaticResponder) Reply(_ context.Context, in ReplyInput) (string, error) {
	reply := in.Topic.Question
	if in.Substantive && in.Topic.FollowUp != "" {
		reply = in.Topic.FollowUp
	}
	if in.Sink != nil {
		in.Sink(reply)
	}
	return reply, nil
}

// CapabilityResponder asks the LLM for business advice
type CapabilityResponder struct {
	capability Capability
}

func NewCapabilityResponder(capability Capability) *CapabilityResponder {
	return &CapabilityResponder{capability: capability}
}

func (r *CapabilityResponder) Name() string { return ResponderCapability }

func (r *CapabilityResponder) NeedsCapability() bool { return true }

func (r *CapabilityResponder) Reply(ctx context.Context, in ReplyInput) (string, error) {
	if r.capability == nil || !r.capability.Configured() {
		return "", entity.ErrProviderUnavailable
	}

	if in.Sink != nil {
		return r.capability.AdviseStream(ctx, in.BusinessContext, in.Utterance, in.Sink)
	}
	return r.capability.Advise(ctx, in.BusinessContext, in.Utterance)
}

// NewResponder selects a responder by its configured name
func NewResponder(name string, capability Capability) (Responder, error) {
	switch name {
	case ResponderStatic:
		return StaticResponder{}, nil
	case ResponderCapability:
		return NewCapabilityResponder(capability), nil
	default:
		return nil, fmt.Errorf("%w: unknown responder %q", entity.ErrInvalidParameter, name)
	}
}
