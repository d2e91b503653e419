package conversation

import (
	"fmt"

	"github.com/futig/launchpad-backend/internal/config"
	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/knowledge"
	"github.com/futig/launchpad-backend/internal/workflow"
)

// Factory creates engines configured from EngineConfig
type Factory struct {
	cfg      config.EngineConfig
	registry *workflow.Registry
	gate     Gate
}

func NewFactory(cfg config.EngineConfig, registry *workflow.Registry) *Factory {
	return &Factory{
		cfg:      cfg,
		registry: registry,
		gate:     gateFor(cfg.Suggester, cfg.SuggestionProbability),
	}
}

// WithGate overrides the suggestion gate, mostly for tests
func (f *Factory) WithGate(gate Gate) *Factory {
	f.gate = gate
	return f
}

func (f *Factory) Registry() *workflow.Registry {
	return f.registry
}

// New builds an engine for the stage sharing the project's knowledge store
func (f *Factory) New(stage entity.Stage, store *knowledge.Store, capability Capability) (*Engine, error) {
	responder, err := NewResponder(f.cfg.Responder, capability)
	if err != nil {
		return nil, fmt.Errorf("build responder: %w", err)
	}
	suggester, err := NewSuggester(f.cfg.Suggester, capability)
	if err != nil {
		return nil, fmt.Errorf("build suggester: %w", err)
	}
	completion, err := NewCompletionStrategy(f.cfg.CompletionStrategy)
	if err != nil {
		return nil, fmt.Errorf("build completion strategy: %w", err)
	}

	return NewEngine(stage, Dependencies{
		Registry:   f.registry,
		Store:      store,
		Capability: capability,
		Responder:  responder,
		Suggester:  suggester,
		Gate:       f.gate,
		Completion: completion,
	}, Settings{
		MinSubstance:     f.cfg.MinSubstance,
		SummaryInterval:  f.cfg.SummaryInterval,
		ExtractionWindow: f.cfg.ExtractionWindow,
		ContextWindow:    f.cfg.ContextWindow,
	}), nil
}

// gateFor keeps the rule suggester deterministic: it is either on or off
func gateFor(suggester string, probability float64) Gate {
	switch {
	case probability <= 0:
		return NeverSuggest
	case probability >= 1, suggester == SuggesterRule:
		return AlwaysSuggest
	default:
		return RandomGate(probability)
	}
}
