package workflow

import (
	_ "embed"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/futig/launchpad-backend/internal/entity"
	"gopkg.in/yaml.v3"
)

//go:embed stages.yaml
var stagesYAML []byte

type registryFile struct {
	Stages []entity.StageConfig `yaml:"stages"`
}

// Registry is the ordered, read-only list of workflow stages
type Registry struct {
	stages []entity.StageConfig
	index  map[entity.Stage]int
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded stage definitions
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load(stagesYAML)
		if err != nil {
			panic(fmt.Sprintf("load embedded stages: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Load parses a YAML stage document
func Load(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse stages: %w", err)
	}

	if len(file.Stages) == 0 {
		return nil, fmt.Errorf("%w: no stages defined", entity.ErrInvalidFormat)
	}

	r := &Registry{
		stages: file.Stages,
		index:  make(map[entity.Stage]int, len(file.Stages)),
	}

	for i, s := range file.Stages {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: stage #%d has no id", entity.ErrMissingField, i)
		}
		if _, dup := r.index[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate stage %q", entity.ErrInvalidFormat, s.ID)
		}
		if len(s.Topics) == 0 {
			return nil, fmt.Errorf("%w: stage %q has no topics", entity.ErrInvalidFormat, s.ID)
		}
		r.index[s.ID] = i
	}

	return r, nil
}

// Stages returns a copy of the ordered stage list
func (r *Registry) Stages() []entity.StageConfig {
	out := make([]entity.StageConfig, len(r.stages))
	copy(out, r.stages)
	return out
}

// First returns the initial stage of the workflow
func (r *Registry) First() entity.Stage {
	return r.stages[0].ID
}

// StageConfig returns the stage config; unknown ids fall back to the first stage
func (r *Registry) StageConfig(id entity.Stage) entity.StageConfig {
	if i, ok := r.index[id]; ok {
		return r.stages[i]
	}
	return r.stages[0]
}

// NextStage returns the stage after id, false at the terminal stage or on unknown id
func (r *Registry) NextStage(id entity.Stage) (entity.Stage, bool) {
	i, ok := r.index[id]
	if !ok || i == len(r.stages)-1 {
		return "", false
	}
	return r.stages[i+1].ID, true
}

// PreviousStage returns the stage before id, false at the first stage or on unknown id
func (r *Registry) PreviousStage(id entity.Stage) (entity.Stage, bool) {
	i, ok := r.index[id]
	if !ok || i == 0 {
		return "", false
	}
	return r.stages[i-1].ID, true
}

// RequiredTopics returns the ordered topic ids of the stage, nil for unknown stages
func (r *Registry) RequiredTopics(id entity.Stage) []string {
	i, ok := r.index[id]
	if !ok {
		return nil
	}
	return r.stages[i].RequiredTopics()
}

// ParseStage validates a raw stage id
func (r *Registry) ParseStage(raw string) (entity.Stage, error) {
	stage := entity.Stage(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := r.index[stage]; !ok {
		return "", fmt.Errorf("%w: %q", entity.ErrUnknownStage, raw)
	}
	return stage, nil
}

// Len returns the number of stages
func (r *Registry) Len() int {
	return len(r.stages)
}

// OverallProgress is the rounded share of completed stages
func (r *Registry) OverallProgress(p *entity.Project) int {
	return r.progress(p.CompletedStages())
}

func (r *Registry) progress(completed int) int {
	if completed > len(r.stages) {
		completed = len(r.stages)
	}
	return int(math.Round(100 * float64(completed) / float64(len(r.stages))))
}
