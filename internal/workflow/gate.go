package workflow

import (
	"time"

	"github.com/futig/launchpad-backend/internal/entity"
)

// IsStageComplete reports whether completed covers every required topic of the stage
func (r *Registry) IsStageComplete(stage entity.Stage, completed []string) bool {
	required := r.RequiredTopics(stage)
	if len(required) == 0 {
		return false
	}

	done := make(map[string]struct{}, len(completed))
	for _, t := range completed {
		done[t] = struct{}{}
	}
	for _, t := range required {
		if _, ok := done[t]; !ok {
			return false
		}
	}
	return true
}

// OpenTopic returns the first required topic not yet completed
func (r *Registry) OpenTopic(stage entity.Stage, completed []string) (entity.Topic, bool) {
	done := make(map[string]struct{}, len(completed))
	for _, t := range completed {
		done[t] = struct{}{}
	}

	cfg := r.StageConfig(stage)
	for _, t := range cfg.Topics {
		if _, ok := done[t.ID]; !ok {
			return t, true
		}
	}
	return entity.Topic{}, false
}

// Advancement describes what Advance changed on the project
type Advancement struct {
	From       entity.Stage
	To         entity.Stage
	Advanced   bool
	FinalStage bool
	Progress   int
}

// Advance archives the finished stage and moves the project forward.
// Progress never decreases; at the terminal stage only the payload is stored.
func (r *Registry) Advance(p *entity.Project, stage entity.Stage, cc *entity.ConversationContext, now time.Time) Advancement {
	if p.Data == nil {
		p.Data = make(map[entity.Stage]*entity.StageData)
	}

	alreadyDone := p.Data[stage] != nil && p.Data[stage].Completed
	completedBefore := p.CompletedStages()
	if alreadyDone {
		completedBefore--
	}

	data := &entity.StageData{
		Completed:       true,
		CollectedData:   make(map[string]string, len(cc.CollectedData)),
		CompletedTopics: append([]string(nil), cc.CompletedTopics...),
		CompletedAt:     &now,
	}
	for k, v := range cc.CollectedData {
		data.CollectedData[k] = v
	}
	p.Data[stage] = data

	progress := r.progress(completedBefore + 1)
	if progress > p.Progress {
		p.Progress = progress
	}
	p.UpdatedAt = now

	result := Advancement{From: stage, Progress: p.Progress}

	next, ok := r.NextStage(stage)
	if !ok {
		result.FinalStage = true
		return result
	}

	if p.Stage == stage {
		p.Stage = next
		result.To = next
		result.Advanced = true
	}

	return result
}
