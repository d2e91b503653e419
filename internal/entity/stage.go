package entity

import "time"

// Stage identifies one phase of the business-development workflow
type Stage string

const (
	StageSpark    Stage = "spark"
	StageValidate Stage = "validate"
	StageDesign   Stage = "design"
	StageBuild    Stage = "build"
	StageCode     Stage = "code"
	StageConnect  Stage = "connect"
	StageLaunch   Stage = "launch"
)

// Topic is an atomic fact the conversation must collect before its stage is complete
type Topic struct {
	ID       string `json:"id" yaml:"id"`
	Question string `json:"question" yaml:"question"`
	FollowUp string `json:"follow_up" yaml:"follow_up"`
}

// StageConfig describes a stage of the workflow
type StageConfig struct {
	ID            Stage   `json:"id" yaml:"id"`
	Title         string  `json:"title" yaml:"title"`
	Description   string  `json:"description" yaml:"description"`
	Icon          string  `json:"icon" yaml:"icon"`
	Color         string  `json:"color" yaml:"color"`
	EstimatedTime string  `json:"estimated_time" yaml:"estimated_time"`
	Topics        []Topic `json:"topics" yaml:"topics"`
}

// RequiredTopics returns topic identifiers in collection order
func (sc *StageConfig) RequiredTopics() []string {
	ids := make([]string, 0, len(sc.Topics))
	for _, t := range sc.Topics {
		ids = append(ids, t.ID)
	}
	return ids
}

// Topic returns the topic with the given id
func (sc *StageConfig) Topic(id string) (Topic, bool) {
	for _, t := range sc.Topics {
		if t.ID == id {
			return t, true
		}
	}
	return Topic{}, false
}

// StageData is the archived payload of a stage
type StageData struct {
	Completed       bool              `json:"completed"`
	CollectedData   map[string]string `json:"collected_data,omitempty"`
	CompletedTopics []string          `json:"completed_topics,omitempty"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
}

// Project is a business idea travelling through the workflow
type Project struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Stage       Stage                `json:"stage"`
	Progress    int                  `json:"progress"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Data        map[Stage]*StageData `json:"data"`
	CallbackURL string               `json:"callback_url,omitempty"`
}

// CompletedStages counts stages whose payload is marked completed
func (p *Project) CompletedStages() int {
	count := 0
	for _, d := range p.Data {
		if d != nil && d.Completed {
			count++
		}
	}
	return count
}

// Clone returns a deep copy safe to hand out of the repository
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}

	clone := *p
	clone.Data = make(map[Stage]*StageData, len(p.Data))
	for stage, d := range p.Data {
		if d == nil {
			continue
		}
		dc := *d
		if d.CollectedData != nil {
			dc.CollectedData = make(map[string]string, len(d.CollectedData))
			for k, v := range d.CollectedData {
				dc.CollectedData[k] = v
			}
		}
		dc.CompletedTopics = append([]string(nil), d.CompletedTopics...)
		if d.CompletedAt != nil {
			at := *d.CompletedAt
			dc.CompletedAt = &at
		}
		clone.Data[stage] = &dc
	}

	return &clone
}
