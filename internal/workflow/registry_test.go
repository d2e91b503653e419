package workflow

import (
	"testing"
	"time"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsSevenStagesInOrder(t *testing.T) {
	r := Default()

	want := []entity.Stage{
		entity.StageSpark, entity.StageValidate, entity.StageDesign, entity.StageBuild,
		entity.StageCode, entity.StageConnect, entity.StageLaunch,
	}
	got := make([]entity.Stage, 0, r.Len())
	for _, s := range r.Stages() {
		got = append(got, s.ID)
	}
	assert.Equal(t, want, got)

	spark := r.StageConfig(entity.StageSpark)
	assert.Equal(t, "Spark", spark.Title)
	assert.Equal(t, "Lightbulb", spark.Icon)
	assert.Equal(t, "10 min", spark.EstimatedTime)
	assert.Equal(t,
		[]string{"business_idea", "problem_statement", "target_audience", "solution", "unique_value"},
		r.RequiredTopics(entity.StageSpark))
}

func TestStageConfig_UnknownFallsBackToFirst(t *testing.T) {
	r := Default()
	assert.Equal(t, entity.StageSpark, r.StageConfig("nope").ID)
}

func TestNextAndPreviousStage(t *testing.T) {
	r := Default()

	next, ok := r.NextStage(entity.StageSpark)
	require.True(t, ok)
	assert.Equal(t, entity.StageValidate, next)

	_, ok = r.NextStage(entity.StageLaunch)
	assert.False(t, ok, "terminal stage has no next")

	_, ok = r.NextStage("unknown")
	assert.False(t, ok)

	_, ok = r.PreviousStage(entity.StageSpark)
	assert.False(t, ok, "first stage has no previous")

	prev, ok := r.PreviousStage(entity.StageLaunch)
	require.True(t, ok)
	assert.Equal(t, entity.StageConnect, prev)
}

func TestNextPreviousRoundTrip(t *testing.T) {
	r := Default()
	for _, s := range r.Stages() {
		next, ok := r.NextStage(s.ID)
		if !ok {
			continue
		}
		prev, ok := r.PreviousStage(next)
		require.True(t, ok)
		again, ok := r.NextStage(prev)
		require.True(t, ok)
		assert.Equal(t, next, again, "stage %s", s.ID)
	}
}

func TestParseStage(t *testing.T) {
	r := Default()

	s, err := r.ParseStage(" Validate ")
	require.NoError(t, err)
	assert.Equal(t, entity.StageValidate, s)

	_, err = r.ParseStage("deploy")
	assert.ErrorIs(t, err, entity.ErrUnknownStage)
}

func TestLoad_RejectsBrokenDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: "stages: []"},
		{name: "missing id", doc: "stages:\n  - title: X\n    topics:\n      - id: a"},
		{name: "duplicate", doc: "stages:\n  - id: a\n    topics: [{id: x}]\n  - id: a\n    topics: [{id: y}]"},
		{name: "no topics", doc: "stages:\n  - id: a"},
		{name: "not yaml", doc: "stages: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestOverallProgress(t *testing.T) {
	r := Default()
	p := &entity.Project{Data: map[entity.Stage]*entity.StageData{
		entity.StageSpark:    {Completed: true},
		entity.StageValidate: {Completed: true},
		entity.StageDesign:   {Completed: false},
	}}
	assert.Equal(t, 29, r.OverallProgress(p))
}

func TestIsStageComplete(t *testing.T) {
	r := Default()
	for _, s := range r.Stages() {
		required := r.RequiredTopics(s.ID)

		assert.False(t, r.IsStageComplete(s.ID, nil), "%s empty", s.ID)
		assert.True(t, r.IsStageComplete(s.ID, required), "%s full", s.ID)
		assert.True(t, r.IsStageComplete(s.ID, append([]string{"extra"}, required...)), "%s superset", s.ID)

		if len(required) > 1 {
			assert.False(t, r.IsStageComplete(s.ID, required[1:]), "%s proper subset", s.ID)
		}
	}
	assert.False(t, r.IsStageComplete("unknown", []string{"x"}))
}

func TestOpenTopic(t *testing.T) {
	r := Default()

	topic, ok := r.OpenTopic(entity.StageSpark, []string{"business_idea"})
	require.True(t, ok)
	assert.Equal(t, "problem_statement", topic.ID)

	_, ok = r.OpenTopic(entity.StageConnect, []string{"integrations"})
	assert.False(t, ok)
}

func TestAdvance(t *testing.T) {
	r := Default()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	p := &entity.Project{ID: "p1", Stage: entity.StageSpark}
	cc := entity.NewConversationContext(entity.StageSpark)
	cc.CollectedData["businessIdea"] = "fitness booking"
	cc.CompletedTopics = r.RequiredTopics(entity.StageSpark)

	adv := r.Advance(p, entity.StageSpark, cc, now)
	assert.True(t, adv.Advanced)
	assert.Equal(t, entity.StageValidate, adv.To)
	assert.Equal(t, entity.StageValidate, p.Stage)
	assert.Equal(t, 14, p.Progress)

	require.NotNil(t, p.Data[entity.StageSpark])
	assert.True(t, p.Data[entity.StageSpark].Completed)
	assert.Equal(t, "fitness booking", p.Data[entity.StageSpark].CollectedData["businessIdea"])
	assert.Equal(t, now, *p.Data[entity.StageSpark].CompletedAt)

	// archived copy is detached from the live context
	cc.CollectedData["businessIdea"] = "changed"
	assert.Equal(t, "fitness booking", p.Data[entity.StageSpark].CollectedData["businessIdea"])
}

func TestAdvance_ProgressNeverDecreases(t *testing.T) {
	r := Default()
	p := &entity.Project{Stage: entity.StageSpark, Progress: 60}

	adv := r.Advance(p, entity.StageSpark, entity.NewConversationContext(entity.StageSpark), time.Now())
	assert.Equal(t, 60, adv.Progress)
	assert.Equal(t, 60, p.Progress)
}

func TestAdvance_TerminalStageStoresPayloadOnly(t *testing.T) {
	r := Default()
	p := &entity.Project{Stage: entity.StageLaunch}

	adv := r.Advance(p, entity.StageLaunch, entity.NewConversationContext(entity.StageLaunch), time.Now())
	assert.False(t, adv.Advanced)
	assert.True(t, adv.FinalStage)
	assert.Equal(t, entity.StageLaunch, p.Stage)
	assert.True(t, p.Data[entity.StageLaunch].Completed)
}
