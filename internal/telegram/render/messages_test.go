package render

import (
	"context"
	"fmt"
	"testing"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestRenderProgressBar(t *testing.T) {
	assert.Equal(t, "[░░░░░░░░░░] 0%", renderProgressBar(0))
	assert.Equal(t, "[▓░░░░░░░░░] 14%", renderProgressBar(14))
	assert.Equal(t, "[▓▓▓▓▓▓▓▓▓▓] 100%", renderProgressBar(140))
}

func TestRenderProgress(t *testing.T) {
	project := &entity.Project{Progress: 28}
	stage := entity.StageConfig{ID: entity.StageDesign, Title: "Design", Description: "Shape the product"}

	text := RenderProgress(project, stage, 3, 7)
	assert.Contains(t, text, "Stage 3 of 7: Design")
	assert.Contains(t, text, "Shape the product")
	assert.Contains(t, text, "28%")
}

func TestRenderSuggestionResolved(t *testing.T) {
	s := &entity.FeatureSuggestion{Title: "Booking calendar", Status: entity.SuggestionStatusAccepted}
	assert.Equal(t, "✅ Added to the plan: Booking calendar", RenderSuggestionResolved(s))

	s.Status = entity.SuggestionStatusDeclined
	assert.Equal(t, "➖ Skipped: Booking calendar", RenderSuggestionResolved(s))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ErrGeneric},
		{fmt.Errorf("get: %w", entity.ErrProjectNotFound), ErrProjectNotFound},
		{entity.ErrConversationBusy, ErrBusy},
		{entity.ErrSuggestionResolved, ErrAlreadyResolved},
		{entity.ErrSuggestionNotFound, ErrSuggestionExpired},
		{entity.ErrProviderUnavailable, ErrServiceUnavailable},
		{fmt.Errorf("report: %w", entity.ErrFormatUnavailable), ErrFormatUnavailable},
		{fmt.Errorf("%w: too long", entity.ErrInvalidParameter), ErrInvalidInput},
		{context.DeadlineExceeded, ErrTimeout},
		{fmt.Errorf("boom"), ErrGeneric},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyError(tt.err))
	}
}
