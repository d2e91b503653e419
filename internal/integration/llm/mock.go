package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers deterministically without network access
type MockConnector struct {
	provider entity.Provider
}

func NewMockConnector(provider entity.Provider) *MockConnector {
	return &MockConnector{provider: provider}
}

func (m *MockConnector) Provider() entity.Provider { return m.provider }

func (m *MockConnector) Model() string { return "mock" }

func (m *MockConnector) Complete(ctx context.Context, req *Request) (string, error) {
	ctxzap.Debug(ctx, "[MOCK] completion", zap.String("purpose", string(req.Purpose)))

	last := ""
	if n := len(req.Messages); n > 0 {
		last = req.Messages[n-1].Content
	}

	switch req.Purpose {
	case PurposeAdvice:
		return fmt.Sprintf("[mock] Thanks for sharing! You said: %q. What would make this valuable to your first customers?", clip(last, 80)), nil
	case PurposeExtraction:
		return mockInsights(last), nil
	case PurposeSuggestion:
		if strings.Contains(strings.ToLower(last), "mobile") {
			return `[{"title":"Offline Mode","description":"Let the app work without a connection","reasoning":"Mobile users often lose signal","priority":"medium","category":"reliability"}]`, nil
		}
		return "[]", nil
	case PurposeSummary:
		return fmt.Sprintf("[mock] The conversation covered %d lines about the business idea.", strings.Count(last, "\n")+1), nil
	default:
		return "[mock] " + clip(last, 200), nil
	}
}

func (m *MockConnector) Stream(ctx context.Context, req *Request, onDelta func(string)) error {
	text, err := m.Complete(ctx, req)
	if err != nil {
		return err
	}

	words := strings.SplitAfter(text, " ")
	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w != "" {
			onDelta(w)
		}
	}
	return nil
}

// mockInsights reports the latest user line of the transcript as the business idea
func mockInsights(transcript string) string {
	insights := entity.BusinessInsights{}

	lines := strings.Split(transcript, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if text, ok := strings.CutPrefix(lines[i], string(entity.RoleUser)+": "); ok {
			insights.BusinessIdea = text
			break
		}
	}

	raw, _ := json.Marshal(insights)
	return string(raw)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
