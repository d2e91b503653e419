package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/futig/launchpad-backend/internal/entity"
)

const (
	MsgWelcome = `👋 Hi! I will walk your idea from a first spark to launch.

We go stage by stage:
• 💡 Spark, ✅ Validate, 🎨 Design
• 🏗 Build, 💻 Code, 🔌 Connect, 🚀 Launch

Along the way I suggest features and collect everything into a business plan.`

	MsgAskName = `📋 How should we call the project?

Send a short name, you can change direction later.`

	MsgProjectCreated = `✅ Project "%s" created.`

	MsgNoProject = `No active project. Use /start to create one.`

	MsgCancelConfirm = `⚠️ Are you sure? The project and all its progress will be deleted.`

	MsgProjectClosed = `👋 Project closed.

To start a new one, press /start`

	MsgChooseReportFormat = `📥 In which format should I prepare the business plan?`

	MsgSuggestionAccepted = `✅ Added to the plan: %s`
	MsgSuggestionDeclined = `➖ Skipped: %s`

	MsgStageCompleted = `🎉 Stage "%s" completed! Moving on to "%s".`
	MsgWorkflowDone   = `🏁 All stages are done. Use /report to get the full business plan.`

	MsgHelp = `🤖 Commands:

/start - Create a new project
/stage - Show the current stage and progress
/report - Download the business plan (md, pdf or docx)
/cancel - Close the current project
/help - Show this help

Just write to me to continue the conversation about the current stage.`

	// Errors
	ErrGeneric            = `❌ Something went wrong. Try again or press /start`
	ErrInvalidState       = `❌ Unexpected state. Press /start to begin again.`
	ErrProjectNotFound    = `❌ Project not found. Press /start to create a new one.`
	ErrNetworkIssue       = `❌ Connection problem. Try again a bit later.`
	ErrServiceUnavailable = `❌ The assistant is temporarily unavailable. Try again in a couple of minutes.`
	ErrInvalidInput       = `❌ That does not look right. Try rephrasing.`
	ErrTimeout            = `❌ The operation took too long. Try again.`
	ErrBusy               = `⏳ Still working on your previous message, please wait.`
	ErrAlreadyResolved    = `ℹ️ This suggestion is already resolved.`
	ErrSuggestionExpired  = `ℹ️ This suggestion belongs to a finished conversation.`
	ErrFormatUnavailable  = `ℹ️ This report format is not available on this server. Try .md or .pdf.`
)

// RenderProgress formats the stage position with a visual progress bar
func RenderProgress(project *entity.Project, stage entity.StageConfig, position, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Stage %d of %d: %s\n", StageEmoji(stage.ID), position, total, stage.Title)
	if stage.Description != "" {
		sb.WriteString(stage.Description)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(renderProgressBar(project.Progress))
	return sb.String()
}

var stageEmoji = map[entity.Stage]string{
	entity.StageSpark:    "💡",
	entity.StageValidate: "✅",
	entity.StageDesign:   "🎨",
	entity.StageBuild:    "🏗",
	entity.StageCode:     "💻",
	entity.StageConnect:  "🔌",
	entity.StageLaunch:   "🚀",
}

// StageEmoji returns the marker shown next to a stage title
func StageEmoji(stage entity.Stage) string {
	if e, ok := stageEmoji[stage]; ok {
		return e
	}
	return "📌"
}

// RenderStageCompleted announces a stage transition
func RenderStageCompleted(finished, next entity.StageConfig) string {
	return fmt.Sprintf(MsgStageCompleted, finished.Title, next.Title)
}

// RenderSuggestionResolved confirms the user's decision on a suggestion
func RenderSuggestionResolved(s *entity.FeatureSuggestion) string {
	if s.Status == entity.SuggestionStatusAccepted {
		return fmt.Sprintf(MsgSuggestionAccepted, s.Title)
	}
	return fmt.Sprintf(MsgSuggestionDeclined, s.Title)
}

// renderProgressBar creates a visual progress bar
func renderProgressBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := percent / 10
	bar := strings.Repeat("▓", filled) + strings.Repeat("░", 10-filled)
	return fmt.Sprintf("[%s] %d%%", bar, percent)
}

// ClassifyError analyzes an error and returns an appropriate user-friendly message
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	switch {
	case errors.Is(err, entity.ErrProjectNotFound):
		return ErrProjectNotFound
	case errors.Is(err, entity.ErrConversationBusy):
		return ErrBusy
	case errors.Is(err, entity.ErrSuggestionResolved):
		return ErrAlreadyResolved
	case errors.Is(err, entity.ErrSuggestionNotFound):
		return ErrSuggestionExpired
	case errors.Is(err, entity.ErrProviderUnavailable):
		return ErrServiceUnavailable
	case errors.Is(err, entity.ErrFormatUnavailable):
		return ErrFormatUnavailable
	case errors.Is(err, entity.ErrEmptyUtterance),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidFormat):
		return ErrInvalidInput
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	return ErrGeneric
}
