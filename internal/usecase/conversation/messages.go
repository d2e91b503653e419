package conversation

import (
	"fmt"
	"strings"

	"github.com/futig/launchpad-backend/internal/entity"
)

const (
	greetingReady = "Hi there! I'm your AI business companion, and I'm excited to help you develop your business idea!\n\n" +
		"Let's start with the basics - what's the business idea you'd like to explore? " +
		"Don't worry about having all the details figured out yet, just tell me what's on your mind!"

	greetingNoKey = "Hi! I'm your AI business companion, but I need an API key to get started. " +
		"Please configure your OpenAI, Anthropic, or Google AI key so we can have a real conversation about your business idea!"

	fallbackUnavailable = "I need an API key before I can give you real advice. " +
		"Please configure your OpenAI, Anthropic, or Google AI key and send your message again!"

	fallbackError = "I'm having trouble connecting to my AI services right now. " +
		"Could you try rephrasing your message? I'm here to help you develop your business idea!"

	confirmAccepted = "Great choice! I'll make note of that feature for later stages. 📝"
	confirmDeclined = "No problem! We can always revisit this later if needed."

	summaryIntro = "🎉 Excellent! I've captured all the key details about your business idea. Here's what we've documented:\n\n"

	suggestionsIntro  = "\n\nBased on what you described, I have some feature ideas that might enhance your solution:\n\n"
	suggestionsOutro  = "\nWhich of these resonate with you? Feel free to accept, modify, or decline any of them!"
	errorCodeNoKey    = "provider_unavailable"
	errorCodeProvider = "provider_error"
)

// stageGreeting opens any stage after the first one
func stageGreeting(cfg entity.StageConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Welcome to the %s stage! %s", cfg.Title, cfg.Description)
	if len(cfg.Topics) > 0 {
		b.WriteString("\n\n")
		b.WriteString(cfg.Topics[0].Question)
	}
	return b.String()
}

// stageSummary lists every knowledge entry of the stage
func stageSummary(entries []*entity.KnowledgeEntry, next *entity.StageConfig) string {
	var b strings.Builder
	b.WriteString(summaryIntro)
	for _, e := range entries {
		fmt.Fprintf(&b, "**%s**: %s\n\n", e.Title, e.Content)
	}

	if next == nil {
		b.WriteString("Your plan is complete! You can download the full report whenever you're ready.")
		return b.String()
	}
	fmt.Fprintf(&b, "Your idea is taking shape! Ready to move to the %s stage? %s", next.Title, next.Description)
	return b.String()
}

func suggestionList(suggestions []*entity.FeatureSuggestion) string {
	var b strings.Builder
	b.WriteString(suggestionsIntro)
	for i, s := range suggestions {
		fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, s.Title, s.Description)
	}
	b.WriteString(suggestionsOutro)
	return b.String()
}
