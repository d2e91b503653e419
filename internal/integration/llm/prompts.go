package llm

import (
	"fmt"
	"strings"

	"github.com/futig/launchpad-backend/internal/entity"
)

// Call parameters per use
const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000

	adviceTemperature     = 0.8
	adviceMaxTokens       = 500
	extractionTemperature = 0.3
	extractionMaxTokens   = 800
	suggestTemperature    = 0.7
	suggestMaxTokens      = 400
	summaryTemperature    = 0.3
	summaryMaxTokens      = 150
)

const adviceSystemPrompt = `You are an expert business advisor and startup mentor. You help entrepreneurs develop and validate their business ideas through natural conversation.

Business Context: %s

Guidelines:
- Ask one thoughtful follow-up question at a time
- Provide specific, actionable advice
- Be encouraging but realistic
- Help extract key business insights
- Suggest practical next steps
- Use a conversational, friendly tone`

const extractionSystemPrompt = `You are an expert at extracting structured business information from conversations.

Analyze the conversation and extract key business insights. Return a JSON object with these fields:
- businessIdea: The core business concept
- problemStatement: The problem being solved
- targetAudience: Who the customers are
- solution: How the problem is solved
- uniqueValue: What makes it different
- suggestedFeatures: Array of 3-5 feature suggestions based on what was discussed

Only include fields where you have confidence in the extracted information. Return valid JSON only.`

const suggestionSystemPrompt = "You are a product strategist who suggests relevant features based on business discussions. Always return valid JSON."

const suggestionUserPrompt = `Based on this business conversation, suggest 1-2 relevant features or improvements:

User: %s
AI Response: %s
Business Context: %s

Return a JSON array of suggestions with format:
[{
  "title": "Feature Name",
  "description": "Brief description",
  "reasoning": "Why this would be valuable",
  "priority": "high|medium|low",
  "category": "feature category"
}]

Only suggest truly relevant features. Return empty array [] if no good suggestions.`

const summarySystemPrompt = "Summarize this business conversation in 2-3 sentences, focusing on key business insights and decisions made."

func adviceSystem(businessContext string) string {
	return fmt.Sprintf(adviceSystemPrompt, businessContext)
}

func extractionUser(conversation string) string {
	return "Extract business insights from this conversation:\n\n" + conversation
}

func suggestionUser(p entity.SuggestionPrompt) string {
	return fmt.Sprintf(suggestionUserPrompt, p.Utterance, p.Response, strings.TrimSpace(p.BusinessContext))
}

func summaryUser(transcript string) string {
	return "Summarize this conversation:\n" + transcript
}
