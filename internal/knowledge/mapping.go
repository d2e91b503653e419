package knowledge

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/futig/launchpad-backend/internal/entity"
)

var fieldTypes = map[string]entity.KnowledgeType{
	"businessIdea":     entity.KnowledgeBusinessIdea,
	"problemStatement": entity.KnowledgeProblemStatement,
	"targetAudience":   entity.KnowledgeTargetAudience,
	"solution":         entity.KnowledgeSolution,
	"uniqueValue":      entity.KnowledgeUniqueValue,
}

// tagRules is evaluated in order; a tag is added once if any keyword matches a word
var tagRules = []struct {
	tag      string
	keywords []string
}{
	{tag: "mobile", keywords: []string{"mobile", "app", "smartphone"}},
	{tag: "web", keywords: []string{"web", "website", "online"}},
	{tag: "b2b", keywords: []string{"business", "company", "enterprise"}},
	{tag: "b2c", keywords: []string{"customer", "user", "consumer"}},
	{tag: "ai", keywords: []string{"ai", "artificial", "intelligence", "machine", "learning"}},
}

// TypeForField maps an insight field name (camelCase) to a knowledge type
func TypeForField(field string) entity.KnowledgeType {
	if kt, ok := fieldTypes[field]; ok {
		return kt
	}
	return entity.KnowledgeInsight
}

// TypeForTopic maps a topic id (snake_case) to a knowledge type
func TypeForTopic(topic string) entity.KnowledgeType {
	return TypeForField(FieldKey(topic))
}

// FieldKey converts a topic id to the camelCase key used in collected data
func FieldKey(topic string) string {
	parts := strings.Split(topic, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(upperFirst(p))
	}
	return b.String()
}

// FormatTitle turns camelCase or snake_case keys into "Title Case"
func FormatTitle(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
		case unicode.IsUpper(r) && i > 0:
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		words[i] = upperFirst(w)
	}
	return strings.Join(words, " ")
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// GenerateTags derives topical tags from whole words of the content
func GenerateTags(content string) []string {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(content)) {
		w = strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if w != "" {
			words[w] = struct{}{}
		}
	}

	tags := make([]string, 0, len(tagRules))
	for _, rule := range tagRules {
		for _, kw := range rule.keywords {
			if _, ok := words[kw]; ok {
				tags = append(tags, rule.tag)
				break
			}
		}
	}
	return tags
}
