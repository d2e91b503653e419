package llm

import (
	"testing"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain object", input: `{"a": 1}`, want: `{"a": 1}`},
		{name: "plain array", input: `[{"a": 1}]`, want: `[{"a": 1}]`},
		{name: "code fence", input: "```json\n{\"a\": [1, 2]}\n```", want: `{"a": [1, 2]}`},
		{name: "prose around", input: `Sure! {"a": "b"} Hope this helps.`, want: `{"a": "b"}`},
		{name: "braces in strings", input: `{"a": "}{ tricky \" quote"}`, want: `{"a": "}{ tricky \" quote"}`},
		{name: "array before object", input: `Result: [] and {"x": 1}`, want: `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_NoJSON(t *testing.T) {
	for _, input := range []string{"", "no json here", `{"unterminated": `} {
		_, err := ExtractJSON(input)
		assert.ErrorIs(t, err, entity.ErrExtractionParse, input)
	}
}

func TestParseJSONResponse_TypeMismatch(t *testing.T) {
	_, err := ParseJSONResponse[[]entity.SuggestionDraft](`{"title": "not an array"}`)
	assert.ErrorIs(t, err, entity.ErrExtractionParse)
}
