package formatter

import (
	"bytes"
	"os"
	"testing"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unidoc/unioffice/common/license"
)

func sampleReport() *entity.Report {
	return &entity.Report{
		Title:    "Dog Walkers",
		Subtitle: "Stage: validate, progress 14%",
		Sections: []entity.ReportSection{
			{
				Heading:    "Spark",
				Paragraphs: []string{"Capture and refine your business idea"},
				Items: []entity.ReportItem{
					{Label: "Business Idea", Text: "Neighbours walk dogs"},
					{Text: "Push Notifications"},
				},
			},
		},
	}
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(sampleReport())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "# Dog Walkers\n")
	assert.Contains(t, text, "_Stage: validate, progress 14%_")
	assert.Contains(t, text, "## Spark\n")
	assert.Contains(t, text, "- **Business Idea**: Neighbours walk dogs\n")
	assert.Contains(t, text, "- Push Notifications\n")
}

func TestPDFFormatter(t *testing.T) {
	out, err := NewPDFFormatter().Format(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestDOCXFormatter(t *testing.T) {
	key := os.Getenv("UNIDOC_LICENSE_API_KEY")
	if key == "" {
		t.Skip("UNIDOC_LICENSE_API_KEY not set")
	}
	require.NoError(t, license.SetMeteredKey(key))

	out, err := NewDOCXFormatter().Format(sampleReport())
	require.NoError(t, err)
	// docx is a zip archive
	assert.True(t, bytes.HasPrefix(out, []byte("PK")))
}

func TestFactory(t *testing.T) {
	f := NewFactory()
	assert.Equal(t, []entity.ReportFormat{entity.FormatMarkdown, entity.FormatPDF}, f.Available())
	for _, format := range f.Available() {
		fm, err := f.Create(format)
		require.NoError(t, err)
		assert.NotEmpty(t, fm.ContentType())
		assert.NotEmpty(t, fm.FileExtension())
	}

	_, err := f.Create(entity.FormatDOCX)
	assert.ErrorIs(t, err, entity.ErrFormatUnavailable)

	_, err = f.Create("rtf")
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)
}

func TestFactory_EnableDOCX(t *testing.T) {
	f := NewFactory().EnableDOCX()
	assert.Contains(t, f.Available(), entity.FormatDOCX)

	fm, err := f.Create(entity.FormatDOCX)
	require.NoError(t, err)
	assert.Equal(t, ".docx", fm.FileExtension())
}
