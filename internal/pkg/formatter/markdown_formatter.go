package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/launchpad-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(report *entity.Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", report.Title)
	if report.Subtitle != "" {
		fmt.Fprintf(&buf, "_%s_\n\n", report.Subtitle)
	}

	for _, section := range report.Sections {
		fmt.Fprintf(&buf, "## %s\n\n", section.Heading)
		for _, p := range section.Paragraphs {
			fmt.Fprintf(&buf, "%s\n\n", p)
		}
		for _, item := range section.Items {
			if item.Label == "" {
				fmt.Fprintf(&buf, "- %s\n", item.Text)
				continue
			}
			fmt.Fprintf(&buf, "- **%s**: %s\n", item.Label, item.Text)
		}
		if len(section.Items) > 0 {
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
