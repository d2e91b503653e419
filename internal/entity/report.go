package entity

import (
	"fmt"
	"strings"
)

type ReportFormat string

const (
	FormatMarkdown ReportFormat = "markdown"
	FormatPDF      ReportFormat = "pdf"
	FormatDOCX     ReportFormat = "docx"
)

// ParseReportFormat accepts a format name or file extension, markdown by default
func ParseReportFormat(raw string) (ReportFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), ".")) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	case "docx", "word":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: unsupported report format %q", ErrInvalidFormat, raw)
	}
}

// Report is the printable business plan of a project
type Report struct {
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle,omitempty"`
	Sections []ReportSection `json:"sections"`
}

type ReportSection struct {
	Heading    string       `json:"heading"`
	Paragraphs []string     `json:"paragraphs,omitempty"`
	Items      []ReportItem `json:"items,omitempty"`
}

// ReportItem is a labelled line; an empty label renders as a plain bullet
type ReportItem struct {
	Label string `json:"label,omitempty"`
	Text  string `json:"text"`
}

// ReportFile is a rendered report ready to download
type ReportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
