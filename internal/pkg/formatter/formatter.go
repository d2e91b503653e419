package formatter

import (
	"fmt"

	"github.com/futig/launchpad-backend/internal/entity"
)

type Formatter interface {
	Format(report *entity.Report) ([]byte, error)
	ContentType() string
	FileExtension() string
}

// Factory creates formatters; DOCX is off until EnableDOCX is called
type Factory struct {
	docx bool
}

func NewFactory() *Factory {
	return &Factory{}
}

// EnableDOCX turns on docx output. unioffice refuses to save documents
// until a license key has been loaded.
func (f *Factory) EnableDOCX() *Factory {
	f.docx = true
	return f
}

// Available lists the formats Create accepts, in display order
func (f *Factory) Available() []entity.ReportFormat {
	formats := []entity.ReportFormat{entity.FormatMarkdown, entity.FormatPDF}
	if f.docx {
		formats = append(formats, entity.FormatDOCX)
	}
	return formats
}

func (f *Factory) Create(format entity.ReportFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		if !f.docx {
			return nil, fmt.Errorf("%w: %s", entity.ErrFormatUnavailable, format)
		}
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format: %s", entity.ErrInvalidFormat, format)
	}
}

func itemLine(item entity.ReportItem) string {
	if item.Label == "" {
		return item.Text
	}
	return item.Label + ": " + item.Text
}
