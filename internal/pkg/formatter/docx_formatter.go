package formatter

import (
	"bytes"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(report *entity.Report) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Title")
	titlePar.AddRun().AddText(report.Title)

	if report.Subtitle != "" {
		subtitlePar := doc.AddParagraph()
		subtitlePar.SetStyle("Subtitle")
		subtitlePar.AddRun().AddText(report.Subtitle)
	}

	for _, section := range report.Sections {
		heading := doc.AddParagraph()
		heading.SetStyle("Heading1")
		heading.AddRun().AddText(section.Heading)

		for _, p := range section.Paragraphs {
			doc.AddParagraph().AddRun().AddText(p)
		}

		for _, item := range section.Items {
			par := doc.AddParagraph()
			par.SetStyle("ListBullet")
			if item.Label != "" {
				label := par.AddRun()
				label.Properties().SetBold(true)
				label.AddText(item.Label + ": ")
			}
			par.AddRun().AddText(item.Text)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
