package project

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/knowledge"
	"github.com/futig/launchpad-backend/internal/workflow"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ReportFormats lists the formats Report can render on this deployment
func (uc *ProjectUsecase) ReportFormats() []entity.ReportFormat {
	return uc.formatters.Available()
}

// Report renders the project plan in the requested format
func (uc *ProjectUsecase) Report(ctx context.Context, projectID string, format entity.ReportFormat) (*entity.ReportFile, error) {
	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	project, err := uc.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	store, err := uc.projectRepo.Knowledge(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// the active stage is not archived yet, take its data from the conversation
	var active map[string]string
	if engine := uc.existingEngine(projectID, project.Stage); engine != nil {
		active = engine.Context().CollectedData
	}

	report := buildReport(uc.registry, project, active, store.Entries())
	content, err := f.Format(report)
	if err != nil {
		return nil, fmt.Errorf("format report: %w", err)
	}

	ctxzap.Info(ctx, "report rendered",
		zap.String("project_id", projectID),
		zap.String("format", string(format)),
		zap.Int("size", len(content)),
	)

	return &entity.ReportFile{
		Filename:    reportFilename(project.Name) + f.FileExtension(),
		ContentType: f.ContentType(),
		Content:     content,
	}, nil
}

func buildReport(registry *workflow.Registry, project *entity.Project, active map[string]string, entries []*entity.KnowledgeEntry) *entity.Report {
	report := &entity.Report{
		Title:    project.Name,
		Subtitle: fmt.Sprintf("Current stage: %s, progress %d%%", registry.StageConfig(project.Stage).Title, project.Progress),
	}
	if project.Description != "" {
		report.Sections = append(report.Sections, entity.ReportSection{
			Heading:    "Overview",
			Paragraphs: []string{project.Description},
		})
	}

	for _, cfg := range registry.Stages() {
		section := entity.ReportSection{Heading: cfg.Title}

		collected := active
		status := "In progress"
		if data := project.Data[cfg.ID]; data != nil && data.Completed {
			collected = data.CollectedData
			status = "Completed"
			if data.CompletedAt != nil {
				status += " on " + data.CompletedAt.Format("2006-01-02")
			}
		} else if cfg.ID != project.Stage {
			continue
		}
		section.Paragraphs = []string{cfg.Description, status}

		for _, topic := range cfg.RequiredTopics() {
			key := knowledge.FieldKey(topic)
			if value := collected[key]; value != "" {
				section.Items = append(section.Items, entity.ReportItem{Label: knowledge.FormatTitle(key), Text: value})
			}
		}
		report.Sections = append(report.Sections, section)
	}

	features := entity.ReportSection{Heading: "Accepted Features"}
	insights := entity.ReportSection{Heading: "Knowledge Base"}
	for _, e := range entries {
		if e.Type == entity.KnowledgeFeature && slices.Contains(e.Tags, "accepted") {
			features.Items = append(features.Items, entity.ReportItem{Label: e.Title, Text: e.Content})
			continue
		}
		if e.Type == entity.KnowledgeFeature {
			continue
		}
		insights.Items = append(insights.Items, entity.ReportItem{
			Label: fmt.Sprintf("%s (%s)", e.Title, e.Stage),
			Text:  e.Content,
		})
	}
	if len(features.Items) > 0 {
		report.Sections = append(report.Sections, features)
	}
	if len(insights.Items) > 0 {
		report.Sections = append(report.Sections, insights)
	}

	return report
}

// reportFilename turns the project name into a safe file name
func reportFilename(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteRune('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "business-plan"
	}
	return slug + "-plan"
}
