package project

import (
	"context"

	"github.com/futig/launchpad-backend/internal/entity"
)

type ProjectUsecase interface {
	CreateProject(ctx context.Context, req *entity.CreateProjectRequest) (*entity.Project, error)
	ListProjects(ctx context.Context, req *entity.ListProjectsRequest) (*entity.ListProjectsResponse, error)
	GetProject(ctx context.Context, id string) (*entity.Project, error)
	DeleteProject(ctx context.Context, id string) error
	SetCredentials(ctx context.Context, id string, req *entity.SetCredentialsRequest) (*entity.CredentialsStatusResponse, error)
	CredentialsStatus(ctx context.Context, id string) (*entity.CredentialsStatusResponse, error)
	Report(ctx context.Context, id string, format entity.ReportFormat) (*entity.ReportFile, error)
}
