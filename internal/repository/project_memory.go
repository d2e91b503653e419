package repository

import (
	"context"
	"sort"
	"time"

	"github.com/futig/launchpad-backend/internal/config"
	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/knowledge"
	"github.com/patrickmn/go-cache"
)

// ProjectRepository defines the interface for project storage
type ProjectRepository interface {
	Create(ctx context.Context, project entity.Project) (*entity.Project, error)
	Get(ctx context.Context, id string) (*entity.Project, error)
	Update(ctx context.Context, project entity.Project) (*entity.Project, error)
	List(ctx context.Context, skip, limit int) ([]*entity.Project, error)
	Delete(ctx context.Context, id string) error
	Knowledge(ctx context.Context, id string) (*knowledge.Store, error)
}

var _ ProjectRepository = &ProjectMemory{}

type projectRecord struct {
	project   *entity.Project
	knowledge *knowledge.Store
}

// ProjectMemory keeps projects in a TTL cache; every write extends the TTL
type ProjectMemory struct {
	cache *cache.Cache
}

func NewProjectMemory(cfg config.StoreConfig) *ProjectMemory {
	return &ProjectMemory{
		cache: cache.New(cfg.ProjectTTL, cfg.CleanupInterval),
	}
}

// OnEvicted registers fn to run when a project expires or is deleted
func (r *ProjectMemory) OnEvicted(fn func(projectID string)) {
	r.cache.OnEvicted(func(id string, _ any) {
		fn(id)
	})
}

func (r *ProjectMemory) Create(_ context.Context, project entity.Project) (*entity.Project, error) {
	rec := &projectRecord{
		project:   project.Clone(),
		knowledge: knowledge.NewStore(),
	}
	if err := r.cache.Add(project.ID, rec, cache.DefaultExpiration); err != nil {
		return nil, entity.ErrInvalidProject
	}
	return project.Clone(), nil
}

func (r *ProjectMemory) Get(_ context.Context, id string) (*entity.Project, error) {
	rec, err := r.record(id)
	if err != nil {
		return nil, err
	}
	return rec.project.Clone(), nil
}

func (r *ProjectMemory) Update(_ context.Context, project entity.Project) (*entity.Project, error) {
	rec, err := r.record(project.ID)
	if err != nil {
		return nil, err
	}

	updated := &projectRecord{
		project:   project.Clone(),
		knowledge: rec.knowledge,
	}
	if err := r.cache.Replace(project.ID, updated, cache.DefaultExpiration); err != nil {
		return nil, entity.ErrProjectNotFound
	}
	return project.Clone(), nil
}

// List returns projects ordered by last update, newest first
func (r *ProjectMemory) List(_ context.Context, skip, limit int) ([]*entity.Project, error) {
	items := r.cache.Items()

	projects := make([]*entity.Project, 0, len(items))
	for _, item := range items {
		if rec, ok := item.Object.(*projectRecord); ok {
			projects = append(projects, rec.project.Clone())
		}
	}

	sort.Slice(projects, func(i, j int) bool {
		if projects[i].UpdatedAt.Equal(projects[j].UpdatedAt) {
			return projects[i].ID < projects[j].ID
		}
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})

	if skip >= len(projects) {
		return []*entity.Project{}, nil
	}
	end := len(projects)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return projects[skip:end], nil
}

func (r *ProjectMemory) Delete(_ context.Context, id string) error {
	if _, err := r.record(id); err != nil {
		return err
	}
	r.cache.Delete(id)
	return nil
}

// Knowledge returns the live knowledge store of the project
func (r *ProjectMemory) Knowledge(_ context.Context, id string) (*knowledge.Store, error) {
	rec, err := r.record(id)
	if err != nil {
		return nil, err
	}
	return rec.knowledge, nil
}

// Count returns the number of live projects
func (r *ProjectMemory) Count() int {
	return r.cache.ItemCount()
}

func (r *ProjectMemory) record(id string) (*projectRecord, error) {
	v, expiresAt, ok := r.cache.GetWithExpiration(id)
	if !ok {
		return nil, entity.ErrProjectNotFound
	}
	if !expiresAt.IsZero() && expiresAt.Before(time.Now()) {
		return nil, entity.ErrProjectNotFound
	}
	rec, ok := v.(*projectRecord)
	if !ok {
		return nil, entity.ErrProjectNotFound
	}
	return rec, nil
}
