package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/taskforge/taskforge/internal/model"
)

// Projects persists project records
type Projects interface {
	Create(ctx context.Context, record *model.Project) (*model.Project, error)
	List(ctx context.Context) ([]*model.Project, error)
}

type projects struct {
	db *bun.DB
}

var _ Projects = (*projects)(nil)

// NewProjectsRepository builds the bun-backed Projects store.
func NewProjectsRepository(db *bun.DB) Projects {
	return &projects{db: db}
}

func (r *projects) Create(ctx context.Context, record *model.Project) (*model.Project, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = "PLANNED"
	}
	if record.Priority == "" {
		record.Priority = "MEDIUM"
	}
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *projects) List(ctx context.Context) ([]*model.Project, error) {
	var records []*model.Project
	err := r.db.NewSelect().Model(&records).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Organizations persists organization records
type Organizations interface {
	Create(ctx context.Context, record *model.Organization) (*model.Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	List(ctx context.Context) ([]*model.Organization, error)
}

type organizations struct {
	db *bun.DB
}

var _ Organizations = (*organizations)(nil)

// NewOrganizationsRepository builds the bun-backed Organizations store.
func NewOrganizationsRepository(db *bun.DB) Organizations {
	return &organizations{db: db}
}

func (r *organizations) Create(ctx context.Context, record *model.Organization) (*model.Organization, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *organizations) GetByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	record := &model.Organization{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *organizations) List(ctx context.Context) ([]*model.Organization, error) {
	var records []*model.Organization
	err := r.db.NewSelect().Model(&records).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Teams persists team records scoped to an organization
type Teams interface {
	Create(ctx context.Context, record *model.Team) (*model.Team, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*model.Team, error)
}

type teams struct {
	db *bun.DB
}

var _ Teams = (*teams)(nil)

// NewTeamsRepository builds the bun-backed Teams store.
func NewTeamsRepository(db *bun.DB) Teams {
	return &teams{db: db}
}

func (r *teams) Create(ctx context.Context, record *model.Team) (*model.Team, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *teams) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*model.Team, error) {
	var records []*model.Team
	err := r.db.NewSelect().Model(&records).
		Where("?TableAlias.organization_id = ?", orgID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}
