package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Project is the project model
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:prj"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Status        string     `bun:"status,notnull,default:'PLANNED'" json:"status,omitempty"`
	Priority      string     `bun:"priority,notnull,default:'MEDIUM'" json:"priority,omitempty"`
	StartDate     *time.Time `bun:"start_date,nullzero" json:"start_date,omitempty"`
	EndDate       *time.Time `bun:"end_date,nullzero" json:"end_date,omitempty"`
	OwnerID       *uuid.UUID `bun:"owner_id,nullzero,type:uuid" json:"owner_id,omitempty"`
	ManagerID     *uuid.UUID `bun:"manager_id,nullzero,type:uuid" json:"manager_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Organization groups teams and users
type Organization struct {
	bun.BaseModel `bun:"table:organizations,alias:org"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	CreatedBy     *uuid.UUID `bun:"created_by,nullzero,type:uuid" json:"created_by,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Team belongs to an organization
type Team struct {
	bun.BaseModel  `bun:"table:teams,alias:tm"`
	ID             uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	OrganizationID uuid.UUID     `bun:"organization_id,notnull,type:uuid" json:"organization_id,omitempty"`
	Organization   *Organization `bun:"rel:belongs-to,join:organization_id=id" json:"organization,omitempty"`
	Name           string        `bun:"name,notnull" json:"name,omitempty"`
	Description    string        `bun:"description" json:"description,omitempty"`
	CreatedBy      *uuid.UUID    `bun:"created_by,nullzero,type:uuid" json:"created_by,omitempty"`
	CreatedAt      *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
