package server

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/model"
	"github.com/taskforge/taskforge/internal/repository"
)

// errOrganizationNotFound is returned for unknown or malformed
// organization ids.
var errOrganizationNotFound = goerrors.New("organization not found", goerrors.CategoryNotFound).
	WithTextCode("ORGANIZATION_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

func (s *Server) handleListProjects(c *fiber.Ctx) error {
	records, err := s.repo.Projects().List(c.Context())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list projects")
	}
	return respondData(c, records)
}

func (s *Server) handleCreateProject(c *fiber.Ctx) error {
	var req CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := req.Validate(); err != nil {
		return err
	}

	record := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if user := currentUser(c); user != nil {
		record.OwnerID = &user.ID
	}

	record, err := s.repo.Projects().Create(c.Context(), record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create project")
	}
	return respondCreated(c, "Project created successfully", record)
}

func (s *Server) handleListOrganizations(c *fiber.Ctx) error {
	records, err := s.repo.Organizations().List(c.Context())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list organizations")
	}
	return respondData(c, records)
}

func (s *Server) handleGetOrganization(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errOrganizationNotFound
	}

	record, err := s.repo.Organizations().GetByID(c.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return errOrganizationNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve organization")
	}
	return respondData(c, record)
}

func (s *Server) handleCreateOrganization(c *fiber.Ctx) error {
	var req CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := req.Validate(); err != nil {
		return err
	}

	record := &model.Organization{
		Name:        req.Name,
		Description: req.Description,
	}
	if user := currentUser(c); user != nil {
		record.CreatedBy = &user.ID
	}

	record, err := s.repo.Organizations().Create(c.Context(), record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create organization")
	}
	return respondCreated(c, "Organization created successfully", record)
}

func (s *Server) handleListTeams(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errOrganizationNotFound
	}

	records, err := s.repo.Teams().ListByOrganization(c.Context(), id)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list teams")
	}
	return respondData(c, records)
}

func (s *Server) handleCreateTeam(c *fiber.Ctx) error {
	var req CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := req.Validate(); err != nil {
		return err
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return errOrganizationNotFound
	}

	if _, err := s.repo.Organizations().GetByID(c.Context(), orgID); err != nil {
		if repository.IsRecordNotFound(err) {
			return errOrganizationNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve organization")
	}

	record := &model.Team{
		OrganizationID: orgID,
		Name:           req.Name,
		Description:    req.Description,
	}
	if user := currentUser(c); user != nil {
		record.CreatedBy = &user.ID
	}

	record, err = s.repo.Teams().Create(c.Context(), record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create team")
	}
	return respondCreated(c, "Team created successfully", record)
}
