package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/auth"
	"github.com/taskforge/taskforge/internal/model"
	"github.com/taskforge/taskforge/internal/repository"
)

const currentUserKey = "current_user"

// currentUser returns the authenticated user stored by the middleware.
func currentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(currentUserKey).(*model.User)
	return user
}

func extractBearer(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// Authenticate requires a valid bearer token backed by an existing user.
func (s *Server) Authenticate(c *fiber.Ctx) error {
	raw := extractBearer(c)
	if raw == "" {
		return auth.ErrNoToken
	}

	claims, err := s.auth.TokenService().VerifyAccessToken(raw)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return auth.ErrAccessTokenInvalid
	}

	user, err := s.repo.Users().GetByID(c.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return auth.ErrUserNotFound
		}
		return err
	}

	c.Locals(currentUserKey, user)
	return c.Next()
}

// OptionalAuth decodes a bearer token when present. Decode failure is
// treated as anonymous, not as an error.
func (s *Server) OptionalAuth(c *fiber.Ctx) error {
	raw := extractBearer(c)
	if raw == "" {
		return c.Next()
	}

	claims, err := s.auth.TokenService().VerifyAccessToken(raw)
	if err != nil {
		return c.Next()
	}

	if id, err := uuid.Parse(claims.UserID()); err == nil {
		if user, err := s.repo.Users().GetByID(c.Context(), id); err == nil {
			c.Locals(currentUserKey, user)
		}
	}
	return c.Next()
}

// RequireVerified rejects unverified accounts. Must run after Authenticate.
func (s *Server) RequireVerified(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return auth.ErrAuthRequired
	}
	if !user.IsVerified {
		return auth.ErrEmailNotVerified
	}
	return c.Next()
}

// RequireAdmin rejects non-admin accounts. Must run after Authenticate.
func (s *Server) RequireAdmin(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return auth.ErrAuthRequired
	}
	if user.Role != model.RoleAdmin {
		return auth.ErrAdminRequired
	}
	return c.Next()
}
