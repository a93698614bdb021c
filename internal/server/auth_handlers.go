package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/taskforge/taskforge/internal/auth"
	"github.com/taskforge/taskforge/internal/repository"
)

// errNoProfileFields is returned when a profile update carries nothing to
// change.
var errNoProfileFields = goerrors.New("no valid fields to update", goerrors.CategoryValidation).
	WithTextCode("NO_VALID_FIELDS").
	WithCode(goerrors.CodeBadRequest)

// errProfileNotFound is returned when an admin targets an unknown user id.
var errProfileNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(auth.TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// sessionPayload is the login/refresh response body: the user summary
// next to the flattened token pair.
type sessionPayload struct {
	User any `json:"user"`
	*auth.TokenPair
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.auth.Register(c.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}

	return respondCreated(c, "Registration successful. Please check your email to verify your account.", user.Summary())
}

func (s *Server) handleVerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		var req struct {
			Token string `json:"token"`
		}
		if err := c.BodyParser(&req); err == nil {
			token = req.Token
		}
	}
	if token == "" {
		return auth.ErrInvalidOrExpiredToken
	}

	if err := s.auth.VerifyEmail(c.Context(), token); err != nil {
		return err
	}
	return respondOK(c, "Email verified successfully", nil)
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := req.Validate(); err != nil {
		return err
	}

	user, pair, err := s.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respondData(c, sessionPayload{User: user.Summary(), TokenPair: pair})
}

func (s *Server) handleRefresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := req.Validate(); err != nil {
		return err
	}

	user, pair, err := s.auth.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return respondData(c, sessionPayload{User: user.Summary(), TokenPair: pair})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	// a missing or malformed body revokes nothing and still succeeds
	var req LogoutRequest
	_ = c.BodyParser(&req)

	if err := s.auth.Logout(c.Context(), req.RefreshToken); err != nil {
		return err
	}
	return respondOK(c, "Logged out successfully", nil)
}

func (s *Server) handleLogoutAll(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return auth.ErrAuthRequired
	}

	if err := s.auth.LogoutAll(c.Context(), user.ID); err != nil {
		return err
	}
	return respondOK(c, "Logged out of all sessions", nil)
}

func (s *Server) handleForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.auth.ForgotPassword(c.Context(), req.Email); err != nil {
		return err
	}
	return respondOK(c, "If the email is registered, a password reset link has been sent", nil)
}

func (s *Server) handleResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.auth.ResetPassword(c.Context(), req.Token, req.Password); err != nil {
		return err
	}
	return respondOK(c, "Password has been reset successfully", nil)
}

func (s *Server) handleResendVerification(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return auth.ErrAuthRequired
	}

	if err := s.auth.ResendVerification(c.Context(), user.ID); err != nil {
		return err
	}
	return respondOK(c, "Verification email sent", nil)
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return auth.ErrAuthRequired
	}
	return respondData(c, user)
}

func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return auth.ErrAuthRequired
	}
	return respondData(c, user)
}

func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return auth.ErrAuthRequired
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}

	return s.applyProfilePatch(c, user.ID, req.Patch())
}

func (s *Server) handleAdminUpdateProfile(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return errProfileNotFound
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}

	return s.applyProfilePatch(c, id, req.Patch())
}

func (s *Server) handleAdminListUsers(c *fiber.Ctx) error {
	records, err := s.repo.Users().List(c.Context())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users")
	}
	return respondData(c, records)
}

func (s *Server) handleAdminGetUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return errProfileNotFound
	}

	record, err := s.repo.Users().GetByID(c.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return errProfileNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}
	return respondData(c, record)
}

func (s *Server) handleAdminDeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return errProfileNotFound
	}

	// removing the account also ends every active session
	err = s.repo.RunInTx(c.Context(), nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.repo.Users().DeleteTx(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.RefreshTokens().RevokeAllForUserTx(ctx, tx, id)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return errProfileNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete user")
	}
	return respondOK(c, "User deleted successfully", nil)
}

func (s *Server) applyProfilePatch(c *fiber.Ctx, id uuid.UUID, patch repository.ProfilePatch) error {
	if patch.Empty() {
		return errNoProfileFields
	}

	updated, err := s.repo.Users().UpdateProfile(c.Context(), id, patch)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return errProfileNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update profile")
	}

	return respondOK(c, "Profile updated successfully", updated)
}
