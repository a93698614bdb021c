package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/taskforge/taskforge/internal/mailer"
	"github.com/taskforge/taskforge/internal/model"
	"github.com/taskforge/taskforge/internal/repository"
)

// TokenPair is the credential pair issued by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Service orchestrates the credential and token lifecycle: registration,
// verification, login, refresh rotation, logout, and password reset.
type Service struct {
	repo   repository.Manager
	tokens TokenService
	hasher *PasswordHasher
	mail   mailer.Sender
	logger Logger
	now    func() time.Time
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithServiceLogger overrides the default logger.
func WithServiceLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceClock injects a custom clock (useful for tests).
func WithServiceClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewService wires the auth flows against the given collaborators.
func NewService(repo repository.Manager, tokens TokenService, hasher *PasswordHasher, mail mailer.Sender, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		tokens: tokens,
		hasher: hasher,
		mail:   mail,
		logger: defLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register creates a pending-verification account and dispatches the
// verification email. The email is sent after the transaction commits;
// delivery failure is logged and never undoes the registration.
func (s *Service) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	email = model.NormalizeEmail(email)

	if _, err := s.repo.Users().GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !repository.IsRecordNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check existing email")
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	verificationToken, err := s.tokens.GenerateVerificationToken()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if user, err = s.repo.Users().CreateTx(ctx, tx, user); err != nil {
			// a concurrent registration can slip past the pre-check and
			// lose to the unique email constraint
			if repository.IsUniqueViolation(err) {
				return ErrEmailExists
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		record := &model.VerificationToken{
			UserID:    user.ID,
			Token:     verificationToken,
			ExpiresAt: s.tokens.VerificationTokenExpiry(),
		}
		if _, err := s.repo.VerificationTokens().CreateTx(ctx, tx, record); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create verification token")
		}
		return nil
	})
	if err != nil {
		return nil, richOrInternal(err, "user registration transaction failed")
	}

	// create-then-notify: mail dispatch stays outside the transaction
	go s.sendVerification(user.Email, verificationToken)

	return user, nil
}

// VerifyEmail consumes a verification token and marks the user verified.
// Replaying a consumed token fails the same way as an unknown one.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	record, err := s.repo.VerificationTokens().GetByToken(ctx, token, s.now())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrInvalidOrExpiredToken
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up verification token")
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.repo.Users().MarkVerifiedTx(ctx, tx, record.UserID); err != nil {
			return err
		}
		return s.repo.VerificationTokens().MarkUsedTx(ctx, tx, record.ID)
	})
	if err != nil {
		return richOrInternal(err, "email verification transaction failed")
	}
	return nil
}

// Login verifies credentials and issues an access/refresh pair. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := s.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokenPair(ctx, nil, user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.Users().TrackLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn("failed to track login for %s: %v", user.ID, err)
	}

	return user, pair, nil
}

// Refresh rotates the presented refresh token: the token is revoked on
// use, bounding the replay window of a leaked secret to a single use. An
// expired token is revoked even though the call fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.User, *TokenPair, error) {
	hash := s.tokens.HashToken(refreshToken)

	stored, err := s.repo.RefreshTokens().GetByHash(ctx, hash)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil, ErrInvalidRefreshToken
		}
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up refresh token")
	}

	if stored.IsExpired(s.now()) {
		if err := s.repo.RefreshTokens().Revoke(ctx, stored.ID); err != nil {
			s.logger.Warn("failed to revoke expired refresh token %s: %v", stored.ID, err)
		}
		return nil, nil, ErrRefreshTokenExpired
	}

	user, err := s.repo.Users().GetByID(ctx, stored.UserID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during refresh")
	}

	var pair *TokenPair
	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.repo.RefreshTokens().RevokeTx(ctx, tx, stored.ID); err != nil {
			return err
		}
		pair, err = s.issueTokenPair(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, nil, richOrInternal(err, "refresh token rotation failed")
	}

	return user, pair, nil
}

// Logout revokes the presented refresh token. Access tokens are stateless
// and expire on their own. A missing token revokes nothing; revoking every
// session is an explicit, separate operation (LogoutAll).
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	stored, err := s.repo.RefreshTokens().GetByHash(ctx, s.tokens.HashToken(refreshToken))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up refresh token")
	}

	return s.repo.RefreshTokens().Revoke(ctx, stored.ID)
}

// LogoutAll revokes every refresh token owned by the user.
func (s *Service) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.repo.RefreshTokens().RevokeAllForUser(ctx, userID)
}

// ForgotPassword issues a reset token when the email is known. The caller
// always receives the same generic success; an attacker cannot enumerate
// which addresses are registered.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	resetToken, err := s.tokens.GenerateVerificationToken()
	if err != nil {
		return err
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// a single active reset token per user
		if err := s.repo.PasswordResets().InvalidateForUserTx(ctx, tx, user.ID); err != nil {
			return err
		}
		record := &model.PasswordResetToken{
			UserID:    user.ID,
			TokenHash: s.tokens.HashToken(resetToken),
			ExpiresAt: s.tokens.PasswordResetTokenExpiry(),
		}
		_, err := s.repo.PasswordResets().CreateTx(ctx, tx, record)
		return err
	})
	if err != nil {
		return richOrInternal(err, "failed to initialize password reset")
	}

	go s.sendPasswordReset(user.Email, resetToken)

	return nil
}

// ResetPassword consumes a reset token, sets the new password hash, and
// revokes every refresh token for the user: a credential change
// invalidates every existing session.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	record, err := s.repo.PasswordResets().GetByHash(ctx, s.tokens.HashToken(token), s.now())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrInvalidResetToken
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	hash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.repo.Users().UpdatePasswordTx(ctx, tx, record.UserID, hash); err != nil {
			return err
		}
		if err := s.repo.PasswordResets().MarkUsedTx(ctx, tx, record.ID); err != nil {
			return err
		}
		return s.repo.RefreshTokens().RevokeAllForUserTx(ctx, tx, record.UserID)
	})
	if err != nil {
		return richOrInternal(err, "password reset transaction failed")
	}
	return nil
}

// ResendVerification issues a fresh verification token for an unverified
// account.
func (s *Service) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	user, err := s.repo.Users().GetByID(ctx, userID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	verificationToken, err := s.tokens.GenerateVerificationToken()
	if err != nil {
		return err
	}

	record := &model.VerificationToken{
		UserID:    user.ID,
		Token:     verificationToken,
		ExpiresAt: s.tokens.VerificationTokenExpiry(),
	}
	if _, err := s.repo.VerificationTokens().Create(ctx, record); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create verification token")
	}

	go s.sendVerification(user.Email, verificationToken)

	return nil
}

// DeleteExpiredTokens garbage-collects expired and consumed rows from the
// three token stores. Idempotent and safe to run on any schedule.
func (s *Service) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	now := s.now()
	var total int64

	n, err := s.repo.RefreshTokens().DeleteExpired(ctx, now)
	if err != nil {
		return total, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete expired refresh tokens")
	}
	total += n

	n, err = s.repo.VerificationTokens().DeleteExpired(ctx, now)
	if err != nil {
		return total, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete expired verification tokens")
	}
	total += n

	n, err = s.repo.PasswordResets().DeleteExpired(ctx, now)
	if err != nil {
		return total, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete expired reset tokens")
	}
	total += n

	return total, nil
}

// TokenService exposes the underlying token service to the HTTP layer.
func (s *Service) TokenService() TokenService {
	return s.tokens
}

// issueTokenPair signs a new access token and persists the hash of a new
// refresh token. When tx is nil the insert runs outside a transaction.
func (s *Service) issueTokenPair(ctx context.Context, tx bun.IDB, user *model.User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(NewIdentity(user))
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	record := &model.RefreshToken{
		UserID:    user.ID,
		TokenHash: s.tokens.HashToken(refreshToken),
		ExpiresAt: s.tokens.RefreshTokenExpiry(),
	}

	if tx != nil {
		_, err = s.repo.RefreshTokens().CreateTx(ctx, tx, record)
	} else {
		_, err = s.repo.RefreshTokens().Create(ctx, record)
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not persist refresh token")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTokenTTL().Seconds()),
	}, nil
}

func (s *Service) sendVerification(address, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.mail.SendVerificationEmail(ctx, address, token); err != nil {
		s.logger.Error("failed to send verification email to %s: %v", address, err)
	}
}

func (s *Service) sendPasswordReset(address, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.mail.SendPasswordResetEmail(ctx, address, token); err != nil {
		s.logger.Error("failed to send password reset email to %s: %v", address, err)
	}
}

// richOrInternal keeps structured errors intact and wraps anything else.
func richOrInternal(err error, msg string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}
