package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/taskforge/taskforge/internal/model"
)

// Lifetimes are asymmetric on purpose: reset tokens are high-risk and
// short-lived, verification tokens low-risk and longer-lived.
const (
	DefaultAccessTokenTTL         = 15 * time.Minute
	DefaultRefreshTokenDays       = 7
	VerificationTokenTTL          = 24 * time.Hour
	PasswordResetTokenTTL         = time.Hour
	refreshTokenEntropyBytes      = 64
	verificationTokenEntropyBytes = 32
)

// TokenService issues and verifies access tokens and mints the opaque
// bearer secrets used for refresh, verification, and password reset.
type TokenService interface {
	GenerateAccessToken(identity Identity) (string, error)
	VerifyAccessToken(token string) (AuthClaims, error)
	GenerateRefreshToken() (string, error)
	GenerateVerificationToken() (string, error)
	HashToken(token string) string
	RefreshTokenExpiry() time.Time
	VerificationTokenExpiry() time.Time
	PasswordResetTokenExpiry() time.Time
	AccessTokenTTL() time.Duration
}

// Identity holds the attributes encoded in an access token
type Identity interface {
	ID() string
	Email() string
	Role() string
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey       []byte
	accessTTL        time.Duration
	refreshTokenDays int
	issuer           string
	audience         jwt.ClaimStrings
	logger           Logger
	now              func() time.Time
}

// TokenServiceOption customizes token service construction.
type TokenServiceOption func(*TokenServiceImpl)

// WithAccessTokenTTL overrides the default access token lifetime.
func WithAccessTokenTTL(ttl time.Duration) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if ttl > 0 {
			ts.accessTTL = ttl
		}
	}
}

// WithRefreshTokenDays overrides the default refresh token lifetime.
func WithRefreshTokenDays(days int) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if days > 0 {
			ts.refreshTokenDays = days
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if clock != nil {
			ts.now = clock
		}
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, issuer string, audience jwt.ClaimStrings, logger Logger, opts ...TokenServiceOption) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	ts := &TokenServiceImpl{
		signingKey:       signingKey,
		accessTTL:        DefaultAccessTokenTTL,
		refreshTokenDays: DefaultRefreshTokenDays,
		issuer:           issuer,
		audience:         audience,
		logger:           logger,
		now:              time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}
	return ts
}

// GenerateAccessToken signs a short-lived JWT carrying the user id, email,
// and role.
func (ts *TokenServiceImpl) GenerateAccessToken(identity Identity) (string, error) {
	if identity == nil {
		return "", goerrors.New("identity must not be nil", goerrors.CategoryInternal)
	}

	now := ts.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessTTL)),
		},
		UID:       identity.ID(),
		UserEmail: identity.Email(),
		UserRole:  identity.Role(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// VerifyAccessToken parses and validates a token string. Every failure
// mode, malformed, expired, or bad signature, returns ErrAccessTokenInvalid
// so callers treat verification failure uniformly as unauthenticated.
func (ts *TokenServiceImpl) VerifyAccessToken(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token service encountered unexpected signing method: %v", t.Header["alg"])
			return nil, ErrAccessTokenInvalid
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, ErrAccessTokenInvalid
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrAccessTokenInvalid
	}

	return claims, nil
}

// GenerateRefreshToken mints a 512-bit opaque bearer secret.
func (ts *TokenServiceImpl) GenerateRefreshToken() (string, error) {
	return randomHex(refreshTokenEntropyBytes)
}

// GenerateVerificationToken mints a 256-bit opaque secret, used for both
// email verification and password reset links.
func (ts *TokenServiceImpl) GenerateVerificationToken() (string, error) {
	return randomHex(verificationTokenEntropyBytes)
}

// HashToken computes the SHA-256 digest used as the storage and lookup key
// for opaque tokens. A compromised database never leaks usable bearers.
func (ts *TokenServiceImpl) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RefreshTokenExpiry computes now + configured days.
func (ts *TokenServiceImpl) RefreshTokenExpiry() time.Time {
	return ts.now().AddDate(0, 0, ts.refreshTokenDays)
}

// VerificationTokenExpiry computes now + 24h.
func (ts *TokenServiceImpl) VerificationTokenExpiry() time.Time {
	return ts.now().Add(VerificationTokenTTL)
}

// PasswordResetTokenExpiry computes now + 1h.
func (ts *TokenServiceImpl) PasswordResetTokenExpiry() time.Time {
	return ts.now().Add(PasswordResetTokenTTL)
}

// AccessTokenTTL returns the configured access token lifetime.
func (ts *TokenServiceImpl) AccessTokenTTL() time.Duration {
	return ts.accessTTL
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read random bytes")
	}
	return hex.EncodeToString(buf), nil
}

// userIdentity adapts a model.User to the Identity interface.
type userIdentity struct {
	user *model.User
}

// NewIdentity wraps a user record for token generation.
func NewIdentity(user *model.User) Identity {
	return userIdentity{user: user}
}

func (i userIdentity) ID() string    { return i.user.ID.String() }
func (i userIdentity) Email() string { return i.user.Email }
func (i userIdentity) Role() string  { return i.user.Role }
