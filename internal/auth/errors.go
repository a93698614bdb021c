package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// Stable machine-readable codes surfaced in the response envelope. These
// are part of the API contract and must not change between releases.
const (
	TextCodeEmailExists         = "EMAIL_EXISTS"
	TextCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	TextCodeInvalidToken        = "INVALID_TOKEN"
	TextCodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	TextCodeRefreshTokenExpired = "REFRESH_TOKEN_EXPIRED"
	TextCodeInvalidResetToken   = "INVALID_RESET_TOKEN"
	TextCodeUserNotFound        = "USER_NOT_FOUND"
	TextCodeNoToken             = "NO_TOKEN"
	TextCodeAuthRequired        = "AUTH_REQUIRED"
	TextCodeAlreadyVerified     = "ALREADY_VERIFIED"
	TextCodeEmailNotVerified    = "EMAIL_NOT_VERIFIED"
	TextCodeAdminRequired       = "ADMIN_REQUIRED"
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
)

// ErrEmailExists is returned when registering an email already in use,
// compared case-insensitively.
var ErrEmailExists = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials covers both unknown email and wrong password;
// callers must not be able to tell the two apart.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidOrExpiredToken covers missing, consumed, and expired
// verification tokens uniformly.
var ErrInvalidOrExpiredToken = goerrors.New("invalid or expired verification token", goerrors.CategoryBadInput).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidRefreshToken is returned when the presented refresh token has
// no matching non-revoked record.
var ErrInvalidRefreshToken = goerrors.New("invalid refresh token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidRefreshToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrRefreshTokenExpired is returned when the record exists but its expiry
// has passed. The record is revoked as a side effect.
var ErrRefreshTokenExpired = goerrors.New("refresh token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeRefreshTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidResetToken covers missing, consumed, and expired password
// reset tokens uniformly.
var ErrInvalidResetToken = goerrors.New("invalid or expired reset token", goerrors.CategoryBadInput).
	WithTextCode(TextCodeInvalidResetToken).
	WithCode(goerrors.CodeBadRequest)

// ErrUserNotFound is returned when a token references a user that no
// longer exists.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryAuth).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoToken is returned by the middleware when no bearer token is present.
var ErrNoToken = goerrors.New("access token required", goerrors.CategoryAuth).
	WithTextCode(TextCodeNoToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrAuthRequired guards routes that need an authenticated user.
var ErrAuthRequired = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithTextCode(TextCodeAuthRequired).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccessTokenInvalid covers every access token verification failure:
// malformed, expired, or bad signature. Callers treat them uniformly as
// unauthenticated.
var ErrAccessTokenInvalid = goerrors.New("invalid or expired access token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrAlreadyVerified is returned when resending verification for a
// verified account.
var ErrAlreadyVerified = goerrors.New("email is already verified", goerrors.CategoryBadInput).
	WithTextCode(TextCodeAlreadyVerified).
	WithCode(goerrors.CodeBadRequest)

// ErrEmailNotVerified guards routes that require a verified account.
var ErrEmailNotVerified = goerrors.New("email verification required", goerrors.CategoryAuthz).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(goerrors.CodeForbidden)

// ErrAdminRequired guards admin-only routes.
var ErrAdminRequired = goerrors.New("admin access required", goerrors.CategoryAuthz).
	WithTextCode(TextCodeAdminRequired).
	WithCode(goerrors.CodeForbidden)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)
