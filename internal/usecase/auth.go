package usecase

import (
	"errors"
	"strings"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	pkgAuth "github.com/polkiloo/bloomcart/internal/pkg/auth"
)

// AdminAuthUseCase authenticates the single back-office account.
type AdminAuthUseCase struct {
	email        string
	passwordHash string
	hasher       pkgAuth.PasswordHasher
	tokens       pkgAuth.Strategy
}

// NewAdminAuthUseCase constructs AdminAuthUseCase.
func NewAdminAuthUseCase(settings Settings, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AdminAuthUseCase {
	return &AdminAuthUseCase{
		email:        strings.ToLower(strings.TrimSpace(settings.AdminEmail)),
		passwordHash: settings.AdminPasswordHash,
		hasher:       hasher,
		tokens:       strategy,
	}
}

// Login validates credentials and returns a session token.
func (u *AdminAuthUseCase) Login(email, password string) (string, error) {
	if u.email == "" {
		return "", domainErrors.ConfigurationError{Setting: "ADMIN_EMAIL"}
	}
	if u.passwordHash == "" {
		return "", domainErrors.ConfigurationError{Setting: "ADMIN_PASSWORD_HASH"}
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || email != u.email {
		return "", domainErrors.ErrInvalidCredentials
	}
	if err := u.hasher.Compare(u.passwordHash, password); err != nil {
		if errors.Is(err, pkgAuth.ErrMalformedHash) {
			return "", domainErrors.ConfigurationError{Setting: "ADMIN_PASSWORD_HASH"}
		}
		return "", domainErrors.ErrInvalidCredentials
	}
	return u.tokens.IssueToken(email)
}

// ParseToken returns the admin subject stored in token.
func (u *AdminAuthUseCase) ParseToken(token string) (string, error) {
	if token == "" {
		return "", pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}
