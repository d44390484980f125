package auth

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-pkgz/auth/v2"
	"github.com/go-pkgz/auth/v2/avatar"
	"github.com/go-pkgz/auth/v2/provider"
	"github.com/go-pkgz/auth/v2/token"
	"github.com/imagineserve/imagine-serve/config"
	"github.com/imagineserve/imagine-serve/models"
	"golang.org/x/crypto/bcrypt"
)

// CredentialStore is the subset of the user store the auth provider
// needs; *database.UserStore satisfies it.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service wraps the go-pkgz auth service with a credential check against
// the users collection.
type Service struct {
	svc   *auth.Service
	users CredentialStore
}

func NewService(users CredentialStore) *Service {
	options := auth.Opts{
		SecretReader: token.SecretFunc(func(id string) (string, error) {
			return config.MustGet("JWT_SECRET"), nil
		}),
		TokenDuration:  time.Hour * 24,
		CookieDuration: time.Hour * 24 * 7,
		Issuer:         "imagine-serve",
		URL:            "http://localhost:3000",
		AvatarStore:    avatar.NewLocalFS("/tmp/avatars"),
	}

	s := &Service{svc: auth.NewService(options), users: users}

	s.svc.AddDirectProvider("local", provider.CredCheckerFunc(func(identity, password string) (bool, error) {
		ok, _, err := s.ValidateUserCredentials(context.Background(), identity, password)
		return ok, err
	}))

	return s
}

// TokenService exposes the JWT issue/parse service.
func (s *Service) TokenService() *token.Service {
	return s.svc.TokenService()
}

// ValidateUserCredentials checks identity (email or username) and
// password against the users collection, returning the matched user.
func (s *Service) ValidateUserCredentials(ctx context.Context, identity, password string) (bool, *models.User, error) {
	var (
		user *models.User
		err  error
	)

	if isEmail(identity) {
		user, err = s.users.GetByEmail(ctx, identity)
	} else {
		user, err = s.users.GetByUsername(ctx, identity)
	}
	if err != nil {
		return false, nil, err
	}
	if user == nil {
		return false, nil, nil
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		return false, nil, nil
	}

	return true, user, nil
}

// HashPassword hashes a password for storage on the user record.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(hashed), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func isEmail(identity string) bool {
	_, err := mail.ParseAddress(identity)
	return err == nil
}
