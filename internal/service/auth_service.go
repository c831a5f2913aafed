package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docask/docask/internal/model"
	"github.com/docask/docask/internal/pkg/errs"
	"github.com/docask/docask/internal/pkg/jwt"
	"github.com/docask/docask/internal/pkg/password"
)

const minPasswordLength = 8

// UserStore persists user accounts. The default deployment backs it with
// Postgres; the memory-index mode runs it in process.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type AuthService struct {
	users     UserStore
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(users UserStore, jwtSecret []byte, jwtTTL time.Duration) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

type AuthResult struct {
	Token string      `json:"access_token"`
	User  *model.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, email, plainPassword string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(plainPassword) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", errs.ErrInvalid, minPasswordLength)
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, err
	}
	now := time.Now().UnixMilli()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: hash,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return nil, fmt.Errorf("%w: email already registered", errs.ErrConflict)
		}
		logutil.GetLogger(ctx).Error("failed to create user", zap.Error(err))
		return nil, err
	}
	return s.issueToken(user)
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, fmt.Errorf("%w: invalid email or password", errs.ErrUnauthorized)
		}
		return nil, err
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", errs.ErrUnauthorized)
	}
	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := jwt.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("%w: invalid email address", errs.ErrInvalid)
	}
	return nil
}
