package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/petalmall/membership/internal/models"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/logctx"
	"github.com/petalmall/membership/pkg/types"
)

// Store is the persistence capability for account auth.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

type LoginResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"-"`
}

type Service struct {
	log    *zap.SugaredLogger
	store  Store
	issuer *TokenIssuer
}

func NewService(log *zap.SugaredLogger, store Store, issuer *TokenIssuer) *Service {
	return &Service{log: log, store: store, issuer: issuer}
}

// Register creates a USER account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string, name *string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.New(apperr.CodeInvalidInput, "invalid email")
	}
	if len(password) < 8 {
		return nil, apperr.New(apperr.CodeInvalidInput, "password must be at least 8 characters")
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, apperr.New(apperr.CodeInvalidInput, "email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to check email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to hash password", err)
	}

	u := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         types.RoleUser,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to create user", err)
	}

	s.sendWelcomeEmail(ctx, u.Email)
	return u, nil
}

// Login verifies credentials and issues a signed auth token. Wrong
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeUnauthorized, "invalid email or password")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.New(apperr.CodeUnauthorized, "invalid email or password")
	}

	token, err := s.issuer.Sign(types.Identity{UserID: u.ID, Role: u.Role}, time.Now())
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to sign token", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("user_login", "user_id", u.ID)
	return &LoginResult{User: u, Token: token}, nil
}

// Me resolves the authenticated identity to its account row.
func (s *Service) Me(ctx context.Context, id types.Identity) (*models.User, error) {
	u, err := s.store.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeUnauthorized, "account no longer exists")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load user", err)
	}
	return u, nil
}

// sendWelcomeEmail is a delivery stub: real email integration is out of
// scope, so the message is only written to the log.
func (s *Service) sendWelcomeEmail(ctx context.Context, to string) {
	logctx.FromCtx(ctx, s.log).Infow("email_stub_send", "to", to, "template", "welcome")
}
