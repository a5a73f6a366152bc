package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/auth"
	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/fekuna/omnipos-stockroom/pkg/apperror"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type authUseCase struct {
	repo   auth.Repository
	cost   int
	logger logger.ZapLogger
}

// NewAuthUseCase hashes with bcrypt.DefaultCost when cost is zero.
func NewAuthUseCase(repo auth.Repository, cost int, log logger.ZapLogger) auth.UseCase {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &authUseCase{
		repo:   repo,
		cost:   cost,
		logger: log,
	}
}

func (uc *authUseCase) Login(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.Validation("username and password are required")
	}

	u, err := uc.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		uc.logger.Info("login rejected", zap.String("username", username))
		return nil, apperror.Unauthorized("invalid username or password")
	}
	return u, nil
}

func (uc *authUseCase) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if u == nil {
		return nil, apperror.NotFound("user")
	}
	return u, nil
}

func (uc *authUseCase) CreateUser(ctx context.Context, username, password, role string) (*model.User, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return nil, apperror.Validation("username is required")
	case len(password) < minPasswordLength:
		return nil, apperror.Validationf("password must be at least %d characters", minPasswordLength)
	case !model.ValidRole(role):
		return nil, apperror.Validationf("unknown role %q", role)
	}

	existing, err := uc.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.Validationf("username %q is taken", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, apperror.Internal(err)
	}
	uc.logger.Info("user created", zap.String("username", username), zap.String("role", role))
	return u, nil
}
