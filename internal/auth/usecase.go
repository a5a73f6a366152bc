package auth

import (
	"context"

	"github.com/fekuna/omnipos-stockroom/internal/model"
)

type UseCase interface {
	Login(ctx context.Context, username, password string) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	CreateUser(ctx context.Context, username, password, role string) (*model.User, error)
}
