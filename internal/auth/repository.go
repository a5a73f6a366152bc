package auth

import (
	"context"

	"github.com/fekuna/omnipos-stockroom/internal/model"
)

type Repository interface {
	// Lookups return nil, nil when nothing matches.
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}
