package setting

import (
	"context"

	"github.com/fekuna/omnipos-stockroom/internal/model"
)

type Repository interface {
	// Get returns nil, nil for an unknown key.
	Get(ctx context.Context, key string) (*model.AppSetting, error)
	FindAll(ctx context.Context) ([]model.AppSetting, error)
	Upsert(ctx context.Context, s *model.AppSetting) error
}
