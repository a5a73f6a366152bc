package alert

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/alert/dto"
	"github.com/fekuna/omnipos-stockroom/internal/model"
)

type Repository interface {
	Create(ctx context.Context, a *model.AlertLog) error
	GetByID(ctx context.Context, id string) (*model.AlertLog, error)
	FindAll(ctx context.Context, filters *dto.AlertFilters) ([]model.AlertLog, int, error)
	// Acknowledge marks an open alert. It reports whether a row changed.
	Acknowledge(ctx context.Context, id, actor string, at time.Time) (bool, error)
}
