package alert

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/alert/dto"
	"github.com/fekuna/omnipos-stockroom/internal/model"
)

type UseCase interface {
	RaiseNegativeStock(ctx context.Context, rec *model.InventoryRecord, requested float64) *model.AlertLog
	EvaluateLowStock(ctx context.Context, rec *model.InventoryRecord) *model.AlertLog

	List(ctx context.Context, filters *dto.AlertFilters) ([]model.AlertLog, int, error)
	Acknowledge(ctx context.Context, id, actor string) (*model.AlertLog, error)

	ListExpiring(ctx context.Context, now time.Time) ([]model.InventoryRecord, error)
	ScanExpiring(ctx context.Context, now time.Time) ([]model.AlertLog, error)
}

// InventoryReader is the slice of the inventory store the expiry scan needs.
type InventoryReader interface {
	FindExpiryTracked(ctx context.Context) ([]model.InventoryRecord, error)
}

type RecipientSource interface {
	AlertRecipients(ctx context.Context) []string
}

// Notifier hands a created alert to the notification path. It must return
// immediately; delivery happens elsewhere.
type Notifier interface {
	NotifyAlert(a *model.AlertLog, rec *model.InventoryRecord, recipients []string) bool
}
