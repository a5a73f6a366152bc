package inventory

import (
	"context"

	"github.com/fekuna/omnipos-stockroom/internal/inventory/dto"
	"github.com/fekuna/omnipos-stockroom/internal/model"
)

type UseCase interface {
	Receive(ctx context.Context, input *dto.StockMovementInput) (*model.StockTransaction, error)
	Issue(ctx context.Context, input *dto.StockMovementInput) (*model.StockTransaction, error)
	Transfer(ctx context.Context, input *dto.TransferInput) ([]model.StockTransaction, error)
	Adjust(ctx context.Context, input *dto.AdjustInput) (*model.StockTransaction, error)

	RegisterRecord(ctx context.Context, input *dto.RegisterRecordInput) (*model.InventoryRecord, error)
	GetRecord(ctx context.Context, id string) (*model.InventoryRecord, error)
	ListRecords(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryRecord, int, error)
	ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]model.StockTransaction, int, error)
	Reconcile(ctx context.Context, id string) (*dto.Reconciliation, error)
}

// AlertEngine observes stock conditions. Implementations must not fail the
// caller: errors are handled internally.
type AlertEngine interface {
	RaiseNegativeStock(ctx context.Context, rec *model.InventoryRecord, requested float64) *model.AlertLog
	EvaluateLowStock(ctx context.Context, rec *model.InventoryRecord) *model.AlertLog
}

type SettingsReader interface {
	PreventNegativeIssue(ctx context.Context) bool
}
