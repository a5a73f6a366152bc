package inventory

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-stockroom/internal/inventory/dto"
	"github.com/fekuna/omnipos-stockroom/internal/model"
)

// ErrInsufficientStock is returned by a guarded movement whose conditional
// update matched no row: the stock would have gone below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrRecordNotFound is returned when a movement targets a missing record.
var ErrRecordNotFound = errors.New("inventory record not found")

type Repository interface {
	// Records. Lookups return nil, nil when nothing matches.
	GetByID(ctx context.Context, id string) (*model.InventoryRecord, error)
	GetByBarcode(ctx context.Context, barcode, warehouseName string) (*model.InventoryRecord, error)
	FindAll(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryRecord, int, error)
	FindExpiryTracked(ctx context.Context) ([]model.InventoryRecord, error)

	// Upsert creates or updates the descriptive fields of a record.
	// stock_qty is never touched here; it only moves through the ledger.
	Upsert(ctx context.Context, rec *model.InventoryRecord) (*model.InventoryRecord, error)

	// Ledger
	ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]model.StockTransaction, int, error)
	LedgerDelta(ctx context.Context, inventoryID string) (float64, error)

	// Atomic mutations: quantity update plus ledger append in one transaction.
	ApplyMovement(ctx context.Context, m *dto.Movement) (*model.StockTransaction, error)
	Transfer(ctx context.Context, out, in *dto.Movement) ([]model.StockTransaction, error)
}
