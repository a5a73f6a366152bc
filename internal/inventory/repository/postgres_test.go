package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/inventory"
	"github.com/fekuna/omnipos-stockroom/internal/inventory/dto"
	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/fekuna/omnipos-stockroom/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(t *testing.T, repo *PGRepository, barcode, warehouse string, level float64) *model.InventoryRecord {
	t.Helper()
	now := time.Now().UTC()
	rec, err := repo.Upsert(context.Background(), &model.InventoryRecord{
		ID:              uuid.New().String(),
		Barcode:         barcode,
		ItemName:        "Item " + barcode,
		WarehouseName:   warehouse,
		StockAlertLevel: level,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

func move(id string, tt model.TransactionType, delta float64, guard bool) *dto.Movement {
	return &dto.Movement{
		InventoryID:   id,
		Type:          tt,
		Delta:         delta,
		GuardNegative: guard,
		ProcessedBy:   "tester",
		At:            time.Now().UTC(),
	}
}

func TestUpsert_KeepsStockQty(t *testing.T) {
	repo := NewPGRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	rec := newRecord(t, repo, "X", "W", 5)
	_, err := repo.ApplyMovement(ctx, move(rec.ID, model.TransactionReceive, 10, false))
	require.NoError(t, err)

	now := time.Now().UTC()
	updated, err := repo.Upsert(ctx, &model.InventoryRecord{
		ID:              uuid.New().String(),
		Barcode:         "X",
		ItemName:        "Renamed",
		WarehouseName:   "W",
		StockAlertLevel: 8,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, "Renamed", updated.ItemName)
	assert.Equal(t, 8.0, updated.StockAlertLevel)
	assert.Equal(t, 10.0, updated.StockQty)
}

func TestGetByBarcode_Missing(t *testing.T) {
	repo := NewPGRepository(testutil.NewTestDB(t))

	rec, err := repo.GetByBarcode(context.Background(), "nope", "W")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestApplyMovement_WritesLedger(t *testing.T) {
	repo := NewPGRepository(testutil.NewTestDB(t))
	ctx := context.Background()
	rec := newRecord(t, repo, "X", "W", 0)

	st, err := repo.ApplyMovement(ctx, move(rec.ID, model.TransactionReceive, 10, false))
	require.NoError(t, err)
	assert.Equal(t, 0.0, st.QuantityBefore)
	assert.Equal(t, 10.0, st.QuantityAfter)
	assert.Equal(t, 10.0, st.Quantity)

	st, err = repo.ApplyMovement(ctx, move(rec.ID, model.TransactionIssue, -6, true))
	require.NoError(t, err)
	assert.Equal(t, 6.0, st.Quantity)
	assert.Equal(t, 4.0, st.QuantityAfter)

	txs, total, err := repo.ListTransactions(ctx, &dto.TransactionFilters{InventoryID: rec.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, txs, 2)

	delta, err := repo.LedgerDelta(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, delta)
}

func TestApplyMovement_GuardBlocksNegative(t *testing.T) {
	repo := NewPGRepository(testutil.NewTestDB(t))
	ctx := context.Background()
	rec := newRecord(t, repo, "X", "W", 0)
	_, err := repo.ApplyMovement(ctx, move(rec.ID, model.TransactionReceive, 4, false))
	require.NoError(t, err)

	_, err = repo.ApplyMovement(ctx, move(rec.ID, model.TransactionIssue, -5, true))
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.StockQty)

	_, total, err := repo.ListTransactions(ctx, &dto.TransactionFilters{InventoryID: rec.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// Without the guard the record may go negative.
	st, err := repo.ApplyMovement(ctx, move(rec.ID, model.TransactionIssue, -5, false))
	require.NoError(t, err)
	assert.Equal(t, -1.0, st.QuantityAfter)
}

func TestApplyMovement_UnknownRecord(t *testing.T) {
	repo := NewPGRepository(testutil.NewTestDB(t))

	_, err := repo.ApplyMovement(context.Background(), move("missing", model.TransactionReceive, 1, false))
	assert.ErrorIs(t, err, inventory.ErrRecordNotFound)
}

func TestApplyMovement_ConcurrentIssuesNoLostUpdate(t *testing.T) {
	repo := NewPGRepository(testutil.NewTestDB(t))
	ctx := context.Background()
	rec := newRecord(t, repo, "X", "W", 0)
	_, err := repo.ApplyMovement(ctx, move(rec.ID, model.TransactionReceive, 100, false))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ApplyMovement(ctx, move(rec.ID, model.TransactionIssue, -3, true))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, got.StockQty)

	delta, err := repo.LedgerDelta(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, got.StockQty, delta)
}

func TestTransfer_IsAtomic(t *testing.T) {
	repo := NewPGRepository(testutil.NewTestDB(t))
	ctx := context.Background()
	src := newRecord(t, repo, "X", "A", 0)
	dst := newRecord(t, repo, "X", "B", 0)
	_, err := repo.ApplyMovement(ctx, move(src.ID, model.TransactionReceive, 5, false))
	require.NoError(t, err)

	txs, err := repo.Transfer(ctx,
		move(src.ID, model.TransactionTransfer, -3, true),
		move(dst.ID, model.TransactionTransfer, 3, false))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, 2.0, txs[0].QuantityAfter)
	assert.Equal(t, 3.0, txs[1].QuantityAfter)

	_, err = repo.Transfer(ctx,
		move(src.ID, model.TransactionTransfer, -3, true),
		move(dst.ID, model.TransactionTransfer, 3, false))
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	// A failing destination rolls back the source decrement.
	_, err = repo.Transfer(ctx,
		move(src.ID, model.TransactionTransfer, -1, true),
		move("missing", model.TransactionTransfer, 1, false))
	assert.ErrorIs(t, err, inventory.ErrRecordNotFound)

	got, err := repo.GetByID(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.StockQty)
}

func TestFindAll_LowStockFilter(t *testing.T) {
	repo := NewPGRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	low := newRecord(t, repo, "LOW", "W", 5)
	_, err := repo.ApplyMovement(ctx, move(low.ID, model.TransactionReceive, 3, false))
	require.NoError(t, err)
	ok := newRecord(t, repo, "OK", "W", 5)
	_, err = repo.ApplyMovement(ctx, move(ok.ID, model.TransactionReceive, 30, false))
	require.NoError(t, err)
	newRecord(t, repo, "UNTRACKED", "W", 0)

	items, total, err := repo.FindAll(ctx, &dto.InventoryFilters{LowStock: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "LOW", items[0].Barcode)

	items, total, err = repo.FindAll(ctx, &dto.InventoryFilters{WarehouseName: "W", Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 2)
}

func TestFindExpiryTracked(t *testing.T) {
	repo := NewPGRepository(testutil.NewTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()
	expiry := now.AddDate(0, 0, 3)

	_, err := repo.Upsert(ctx, &model.InventoryRecord{
		ID: uuid.New().String(), Barcode: "MILK", ItemName: "Milk", WarehouseName: "W",
		ExpireDate: &expiry, ExpireDateAlert: 7, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	newRecord(t, repo, "BOLT", "W", 0)

	items, err := repo.FindExpiryTracked(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "MILK", items[0].Barcode)
	require.NotNil(t, items[0].ExpireDate)
}
