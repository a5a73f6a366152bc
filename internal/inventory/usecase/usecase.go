package usecase

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/inventory"
	"github.com/fekuna/omnipos-stockroom/internal/inventory/dto"
	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/fekuna/omnipos-stockroom/pkg/apperror"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/fekuna/omnipos-stockroom/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const openingBalanceReason = "opening balance"

type inventoryUseCase struct {
	repo     inventory.Repository
	alerts   inventory.AlertEngine
	settings inventory.SettingsReader
	metrics  *metrics.Metrics
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewInventoryUseCase(
	repo inventory.Repository,
	alerts inventory.AlertEngine,
	settings inventory.SettingsReader,
	m *metrics.Metrics,
	log logger.ZapLogger,
) inventory.UseCase {
	return &inventoryUseCase{
		repo:     repo,
		alerts:   alerts,
		settings: settings,
		metrics:  m,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *inventoryUseCase) Receive(ctx context.Context, input *dto.StockMovementInput) (*model.StockTransaction, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}

	rec, err := uc.loadRecord(ctx, input.Barcode, input.WarehouseName)
	if err != nil {
		return nil, err
	}

	st, err := uc.repo.ApplyMovement(ctx, &dto.Movement{
		InventoryID:  rec.ID,
		Type:         model.TransactionReceive,
		Delta:        input.Quantity,
		ReferenceDoc: input.ReferenceDoc,
		Reason:       input.Reason,
		ProcessedBy:  input.UserID,
		At:           uc.now(),
	})
	if err != nil {
		return nil, uc.movementFailed(string(model.TransactionReceive), err)
	}

	uc.metrics.IncMutation(string(model.TransactionReceive), "ok")
	uc.afterCommit(ctx, rec, st)
	return st, nil
}

func (uc *inventoryUseCase) Issue(ctx context.Context, input *dto.StockMovementInput) (*model.StockTransaction, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}

	rec, err := uc.loadRecord(ctx, input.Barcode, input.WarehouseName)
	if err != nil {
		return nil, err
	}

	block := uc.settings.PreventNegativeIssue(ctx)
	if rec.StockQty-input.Quantity < 0 {
		uc.alerts.RaiseNegativeStock(ctx, rec, input.Quantity)
		if block {
			uc.metrics.IncMutation(string(model.TransactionIssue), "blocked")
			return nil, insufficientStock(input.Quantity, rec.StockQty)
		}
		uc.logger.Warn("issuing below zero",
			zap.String("inventory_id", rec.ID),
			zap.Float64("available", rec.StockQty),
			zap.Float64("requested", input.Quantity),
		)
	}

	st, err := uc.repo.ApplyMovement(ctx, &dto.Movement{
		InventoryID:   rec.ID,
		Type:          model.TransactionIssue,
		Delta:         -input.Quantity,
		GuardNegative: block,
		ReferenceDoc:  input.ReferenceDoc,
		Reason:        input.Reason,
		ProcessedBy:   input.UserID,
		At:            uc.now(),
	})
	if errors.Is(err, inventory.ErrInsufficientStock) {
		return nil, uc.lostRace(ctx, string(model.TransactionIssue), rec, input.Quantity)
	}
	if err != nil {
		return nil, uc.movementFailed(string(model.TransactionIssue), err)
	}

	uc.metrics.IncMutation(string(model.TransactionIssue), "ok")
	uc.afterCommit(ctx, rec, st)
	return st, nil
}

func (uc *inventoryUseCase) Transfer(ctx context.Context, input *dto.TransferInput) ([]model.StockTransaction, error) {
	input.Barcode = strings.TrimSpace(input.Barcode)
	input.FromWarehouse = strings.TrimSpace(input.FromWarehouse)
	input.ToWarehouse = strings.TrimSpace(input.ToWarehouse)
	switch {
	case input.Barcode == "":
		return nil, apperror.Validation("barcode is required")
	case input.FromWarehouse == "" || input.ToWarehouse == "":
		return nil, apperror.Validation("fromWarehouse and toWarehouse are required")
	case input.FromWarehouse == input.ToWarehouse:
		return nil, apperror.Validation("fromWarehouse and toWarehouse must differ")
	}
	if err := validateQuantity(input.Quantity); err != nil {
		return nil, err
	}

	src, err := uc.loadRecord(ctx, input.Barcode, input.FromWarehouse)
	if err != nil {
		return nil, err
	}
	dst, err := uc.loadRecord(ctx, input.Barcode, input.ToWarehouse)
	if err != nil {
		return nil, err
	}

	block := uc.settings.PreventNegativeIssue(ctx)
	if src.StockQty-input.Quantity < 0 {
		uc.alerts.RaiseNegativeStock(ctx, src, input.Quantity)
		if block {
			uc.metrics.IncMutation(string(model.TransactionTransfer), "blocked")
			return nil, insufficientStock(input.Quantity, src.StockQty)
		}
	}

	at := uc.now()
	out := &dto.Movement{
		InventoryID:   src.ID,
		Type:          model.TransactionTransfer,
		Delta:         -input.Quantity,
		GuardNegative: block,
		ReferenceDoc:  input.ReferenceDoc,
		Reason:        transferReason(input.Reason, "to "+dst.WarehouseName),
		ProcessedBy:   input.UserID,
		At:            at,
	}
	in := &dto.Movement{
		InventoryID:  dst.ID,
		Type:         model.TransactionTransfer,
		Delta:        input.Quantity,
		ReferenceDoc: input.ReferenceDoc,
		Reason:       transferReason(input.Reason, "from "+src.WarehouseName),
		ProcessedBy:  input.UserID,
		At:           at,
	}

	rows, err := uc.repo.Transfer(ctx, out, in)
	if errors.Is(err, inventory.ErrInsufficientStock) {
		return nil, uc.lostRace(ctx, string(model.TransactionTransfer), src, input.Quantity)
	}
	if err != nil {
		return nil, uc.movementFailed(string(model.TransactionTransfer), err)
	}

	uc.metrics.IncMutation(string(model.TransactionTransfer), "ok")
	uc.afterCommit(ctx, src, &rows[0])
	uc.afterCommit(ctx, dst, &rows[1])
	return rows, nil
}

func (uc *inventoryUseCase) Adjust(ctx context.Context, input *dto.AdjustInput) (*model.StockTransaction, error) {
	input.Barcode = strings.TrimSpace(input.Barcode)
	input.WarehouseName = strings.TrimSpace(input.WarehouseName)
	input.Reason = strings.TrimSpace(input.Reason)
	switch {
	case input.Barcode == "":
		return nil, apperror.Validation("barcode is required")
	case input.WarehouseName == "":
		return nil, apperror.Validation("warehouseName is required")
	case input.Delta == 0 || math.IsNaN(input.Delta) || math.IsInf(input.Delta, 0):
		return nil, apperror.Validation("delta must be a non-zero number")
	case input.Reason == "":
		return nil, apperror.Validation("reason is required for adjustments")
	}

	rec, err := uc.loadRecord(ctx, input.Barcode, input.WarehouseName)
	if err != nil {
		return nil, err
	}

	st, err := uc.repo.ApplyMovement(ctx, &dto.Movement{
		InventoryID:  rec.ID,
		Type:         model.TransactionAdjustment,
		Delta:        input.Delta,
		ReferenceDoc: input.ReferenceDoc,
		Reason:       input.Reason,
		ProcessedBy:  input.UserID,
		At:           uc.now(),
	})
	if err != nil {
		return nil, uc.movementFailed(string(model.TransactionAdjustment), err)
	}

	uc.metrics.IncMutation(string(model.TransactionAdjustment), "ok")
	uc.afterCommit(ctx, rec, st)
	return st, nil
}

// RegisterRecord creates a record, or updates the descriptive fields of an
// existing one. The opening quantity is booked as a receive on creation only.
func (uc *inventoryUseCase) RegisterRecord(ctx context.Context, input *dto.RegisterRecordInput) (*model.InventoryRecord, error) {
	input.Barcode = strings.TrimSpace(input.Barcode)
	input.ItemName = strings.TrimSpace(input.ItemName)
	input.WarehouseName = strings.TrimSpace(input.WarehouseName)
	switch {
	case input.Barcode == "":
		return nil, apperror.Validation("barcode is required")
	case input.ItemName == "":
		return nil, apperror.Validation("itemName is required")
	case input.WarehouseName == "":
		return nil, apperror.Validation("warehouseName is required")
	case input.StockAlertLevel < 0 || math.IsNaN(input.StockAlertLevel):
		return nil, apperror.Validation("stockAlertLevel must not be negative")
	case input.ExpireDateAlert < 0:
		return nil, apperror.Validation("expireDateAlert must not be negative")
	case input.OpeningQty < 0 || math.IsNaN(input.OpeningQty) || math.IsInf(input.OpeningQty, 0):
		return nil, apperror.Validation("openingQty must be a non-negative number")
	}

	now := uc.now()
	newID := uuid.New().String()
	rec, err := uc.repo.Upsert(ctx, &model.InventoryRecord{
		ID:              newID,
		Barcode:         input.Barcode,
		ItemName:        input.ItemName,
		WarehouseName:   input.WarehouseName,
		StockAlertLevel: input.StockAlertLevel,
		ExpireDate:      input.ExpireDate,
		ExpireDateAlert: input.ExpireDateAlert,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if rec == nil {
		return nil, apperror.Internal(errors.New("upserted record not readable"))
	}

	if rec.ID != newID || input.OpeningQty == 0 {
		return rec, nil
	}

	st, err := uc.repo.ApplyMovement(ctx, &dto.Movement{
		InventoryID: rec.ID,
		Type:        model.TransactionReceive,
		Delta:       input.OpeningQty,
		Reason:      openingBalanceReason,
		ProcessedBy: input.UserID,
		At:          now,
	})
	if err != nil {
		return nil, uc.movementFailed(string(model.TransactionReceive), err)
	}
	uc.metrics.IncMutation(string(model.TransactionReceive), "ok")
	uc.afterCommit(ctx, rec, st)
	return rec, nil
}

func (uc *inventoryUseCase) GetRecord(ctx context.Context, id string) (*model.InventoryRecord, error) {
	rec, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if rec == nil {
		return nil, apperror.NotFound("inventory record")
	}
	return rec, nil
}

func (uc *inventoryUseCase) ListRecords(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryRecord, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *inventoryUseCase) ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]model.StockTransaction, int, error) {
	if filters.InventoryID != "" {
		if _, err := uc.GetRecord(ctx, filters.InventoryID); err != nil {
			return nil, 0, err
		}
	}
	return uc.repo.ListTransactions(ctx, filters)
}

// Reconcile replays the ledger of a record and compares it with the stored
// quantity. Records start at zero, so the replay is the sum of deltas.
func (uc *inventoryUseCase) Reconcile(ctx context.Context, id string) (*dto.Reconciliation, error) {
	rec, err := uc.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	ledger, err := uc.repo.LedgerDelta(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &dto.Reconciliation{
		InventoryID: rec.ID,
		StockQty:    rec.StockQty,
		LedgerQty:   ledger,
		Consistent:  math.Abs(rec.StockQty-ledger) < 1e-9,
	}, nil
}

func (uc *inventoryUseCase) loadRecord(ctx context.Context, barcode, warehouseName string) (*model.InventoryRecord, error) {
	rec, err := uc.repo.GetByBarcode(ctx, barcode, warehouseName)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if rec == nil {
		return nil, apperror.NotFound("inventory record")
	}
	return rec, nil
}

// afterCommit runs the post-update low-stock check on the committed quantity.
func (uc *inventoryUseCase) afterCommit(ctx context.Context, rec *model.InventoryRecord, st *model.StockTransaction) {
	updated := *rec
	updated.StockQty = st.QuantityAfter
	updated.UpdatedAt = st.TransactionDate

	uc.logger.Info("stock movement recorded",
		zap.String("transaction_id", st.ID),
		zap.String("inventory_id", rec.ID),
		zap.String("type", string(st.TransactionType)),
		zap.Float64("quantity_after", st.QuantityAfter),
	)
	uc.alerts.EvaluateLowStock(ctx, &updated)
}

// lostRace handles a guarded update that matched no row: another movement
// consumed the stock after the pre-check.
func (uc *inventoryUseCase) lostRace(ctx context.Context, kind string, rec *model.InventoryRecord, requested float64) error {
	current := *rec
	if fresh, err := uc.repo.GetByID(ctx, rec.ID); err == nil && fresh != nil {
		current = *fresh
	}
	if rec.StockQty-requested >= 0 {
		uc.alerts.RaiseNegativeStock(ctx, &current, requested)
	}
	uc.metrics.IncMutation(kind, "blocked")
	return insufficientStock(requested, current.StockQty)
}

func (uc *inventoryUseCase) movementFailed(kind string, err error) error {
	uc.metrics.IncMutation(kind, "error")
	if errors.Is(err, inventory.ErrRecordNotFound) {
		return apperror.NotFound("inventory record")
	}
	return apperror.Internal(err)
}

func validateMovement(input *dto.StockMovementInput) error {
	input.Barcode = strings.TrimSpace(input.Barcode)
	input.WarehouseName = strings.TrimSpace(input.WarehouseName)
	if input.Barcode == "" {
		return apperror.Validation("barcode is required")
	}
	if input.WarehouseName == "" {
		return apperror.Validation("warehouseName is required")
	}
	return validateQuantity(input.Quantity)
}

func validateQuantity(q float64) error {
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return apperror.Validation("quantity must be a positive number")
	}
	return nil
}

func insufficientStock(requested, available float64) error {
	return apperror.Validationf("insufficient stock: requested %s, available %s",
		strconv.FormatFloat(requested, 'f', -1, 64),
		strconv.FormatFloat(available, 'f', -1, 64))
}

func transferReason(reason, leg string) string {
	if reason == "" {
		return "transfer " + leg
	}
	return reason + " (transfer " + leg + ")"
}
