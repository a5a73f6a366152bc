package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/alert"
	"github.com/fekuna/omnipos-stockroom/internal/alert/dto"
	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/fekuna/omnipos-stockroom/pkg/apperror"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/fekuna/omnipos-stockroom/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type alertUseCase struct {
	repo      alert.Repository
	inventory alert.InventoryReader
	settings  alert.RecipientSource
	notifier  alert.Notifier
	metrics   *metrics.Metrics
	logger    logger.ZapLogger
	now       func() time.Time
}

// NewAlertUseCase builds the alert engine. notifier may be nil, in which case
// alerts are only recorded.
func NewAlertUseCase(
	repo alert.Repository,
	inv alert.InventoryReader,
	settings alert.RecipientSource,
	notifier alert.Notifier,
	m *metrics.Metrics,
	log logger.ZapLogger,
) alert.UseCase {
	return &alertUseCase{
		repo:      repo,
		inventory: inv,
		settings:  settings,
		notifier:  notifier,
		metrics:   m,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *alertUseCase) RaiseNegativeStock(ctx context.Context, rec *model.InventoryRecord, requested float64) *model.AlertLog {
	msg := fmt.Sprintf("Negative stock attempt: requested %s of %s (%s) at %s, only %s available",
		formatQty(requested), rec.ItemName, rec.Barcode, rec.WarehouseName, formatQty(rec.StockQty))
	return uc.create(ctx, rec, model.AlertNegativeStock, model.PriorityHigh, msg)
}

// EvaluateLowStock checks rec, which must carry the post-update quantity.
// Repeated crossings each create a new alert.
func (uc *alertUseCase) EvaluateLowStock(ctx context.Context, rec *model.InventoryRecord) *model.AlertLog {
	if !rec.IsLowStock() {
		return nil
	}
	priority := model.PriorityMedium
	if rec.StockQty <= 0 {
		priority = model.PriorityHigh
	}
	msg := fmt.Sprintf("Low stock: %s (%s) at %s has %s left (alert level %s)",
		rec.ItemName, rec.Barcode, rec.WarehouseName, formatQty(rec.StockQty), formatQty(rec.StockAlertLevel))
	return uc.create(ctx, rec, model.AlertLowStock, priority, msg)
}

func (uc *alertUseCase) List(ctx context.Context, filters *dto.AlertFilters) ([]model.AlertLog, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *alertUseCase) Acknowledge(ctx context.Context, id, actor string) (*model.AlertLog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.Validation("alert id is required")
	}
	if actor == "" {
		return nil, apperror.Unauthorized("")
	}

	if _, err := uc.repo.Acknowledge(ctx, id, actor, uc.now()); err != nil {
		return nil, err
	}
	a, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperror.NotFound("alert")
	}
	return a, nil
}

// ListExpiring returns records whose expiry falls inside their alert window.
// It is a read-time query, independent of stock mutations.
func (uc *alertUseCase) ListExpiring(ctx context.Context, now time.Time) ([]model.InventoryRecord, error) {
	tracked, err := uc.inventory.FindExpiryTracked(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.InventoryRecord{}
	for _, rec := range tracked {
		if rec.ExpiresWithin(now) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (uc *alertUseCase) ScanExpiring(ctx context.Context, now time.Time) ([]model.AlertLog, error) {
	recs, err := uc.ListExpiring(ctx, now)
	if err != nil {
		return nil, err
	}

	created := []model.AlertLog{}
	for i := range recs {
		rec := &recs[i]
		priority := model.PriorityLow
		verb := "expires"
		if rec.IsExpired(now) {
			priority = model.PriorityHigh
			verb = "expired"
		}
		msg := fmt.Sprintf("Expiring: %s (%s) at %s %s on %s",
			rec.ItemName, rec.Barcode, rec.WarehouseName, verb, rec.ExpireDate.Format("2006-01-02"))
		if a := uc.create(ctx, rec, model.AlertExpiring, priority, msg); a != nil {
			created = append(created, *a)
		}
	}
	return created, nil
}

// create records the alert and queues its notification. Failures are logged
// and reported as a nil alert; they never reach the stock mutation caller.
func (uc *alertUseCase) create(ctx context.Context, rec *model.InventoryRecord, t model.AlertType, p model.Priority, msg string) *model.AlertLog {
	invID := rec.ID
	a := &model.AlertLog{
		ID:            uuid.New().String(),
		AlertType:     t,
		PriorityLevel: p,
		Message:       msg,
		InventoryID:   &invID,
		CreatedAt:     uc.now(),
	}

	if err := uc.repo.Create(ctx, a); err != nil {
		uc.logger.Error("failed to record alert",
			zap.String("alert_type", string(t)),
			zap.String("inventory_id", rec.ID),
			zap.Error(err),
		)
		return nil
	}
	uc.metrics.IncAlert(string(t), string(p))
	uc.logger.Info("alert created",
		zap.String("alert_id", a.ID),
		zap.String("alert_type", string(t)),
		zap.String("priority", string(p)),
		zap.String("barcode", rec.Barcode),
		zap.String("warehouse", rec.WarehouseName),
	)

	if uc.notifier != nil {
		recipients := uc.settings.AlertRecipients(ctx)
		if !uc.notifier.NotifyAlert(a, rec, recipients) {
			uc.logger.Warn("alert notification not queued", zap.String("alert_id", a.ID))
		}
	}
	return a
}

func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
