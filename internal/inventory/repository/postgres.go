package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fekuna/omnipos-stockroom/internal/inventory"
	"github.com/fekuna/omnipos-stockroom/internal/inventory/dto"
	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PGRepository is written against PostgreSQL but sticks to SQL that SQLite
// also accepts; queries use `?` and are rebound for the active driver.
type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := r.DB.GetContext(ctx, &rec, r.DB.Rebind(`SELECT * FROM inventory WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PGRepository) GetByBarcode(ctx context.Context, barcode, warehouseName string) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	query := r.DB.Rebind(`SELECT * FROM inventory WHERE barcode = ? AND warehouse_name = ?`)
	err := r.DB.GetContext(ctx, &rec, query, barcode, warehouseName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.InventoryRecord, int, error) {
	items := []model.InventoryRecord{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.WarehouseName != "" {
		conditions = append(conditions, "warehouse_name = :warehouse_name")
		args["warehouse_name"] = f.WarehouseName
	}
	if f.Barcode != "" {
		conditions = append(conditions, "barcode = :barcode")
		args["barcode"] = f.Barcode
	}
	if f.LowStock {
		conditions = append(conditions, "stock_alert_level > 0 AND stock_qty <= stock_alert_level")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	if err := r.namedGet(ctx, &count, "SELECT count(*) FROM inventory"+whereClause, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory" + whereClause + " ORDER BY warehouse_name, barcode"
	query += pageClause(f.Page, f.PageSize)

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) FindExpiryTracked(ctx context.Context) ([]model.InventoryRecord, error) {
	items := []model.InventoryRecord{}
	query := `SELECT * FROM inventory WHERE expire_date IS NOT NULL AND expire_date_alert > 0 ORDER BY expire_date`
	err := r.DB.SelectContext(ctx, &items, query)
	return items, err
}

func (r *PGRepository) Upsert(ctx context.Context, rec *model.InventoryRecord) (*model.InventoryRecord, error) {
	query := `
        INSERT INTO inventory (
            id, barcode, item_name, warehouse_name,
            stock_qty, stock_alert_level, expire_date, expire_date_alert,
            created_at, updated_at
        )
        VALUES (
            :id, :barcode, :item_name, :warehouse_name,
            0, :stock_alert_level, :expire_date, :expire_date_alert,
            :created_at, :updated_at
        )
        ON CONFLICT (barcode, warehouse_name)
        DO UPDATE SET
            item_name = EXCLUDED.item_name,
            stock_alert_level = EXCLUDED.stock_alert_level,
            expire_date = EXCLUDED.expire_date,
            expire_date_alert = EXCLUDED.expire_date_alert,
            updated_at = EXCLUDED.updated_at
    `
	if _, err := r.DB.NamedExecContext(ctx, query, rec); err != nil {
		return nil, fmt.Errorf("failed to upsert inventory: %w", err)
	}
	return r.GetByBarcode(ctx, rec.Barcode, rec.WarehouseName)
}

func (r *PGRepository) ListTransactions(ctx context.Context, f *dto.TransactionFilters) ([]model.StockTransaction, int, error) {
	items := []model.StockTransaction{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.InventoryID != "" {
		conditions = append(conditions, "inventory_id = :inventory_id")
		args["inventory_id"] = f.InventoryID
	}
	if f.TransactionType != "" {
		conditions = append(conditions, "transaction_type = :transaction_type")
		args["transaction_type"] = f.TransactionType
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	if err := r.namedGet(ctx, &count, "SELECT count(*) FROM stock_transactions"+whereClause, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM stock_transactions" + whereClause + " ORDER BY transaction_date DESC"
	query += pageClause(f.Page, f.PageSize)

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) LedgerDelta(ctx context.Context, inventoryID string) (float64, error) {
	var total float64
	query := r.DB.Rebind(`SELECT COALESCE(SUM(quantity_after - quantity_before), 0) FROM stock_transactions WHERE inventory_id = ?`)
	if err := r.DB.GetContext(ctx, &total, query, inventoryID); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PGRepository) ApplyMovement(ctx context.Context, m *dto.Movement) (*model.StockTransaction, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	st, err := applyMovement(ctx, tx, m)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit movement: %w", err)
	}
	return st, nil
}

func (r *PGRepository) Transfer(ctx context.Context, out, in *dto.Movement) ([]model.StockTransaction, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	src, err := applyMovement(ctx, tx, out)
	if err != nil {
		return nil, err
	}
	dst, err := applyMovement(ctx, tx, in)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}
	return []model.StockTransaction{*src, *dst}, nil
}

// applyMovement updates stock_qty in a single statement so concurrent
// movements on the same record serialize on the row instead of overwriting
// each other, then appends the ledger row.
func applyMovement(ctx context.Context, tx *sqlx.Tx, m *dto.Movement) (*model.StockTransaction, error) {
	query := `UPDATE inventory SET stock_qty = stock_qty + ?, updated_at = ? WHERE id = ?`
	args := []interface{}{m.Delta, m.At, m.InventoryID}
	if m.GuardNegative {
		query += ` AND stock_qty + ? >= 0`
		args = append(args, m.Delta)
	}
	query += ` RETURNING stock_qty`

	var after float64
	err := tx.GetContext(ctx, &after, tx.Rebind(query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if m.GuardNegative {
				return nil, inventory.ErrInsufficientStock
			}
			return nil, inventory.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}

	st := &model.StockTransaction{
		ID:              uuid.New().String(),
		InventoryID:     m.InventoryID,
		TransactionType: m.Type,
		Quantity:        math.Abs(m.Delta),
		QuantityBefore:  after - m.Delta,
		QuantityAfter:   after,
		TransactionDate: m.At,
		ReferenceDoc:    m.ReferenceDoc,
		Reason:          m.Reason,
		ProcessedBy:     m.ProcessedBy,
	}

	insertQuery := `
        INSERT INTO stock_transactions (
            id, inventory_id, transaction_type, quantity,
            quantity_before, quantity_after, transaction_date,
            reference_doc, reason, processed_by
        )
        VALUES (
            :id, :inventory_id, :transaction_type, :quantity,
            :quantity_before, :quantity_after, :transaction_date,
            :reference_doc, :reason, :processed_by
        )
    `
	if _, err := tx.NamedExecContext(ctx, insertQuery, st); err != nil {
		return nil, fmt.Errorf("failed to log transaction: %w", err)
	}
	return st, nil
}

func (r *PGRepository) namedGet(ctx context.Context, dest interface{}, query string, args map[string]interface{}) error {
	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return err
	}
	defer nstmt.Close()
	return nstmt.GetContext(ctx, dest, args)
}

func pageClause(page, pageSize int) string {
	if pageSize <= 0 {
		return ""
	}
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)
}
