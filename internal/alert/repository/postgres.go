package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/alert/dto"
	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, a *model.AlertLog) error {
	query := `
        INSERT INTO alert_logs (
            id, alert_type, priority_level, message, inventory_id,
            acknowledged, acknowledged_by, acknowledged_at, created_at
        )
        VALUES (
            :id, :alert_type, :priority_level, :message, :inventory_id,
            :acknowledged, :acknowledged_by, :acknowledged_at, :created_at
        )
    `
	if _, err := r.DB.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.AlertLog, error) {
	var a model.AlertLog
	err := r.DB.GetContext(ctx, &a, r.DB.Rebind(`SELECT * FROM alert_logs WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.AlertFilters) ([]model.AlertLog, int, error) {
	items := []model.AlertLog{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Acknowledged != nil {
		conditions = append(conditions, "acknowledged = :acknowledged")
		args["acknowledged"] = *f.Acknowledged
	}
	if f.AlertType != "" {
		conditions = append(conditions, "alert_type = :alert_type")
		args["alert_type"] = f.AlertType
	}
	if f.InventoryID != "" {
		conditions = append(conditions, "inventory_id = :inventory_id")
		args["inventory_id"] = f.InventoryID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	cstmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM alert_logs"+whereClause)
	if err != nil {
		return nil, 0, err
	}
	defer cstmt.Close()
	if err := cstmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM alert_logs" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) Acknowledge(ctx context.Context, id, actor string, at time.Time) (bool, error) {
	query := r.DB.Rebind(`
        UPDATE alert_logs
        SET acknowledged = ?, acknowledged_by = ?, acknowledged_at = ?
        WHERE id = ? AND acknowledged = ?
    `)
	res, err := r.DB.ExecContext(ctx, query, true, actor, at, id, false)
	if err != nil {
		return false, fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
