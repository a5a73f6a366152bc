package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Get(ctx context.Context, key string) (*model.AppSetting, error) {
	var s model.AppSetting
	err := r.DB.GetContext(ctx, &s, r.DB.Rebind(`SELECT * FROM app_settings WHERE key = ?`), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.AppSetting, error) {
	items := []model.AppSetting{}
	err := r.DB.SelectContext(ctx, &items, `SELECT * FROM app_settings ORDER BY key`)
	return items, err
}

func (r *PGRepository) Upsert(ctx context.Context, s *model.AppSetting) error {
	query := `
        INSERT INTO app_settings (key, value, updated_at)
        VALUES (:key, :value, :updated_at)
        ON CONFLICT (key)
        DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = EXCLUDED.updated_at
    `
	if _, err := r.DB.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}
