package setting

import (
	"context"
	"encoding/json"

	"github.com/fekuna/omnipos-stockroom/internal/model"
)

type UseCase interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Set(ctx context.Context, key string, value json.RawMessage) (*model.AppSetting, error)
	List(ctx context.Context) ([]model.AppSetting, error)

	// Typed readers. They fall back to defaults on any error.
	PreventNegativeIssue(ctx context.Context) bool
	AlertRecipients(ctx context.Context) []string
}
