package usecase

import (
	"context"
	"encoding/json"
	"net/mail"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/fekuna/omnipos-stockroom/internal/setting"
	"github.com/fekuna/omnipos-stockroom/pkg/apperror"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "settings:"

// Cache is the read-through cache in front of the settings table.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type settingUseCase struct {
	repo   setting.Repository
	cache  Cache
	ttl    time.Duration
	logger logger.ZapLogger
}

// NewSettingUseCase wires the store. cache may be nil to read the table
// directly.
func NewSettingUseCase(repo setting.Repository, cache Cache, ttl time.Duration, log logger.ZapLogger) setting.UseCase {
	return &settingUseCase{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

func (uc *settingUseCase) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if uc.cache != nil {
		val, ok, err := uc.cache.Get(ctx, cacheKeyPrefix+key)
		if err != nil {
			uc.logger.Warn("settings cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return json.RawMessage(val), true, nil
		}
	}

	s, err := uc.repo.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if s == nil {
		return nil, false, nil
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, cacheKeyPrefix+key, s.Value, uc.ttl); err != nil {
			uc.logger.Warn("settings cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return json.RawMessage(s.Value), true, nil
}

func (uc *settingUseCase) Set(ctx context.Context, key string, value json.RawMessage) (*model.AppSetting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperror.Validation("setting key is required")
	}
	if !json.Valid(value) {
		return nil, apperror.Validation("setting value must be valid JSON")
	}
	if err := validateKnown(key, value); err != nil {
		return nil, err
	}

	s := &model.AppSetting{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now().UTC(),
	}
	if err := uc.repo.Upsert(ctx, s); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, cacheKeyPrefix+key); err != nil {
			uc.logger.Warn("settings cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
	uc.logger.Info("setting updated", zap.String("key", key))
	return s, nil
}

func (uc *settingUseCase) List(ctx context.Context) ([]model.AppSetting, error) {
	return uc.repo.FindAll(ctx)
}

// PreventNegativeIssue defaults to true when the key is absent or unreadable.
func (uc *settingUseCase) PreventNegativeIssue(ctx context.Context) bool {
	raw, ok, err := uc.Get(ctx, model.SettingPreventNegativeIssue)
	if err != nil {
		uc.logger.Warn("failed to read setting, using default",
			zap.String("key", model.SettingPreventNegativeIssue), zap.Error(err))
		return true
	}
	if !ok {
		return true
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	return v
}

// AlertRecipients defaults to an empty list when the key is absent or
// malformed.
func (uc *settingUseCase) AlertRecipients(ctx context.Context) []string {
	raw, ok, err := uc.Get(ctx, model.SettingAlertRecipients)
	if err != nil {
		uc.logger.Warn("failed to read setting, using default",
			zap.String("key", model.SettingAlertRecipients), zap.Error(err))
		return []string{}
	}
	if !ok {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, r := range list {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func validateKnown(key string, value json.RawMessage) error {
	switch key {
	case model.SettingPreventNegativeIssue:
		var v bool
		if err := json.Unmarshal(value, &v); err != nil {
			return apperror.Validationf("%s must be a boolean", key)
		}
	case model.SettingAlertRecipients:
		var list []string
		if err := json.Unmarshal(value, &list); err != nil {
			return apperror.Validationf("%s must be a list of e-mail addresses", key)
		}
		for _, addr := range list {
			if _, err := mail.ParseAddress(addr); err != nil {
				return apperror.Validationf("invalid recipient %q", addr)
			}
		}
	}
	return nil
}
