package persistence

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/integration/persistence/model"
)

const (
	settingSubscriptionFee = "subscription_fee_cents"
	settingsCachePrefix    = "circle:platform:"
	settingsCacheTTL       = time.Minute
)

// platformSettingsRepository implements adapter.PlatformSettings on the platform_settings
// table with an optional Redis read-through cache.
type platformSettingsRepository struct {
	db         *gorm.DB
	cache      *redis.Client
	defaultFee int64
}

// NewPlatformSettingsRepository creates a settings store. cache may be nil. defaultFee is
// returned until an operator sets a fee.
func NewPlatformSettingsRepository(db *gorm.DB, cache *redis.Client, defaultFee int64) adapter.PlatformSettings {
	return &platformSettingsRepository{
		db:         db,
		cache:      cache,
		defaultFee: defaultFee,
	}
}

// SubscriptionFeeCents returns the fee currently in force.
func (r *platformSettingsRepository) SubscriptionFeeCents(ctx context.Context) (int64, error) {
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, settingsCachePrefix+settingSubscriptionFee).Result()
		if err == nil {
			if fee, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
				return fee, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			slog.Warn("Platform settings cache read failed", "error", err)
		}
	}

	var setting model.PlatformSettingModel
	result := r.db.WithContext(ctx).Where("setting_key = ?", settingSubscriptionFee).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return r.defaultFee, nil
		}
		return 0, result.Error
	}

	fee, err := strconv.ParseInt(setting.Value, 10, 64)
	if err != nil {
		return 0, err
	}
	r.remember(ctx, fee)
	return fee, nil
}

// SetSubscriptionFeeCents upserts the fee and refreshes the cache.
func (r *platformSettingsRepository) SetSubscriptionFeeCents(ctx context.Context, cents int64) error {
	setting := &model.PlatformSettingModel{
		Key:       settingSubscriptionFee,
		Value:     strconv.FormatInt(cents, 10),
		UpdatedAt: time.Now().UTC(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(setting)
	if result.Error != nil {
		return result.Error
	}
	r.remember(ctx, cents)
	return nil
}

func (r *platformSettingsRepository) remember(ctx context.Context, fee int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, settingsCachePrefix+settingSubscriptionFee, fee, settingsCacheTTL).Err(); err != nil {
		slog.Warn("Platform settings cache write failed", "error", err)
	}
}
