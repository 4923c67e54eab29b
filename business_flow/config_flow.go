package businessflow

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/inmoventa/commission-engine/app/dto"
	"github.com/inmoventa/commission-engine/config"
	"github.com/inmoventa/commission-engine/models"
	"github.com/inmoventa/commission-engine/repository"
	"github.com/inmoventa/commission-engine/utils"
)

// ConfigFlow handles commission configuration business logic
type ConfigFlow interface {
	GetConfig(ctx context.Context, req *dto.GetConfigRequest, metadata *ClientMetadata) (*dto.GetConfigResponse, error)
	UpsertConfig(ctx context.Context, req *dto.UpsertConfigRequest, metadata *ClientMetadata) (*dto.UpsertConfigResponse, error)
	ListConfigs(ctx context.Context, metadata *ClientMetadata) (*dto.ListConfigsResponse, error)
	GetGlobalConfig(ctx context.Context, req *dto.GetGlobalConfigRequest, metadata *ClientMetadata) (*dto.GetGlobalConfigResponse, error)
	UpsertGlobalConfig(ctx context.Context, req *dto.UpsertGlobalConfigRequest, metadata *ClientMetadata) (*dto.UpsertGlobalConfigResponse, error)
	ListGlobalConfigs(ctx context.Context, metadata *ClientMetadata) (*dto.ListGlobalConfigsResponse, error)
}

// ConfigFlowImpl implements ConfigFlow
type ConfigFlowImpl struct {
	configRepo  repository.CommissionConfigRepository
	globalRepo  repository.GlobalConfigRepository
	rc          *redis.Client
	cacheConfig *config.CacheConfig
}

// NewConfigFlow creates a new config flow instance
func NewConfigFlow(
	configRepo repository.CommissionConfigRepository,
	globalRepo repository.GlobalConfigRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) ConfigFlow {
	return &ConfigFlowImpl{
		configRepo:  configRepo,
		globalRepo:  globalRepo,
		rc:          rc,
		cacheConfig: cacheConfig,
	}
}

func (f *ConfigFlowImpl) cacheEnabled() bool {
	return f.rc != nil && f.cacheConfig != nil && f.cacheConfig.Enabled
}

// GetConfig returns one development's commission configuration, reading
// through the cache. Lookups by any alias of the development resolve to the
// same row.
func (f *ConfigFlowImpl) GetConfig(ctx context.Context, req *dto.GetConfigRequest, metadata *ClientMetadata) (*dto.GetConfigResponse, error) {
	dev := models.NormalizeDevelopment(req.Development)
	if dev.IsZero() {
		return nil, ErrDevelopmentRequired
	}

	if f.cacheEnabled() {
		key := redisKey(*f.cacheConfig, utils.ConfigCacheKeyPrefix+dev.String())
		if bs, err := f.rc.Get(ctx, key).Bytes(); err == nil && len(bs) > 0 {
			var cached models.CommissionConfig
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &dto.GetConfigResponse{Config: ToConfigDTO(&cached)}, nil
			}
		}
	}

	cfg, err := f.configRepo.ByDevelopment(ctx, dev)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to fetch configuration", err)
	}
	if cfg == nil {
		return nil, ErrConfigNotFound
	}

	if f.cacheEnabled() {
		key := redisKey(*f.cacheConfig, utils.ConfigCacheKeyPrefix+dev.String())
		if bs, err := json.Marshal(cfg); err == nil {
			_ = f.rc.Set(ctx, key, bs, f.cacheConfig.DefaultTTL).Err()
		}
	}

	return &dto.GetConfigResponse{Config: ToConfigDTO(cfg)}, nil
}

// UpsertConfig creates or fully overwrites one development's configuration
func (f *ConfigFlowImpl) UpsertConfig(ctx context.Context, req *dto.UpsertConfigRequest, metadata *ClientMetadata) (*dto.UpsertConfigResponse, error) {
	dev := models.NormalizeDevelopment(req.Development)
	if dev.IsZero() {
		return nil, ErrDevelopmentRequired
	}

	percents := []float64{
		req.SalePercent, req.PostSalePercent,
		req.SaleManagerPercent, req.DealOwnerPercent, req.ExternalAdvisorPercent,
		req.PoolPercent, req.CustomerServicePercent, req.DeliveriesPercent, req.BondsPercent,
	}
	for _, p := range percents {
		if p < 0 || p > 100 {
			return nil, ErrPercentOutOfRange
		}
	}
	if req.PoolEnabled && req.PoolPercent <= 0 {
		return nil, ErrPoolPercentRequired
	}
	if (req.CustomerServiceEnabled && req.CustomerServicePercent <= 0) ||
		(req.DeliveriesEnabled && req.DeliveriesPercent <= 0) ||
		(req.BondsEnabled && req.BondsPercent <= 0) {
		return nil, ErrAddOnPercentRequired
	}

	cfg := &models.CommissionConfig{
		Development:            dev,
		SalePercent:            req.SalePercent,
		PostSalePercent:        req.PostSalePercent,
		SaleManagerPercent:     req.SaleManagerPercent,
		DealOwnerPercent:       req.DealOwnerPercent,
		ExternalAdvisorPercent: req.ExternalAdvisorPercent,
		PoolEnabled:            req.PoolEnabled,
		PoolPercent:            req.PoolPercent,
		CustomerServiceEnabled: req.CustomerServiceEnabled,
		CustomerServicePercent: req.CustomerServicePercent,
		DeliveriesEnabled:      req.DeliveriesEnabled,
		DeliveriesPercent:      req.DeliveriesPercent,
		BondsEnabled:           req.BondsEnabled,
		BondsPercent:           req.BondsPercent,
		UpdatedBy:              actorOf(metadata),
	}

	if err := f.configRepo.Upsert(ctx, cfg); err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to save configuration", err)
	}

	// Re-read so the response carries the row's persistent identity
	saved, err := f.configRepo.ByDevelopment(ctx, dev)
	if err != nil || saved == nil {
		saved = cfg
	}

	if f.cacheEnabled() {
		key := redisKey(*f.cacheConfig, utils.ConfigCacheKeyPrefix+dev.String())
		_ = f.rc.Del(ctx, key).Err()
	}

	return &dto.UpsertConfigResponse{
		Message: "Configuration saved successfully",
		Config:  ToConfigDTO(saved),
	}, nil
}

// ListConfigs returns every development's configuration
func (f *ConfigFlowImpl) ListConfigs(ctx context.Context, metadata *ClientMetadata) (*dto.ListConfigsResponse, error) {
	configs, err := f.configRepo.ByFilter(ctx, models.CommissionConfigFilter{}, "development", 0, 0)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list configurations", err)
	}

	out := make([]dto.ConfigDTO, 0, len(configs))
	for _, c := range configs {
		out = append(out, ToConfigDTO(c))
	}
	return &dto.ListConfigsResponse{Configs: out, Total: int64(len(out))}, nil
}

// GetGlobalConfig returns one indirect-role entry. Unknown keys are rejected;
// a known key that was never written reports a zero percent, matching the list.
func (f *ConfigFlowImpl) GetGlobalConfig(ctx context.Context, req *dto.GetGlobalConfigRequest, metadata *ClientMetadata) (*dto.GetGlobalConfigResponse, error) {
	if !models.IsValidGlobalConfigKey(req.Key) {
		return nil, ErrGlobalKeyNotFound
	}

	entry, err := f.globalRepo.ByKey(ctx, req.Key)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to fetch global configuration", err)
	}
	if entry == nil {
		return &dto.GetGlobalConfigResponse{Entry: dto.GlobalConfigDTO{Key: req.Key, Percent: 0}}, nil
	}
	return &dto.GetGlobalConfigResponse{Entry: ToGlobalConfigDTO(entry)}, nil
}

// UpsertGlobalConfig sets one indirect-role percent. Unknown keys are rejected.
func (f *ConfigFlowImpl) UpsertGlobalConfig(ctx context.Context, req *dto.UpsertGlobalConfigRequest, metadata *ClientMetadata) (*dto.UpsertGlobalConfigResponse, error) {
	if !models.IsValidGlobalConfigKey(req.Key) {
		return nil, ErrGlobalKeyNotFound
	}
	if req.Percent < 0 || req.Percent > 100 {
		return nil, ErrPercentOutOfRange
	}

	entry := &models.GlobalConfig{
		Key:       req.Key,
		Percent:   req.Percent,
		UpdatedBy: actorOf(metadata),
	}
	if err := f.globalRepo.Upsert(ctx, entry); err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to save global configuration", err)
	}

	saved, err := f.globalRepo.ByKey(ctx, req.Key)
	if err != nil || saved == nil {
		saved = entry
	}

	if f.cacheEnabled() {
		key := redisKey(*f.cacheConfig, utils.GlobalConfigCacheKey)
		_ = f.rc.Del(ctx, key).Err()
	}

	return &dto.UpsertGlobalConfigResponse{
		Message: "Global configuration saved successfully",
		Entry:   ToGlobalConfigDTO(saved),
	}, nil
}

// ListGlobalConfigs returns every global entry, reading through the cache.
// Keys never written yet are reported with a zero percent.
func (f *ConfigFlowImpl) ListGlobalConfigs(ctx context.Context, metadata *ClientMetadata) (*dto.ListGlobalConfigsResponse, error) {
	if f.cacheEnabled() {
		key := redisKey(*f.cacheConfig, utils.GlobalConfigCacheKey)
		if bs, err := f.rc.Get(ctx, key).Bytes(); err == nil && len(bs) > 0 {
			var cached []dto.GlobalConfigDTO
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &dto.ListGlobalConfigsResponse{Entries: cached}, nil
			}
		}
	}

	entries, err := f.globalRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list global configuration", err)
	}

	byKey := make(map[string]*models.GlobalConfig, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e
	}

	out := make([]dto.GlobalConfigDTO, 0, len(models.GlobalConfigKeys))
	for _, k := range models.GlobalConfigKeys {
		if e, ok := byKey[k]; ok {
			out = append(out, ToGlobalConfigDTO(e))
		} else {
			out = append(out, dto.GlobalConfigDTO{Key: k, Percent: 0})
		}
	}

	if f.cacheEnabled() {
		key := redisKey(*f.cacheConfig, utils.GlobalConfigCacheKey)
		if bs, err := json.Marshal(out); err == nil {
			_ = f.rc.Set(ctx, key, bs, f.cacheConfig.DefaultTTL).Err()
		}
	}

	return &dto.ListGlobalConfigsResponse{Entries: out}, nil
}
