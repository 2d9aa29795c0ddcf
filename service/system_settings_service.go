package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"threadsnet/model"
	"threadsnet/repository"
)

// SystemSettingsService 系统配置服务，配置缓存在内存中
type SystemSettingsService struct {
	repo            repository.SettingsRepository
	settingsCache   map[string]string
	settingsCacheMu sync.RWMutex
}

func NewSystemSettingsService(repo repository.SettingsRepository) *SystemSettingsService {
	return &SystemSettingsService{
		repo:          repo,
		settingsCache: make(map[string]string),
	}
}

// Init 写入缺省配置并加载缓存
func (s *SystemSettingsService) Init(ctx context.Context) error {
	if err := s.repo.EnsureSettings(ctx, model.DefaultSettings()); err != nil {
		return err
	}
	return s.LoadSettings(ctx)
}

// LoadSettings 从存储加载所有配置到内存缓存
func (s *SystemSettingsService) LoadSettings(ctx context.Context) error {
	settings, err := s.repo.ListSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load system settings: %w", err)
	}

	s.settingsCacheMu.Lock()
	defer s.settingsCacheMu.Unlock()

	s.settingsCache = make(map[string]string, len(settings))
	for _, setting := range settings {
		s.settingsCache[setting.SettingKey] = setting.SettingValue
	}

	zap.L().Debug("system settings loaded", zap.Int("count", len(settings)))
	return nil
}

// GetSetting 获取配置值（从缓存）
func (s *SystemSettingsService) GetSetting(key string) (string, bool) {
	s.settingsCacheMu.RLock()
	defer s.settingsCacheMu.RUnlock()

	value, exists := s.settingsCache[key]
	return value, exists
}

// GetBoolSetting 获取布尔类型配置
func (s *SystemSettingsService) GetBoolSetting(key string, defaultValue bool) bool {
	value, exists := s.GetSetting(key)
	if !exists {
		return defaultValue
	}
	return value == "true"
}

// IsFeatureEnabled 检查功能是否启用，未配置的开关默认开启
func (s *SystemSettingsService) IsFeatureEnabled(featureKey string) bool {
	if s == nil {
		return true
	}
	return s.GetBoolSetting(featureKey, true)
}

// UpdateSetting 更新配置（同时更新存储和缓存）
func (s *SystemSettingsService) UpdateSetting(ctx context.Context, key, value string) error {
	if err := validateSetting(key, value); err != nil {
		return err
	}

	updated, err := s.repo.UpdateSetting(ctx, key, value, time.Now())
	if err != nil {
		return WrapError(KindInternal, "failed to update setting", err)
	}
	if !updated {
		return NewError(KindNotFound, fmt.Sprintf("setting key not found: %s", key))
	}

	s.settingsCacheMu.Lock()
	s.settingsCache[key] = value
	s.settingsCacheMu.Unlock()

	zap.L().Info("system setting updated", zap.String("key", key), zap.String("value", value))
	return nil
}

func validateSetting(key, value string) error {
	switch key {
	case model.SettingReplyOwnershipPolicy:
		if value != "" && !ReplyOwnershipPolicy(value).Valid() {
			return NewError(KindValidation, "value must be 'reply_author' or 'comment_author'")
		}
	default:
		if value != "true" && value != "false" {
			return NewError(KindValidation, "value must be 'true' or 'false'")
		}
	}
	return nil
}

// GetAllSettings 获取所有配置
func (s *SystemSettingsService) GetAllSettings() map[string]string {
	s.settingsCacheMu.RLock()
	defer s.settingsCacheMu.RUnlock()

	result := make(map[string]string, len(s.settingsCache))
	for k, v := range s.settingsCache {
		result[k] = v
	}
	return result
}
