package services

import (
	"context"
	"time"

	apperrors "toolnav/internal/errors"
	"toolnav/internal/repository"
)

// publicSettingKeys is the whitelist served on the unauthenticated
// settings endpoint.
var publicSettingKeys = []string{
	"site_name",
	"site_description",
	"primary_color",
	"enable_registration",
	"enable_analytics",
	"links_per_page",
}

// SettingsService reads and writes the flat string-keyed site settings.
type SettingsService struct {
	settings repository.SettingRepository
	timeout  time.Duration
}

func NewSettingsService(settings repository.SettingRepository, timeout time.Duration) *SettingsService {
	return &SettingsService{settings: settings, timeout: timeout}
}

// All returns the full settings map. Admin-only.
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	settings, err := s.settings.All(ctx)
	if err != nil {
		return nil, storeError(err, "")
	}
	result := make(map[string]string, len(settings))
	for _, setting := range settings {
		result[setting.Key] = setting.Value
	}
	return result, nil
}

// Public returns only the whitelisted keys.
func (s *SettingsService) Public(ctx context.Context) (map[string]string, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(publicSettingKeys))
	for _, key := range publicSettingKeys {
		if value, ok := all[key]; ok {
			result[key] = value
		}
	}
	return result, nil
}

// Update upserts the submitted keys; untouched keys keep their values.
func (s *SettingsService) Update(ctx context.Context, values map[string]string) error {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	if len(values) == 0 {
		return apperrors.Validation("no settings submitted")
	}
	for key, value := range values {
		if key == "" {
			return apperrors.Validation("setting key must not be empty")
		}
		if err := s.settings.Upsert(ctx, key, value); err != nil {
			return storeError(err, "")
		}
	}
	return nil
}
