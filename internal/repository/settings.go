package repository

import (
	"encoding/json"
	"fmt"

	"go-pos-local/internal/models"
)

type SettingsRepo struct {
	repo *Repositories
}

// Get returns the stored settings, or the defaults when none were saved.
func (s *SettingsRepo) Get() models.Settings {
	settings := models.DefaultSettings()
	if !s.repo.Store.GetObject(KeySettings, &settings) {
		return models.DefaultSettings()
	}
	return settings
}

// Update merges fields into the current settings and stamps updated_at.
func (s *SettingsRepo) Update(fields map[string]any) (models.Settings, error) {
	current, err := json.Marshal(s.Get())
	if err != nil {
		return models.Settings{}, err
	}
	merged := map[string]any{}
	if err := json.Unmarshal(current, &merged); err != nil {
		return models.Settings{}, err
	}
	for k, v := range withoutKeys(fields, "id", "updated_at") {
		merged[k] = v
	}
	b, err := json.Marshal(merged)
	if err != nil {
		return models.Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var next models.Settings
	if err := json.Unmarshal(b, &next); err != nil {
		return models.Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	next.UpdatedAt = s.repo.now().UTC()
	if err := s.Put(next); err != nil {
		return models.Settings{}, err
	}
	return next, nil
}

func (s *SettingsRepo) Put(settings models.Settings) error {
	return s.repo.Store.PutObject(KeySettings, settings)
}
