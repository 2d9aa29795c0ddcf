package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"threadsnet/model"
)

func (s *Store) ListSensitiveWords(ctx context.Context) ([]model.SensitiveWord, error) {
	defer s.lock()()

	words := make([]model.SensitiveWord, 0, len(s.data.words))
	for _, w := range s.data.words {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool { return words[i].CreatedAt.Before(words[j].CreatedAt) })
	return words, nil
}

func (s *Store) AddSensitiveWords(ctx context.Context, words []string) (int, error) {
	defer s.lock()()

	added := 0
	for _, w := range words {
		key := strings.ToLower(w)
		if _, ok := s.data.words[key]; ok {
			continue
		}
		s.data.words[key] = model.SensitiveWord{ID: uuid.New(), Word: w, CreatedAt: s.now()}
		added++
	}
	return added, nil
}

func (s *Store) DeleteSensitiveWord(ctx context.Context, word string) (bool, error) {
	defer s.lock()()

	key := strings.ToLower(word)
	if _, ok := s.data.words[key]; !ok {
		return false, nil
	}
	delete(s.data.words, key)
	return true, nil
}

func (s *Store) ListSettings(ctx context.Context) ([]model.SystemSettings, error) {
	defer s.lock()()

	settings := make([]model.SystemSettings, 0, len(s.data.settings))
	for _, st := range s.data.settings {
		settings = append(settings, st)
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].SettingKey < settings[j].SettingKey })
	return settings, nil
}

func (s *Store) UpdateSetting(ctx context.Context, key, value string, updatedAt time.Time) (bool, error) {
	defer s.lock()()

	st, ok := s.data.settings[key]
	if !ok {
		return false, nil
	}
	st.SettingValue = value
	st.UpdatedAt = updatedAt
	s.data.settings[key] = st
	return true, nil
}

func (s *Store) EnsureSettings(ctx context.Context, defaults []model.SystemSettings) error {
	defer s.lock()()

	for _, d := range defaults {
		if _, ok := s.data.settings[d.SettingKey]; ok {
			continue
		}
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		d.UpdatedAt = s.now()
		s.data.settings[d.SettingKey] = d
	}
	return nil
}
