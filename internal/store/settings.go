package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/sadopc/macrotrend/internal/trend"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// DefaultPreferences mirrors the values seeded by the v1 migration.
func DefaultPreferences() Preferences {
	return Preferences{
		Goal:                "maintain",
		Unit:                "kg",
		DefaultRange:        "1M",
		VolatilityThreshold: 0.05,
		StabilityThreshold:  0.5,
		EmptyRangeFallback:  "full",
		CalorieTarget:       2000,
	}
}

// LoadPreferences reads the settings table into Preferences. Missing or
// unparsable values keep their defaults.
func (s *Store) LoadPreferences() (Preferences, error) {
	p := DefaultPreferences()
	settings, err := s.GetAllSettings()
	if err != nil {
		return p, err
	}
	for _, kv := range settings {
		switch kv.Key {
		case "goal":
			p.Goal = kv.Value
		case "unit":
			p.Unit = kv.Value
		case "default_range":
			p.DefaultRange = kv.Value
		case "empty_range_fallback":
			p.EmptyRangeFallback = kv.Value
		case "volatility_threshold":
			if f, err := strconv.ParseFloat(kv.Value, 64); err == nil && f > 0 {
				p.VolatilityThreshold = f
			}
		case "stability_threshold":
			if f, err := strconv.ParseFloat(kv.Value, 64); err == nil && f > 0 {
				p.StabilityThreshold = f
			}
		case "calorie_target":
			if f, err := strconv.ParseFloat(kv.Value, 64); err == nil && f > 0 {
				p.CalorieTarget = f
			}
		}
	}
	return p, nil
}

func (s *Store) SavePreferences(p Preferences) error {
	kv := []Setting{
		{"goal", p.Goal},
		{"unit", p.Unit},
		{"default_range", p.DefaultRange},
		{"empty_range_fallback", p.EmptyRangeFallback},
		{"volatility_threshold", strconv.FormatFloat(p.VolatilityThreshold, 'f', -1, 64)},
		{"stability_threshold", strconv.FormatFloat(p.StabilityThreshold, 'f', -1, 64)},
		{"calorie_target", strconv.FormatFloat(p.CalorieTarget, 'f', -1, 64)},
	}
	for _, setting := range kv {
		if err := s.SetSetting(setting.Key, setting.Value); err != nil {
			return fmt.Errorf("save setting %q: %w", setting.Key, err)
		}
	}
	return nil
}

// TrendConfig builds the engine tuning for a series displayed in unit. The
// goal only applies to the weight series; nutrition charts pass their own.
func (p Preferences) TrendConfig(goal trend.Goal, unit string) trend.Config {
	return trend.Config{
		Goal:                goal,
		Unit:                unit,
		VolatilityThreshold: p.VolatilityThreshold,
		StabilityThreshold:  p.StabilityThreshold,
		Fallback:            trend.ParseFallback(p.EmptyRangeFallback),
	}
}
