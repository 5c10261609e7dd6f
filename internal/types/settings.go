package types

import "strings"

type Settings struct {
	AutoRecord         bool         `json:"auto_record"`
	DefaultDurationMin int          `json:"default_duration_min,omitempty"`
	CalendarFeed       string       `json:"calendar_feed,omitempty"`
	CoachingEnabled    bool         `json:"coaching_enabled"`
	CoachingType       CoachingType `json:"coaching_type,omitempty"`
	Language           string       `json:"language,omitempty"`
}

type SettingsPatch struct {
	AutoRecord         *bool   `json:"auto_record,omitempty"`
	DefaultDurationMin *int    `json:"default_duration_min,omitempty"`
	CalendarFeed       *string `json:"calendar_feed,omitempty"`
	CoachingEnabled    *bool   `json:"coaching_enabled,omitempty"`
	CoachingType       *string `json:"coaching_type,omitempty"`
	Language           *string `json:"language,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		AutoRecord:         false,
		DefaultDurationMin: DefaultMeetingDurationMin,
		CoachingEnabled:    false,
		CoachingType:       CoachingTypeGeneral,
		Language:           "en",
	}
}

func MergeSettings(base Settings, patch *SettingsPatch) Settings {
	out := base
	if patch == nil {
		return NormalizeSettings(out)
	}
	if patch.AutoRecord != nil {
		out.AutoRecord = *patch.AutoRecord
	}
	if patch.DefaultDurationMin != nil {
		out.DefaultDurationMin = *patch.DefaultDurationMin
	}
	if patch.CalendarFeed != nil {
		out.CalendarFeed = strings.TrimSpace(*patch.CalendarFeed)
	}
	if patch.CoachingEnabled != nil {
		out.CoachingEnabled = *patch.CoachingEnabled
	}
	if patch.CoachingType != nil {
		if normalized, ok := NormalizeCoachingType(*patch.CoachingType); ok {
			out.CoachingType = normalized
		}
	}
	if patch.Language != nil {
		out.Language = strings.TrimSpace(*patch.Language)
	}
	return NormalizeSettings(out)
}

func NormalizeSettings(in Settings) Settings {
	out := in
	if out.DefaultDurationMin <= 0 {
		out.DefaultDurationMin = DefaultSettings().DefaultDurationMin
	}
	if _, ok := NormalizeCoachingType(string(out.CoachingType)); !ok {
		out.CoachingType = DefaultSettings().CoachingType
	}
	if strings.TrimSpace(out.Language) == "" {
		out.Language = DefaultSettings().Language
	}
	return out
}
