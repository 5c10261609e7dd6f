package store

import (
	"context"

	"recap/internal/types"
)

// SettingsStore persists the single app-wide settings document. Load
// returns defaults when nothing has been saved yet.
type SettingsStore interface {
	Load(ctx context.Context) (types.Settings, error)
	Save(ctx context.Context, settings types.Settings) error
}
