// Package postgres stores voice settings in the site's Postgres database,
// in the single-row voice_settings table.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vsurfcode/portfolio-voice/core/settings"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const settingsRowID = 1

const (
	selectSettingsSQL = `SELECT voice, use_tts FROM voice_settings WHERE id = $1`
	upsertSettingsSQL = `INSERT INTO voice_settings (id, voice, use_tts, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (id) DO UPDATE SET voice = EXCLUDED.voice, use_tts = EXCLUDED.use_tts, updated_at = EXCLUDED.updated_at`
)

// Querier is the subset of a pgx pool or connection the store uses.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	db Querier
}

func NewStore(db Querier) *Store {
	return &Store{db: db}
}

// VoiceSettings reads the configured settings. A missing row or NULL columns
// resolve to [settings.Default] values.
func (s *Store) VoiceSettings(ctx context.Context) (settings.VoiceSettings, error) {
	ctx, span := tracer.Start(ctx, "load voice settings")
	defer span.End()

	var voice *string
	var useTTS *bool
	err := s.db.QueryRow(ctx, selectSettingsSQL, settingsRowID).Scan(&voice, &useTTS)
	if errors.Is(err, pgx.ErrNoRows) {
		span.AddEvent("no settings row, using defaults")
		return settings.Default(), nil
	} else if err != nil {
		err = fmt.Errorf("failed to query voice settings: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return settings.Default(), err
	}

	result := settings.Default()
	if voice != nil && *voice != "" {
		result.Voice = settings.Voice(*voice)
	}
	if useTTS != nil {
		result.UseHighQualityTTS = *useTTS
	}

	if err := result.Validate(); err != nil {
		logger.WarnContext(ctx, "stored voice is not recognised, using default", "voice", result.Voice)
		result.Voice = settings.DefaultVoice
	}

	span.SetAttributes(
		attribute.String("settings.voice", result.Voice.String()),
		attribute.Bool("settings.use_tts", result.UseHighQualityTTS),
	)
	return result, nil
}

// Save validates and stores the settings.
func (s *Store) Save(ctx context.Context, voiceSettings settings.VoiceSettings) error {
	ctx, span := tracer.Start(ctx, "save voice settings")
	defer span.End()

	if err := voiceSettings.Validate(); err != nil {
		span.RecordError(err)
		return err
	}

	if _, err := s.db.Exec(ctx, upsertSettingsSQL, settingsRowID, string(voiceSettings.Voice), voiceSettings.UseHighQualityTTS); err != nil {
		err = fmt.Errorf("failed to save voice settings: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
