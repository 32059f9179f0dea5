package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spf13/cobra"
	"github.com/vsurfcode/portfolio-voice/core/settings"
	settingspostgres "github.com/vsurfcode/portfolio-voice/core/settings/postgres"
)

type settingsRow struct {
	voice  *string
	useTTS *bool
	err    error
}

func (r settingsRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(**string)) = r.voice
	*(dest[1].(**bool)) = r.useTTS
	return nil
}

type fakeQuerier struct {
	row      settingsRow
	execArgs []any
}

func (q *fakeQuerier) QueryRow(context.Context, string, ...any) pgx.Row { return q.row }

func (q *fakeQuerier) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	q.execArgs = args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func ptr[T any](v T) *T { return &v }

func newSetCommand(t *testing.T, flags map[string]string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := settingsSetCmd()
	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("failed to set flag %s: %v", name, err)
		}
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func TestSetSettingsRequiresPassword(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		expected error
	}{
		{name: "empty", password: "", expected: settings.ErrPasswordEmpty},
		{name: "wrong", password: "guess", expected: settings.ErrUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, _ := newSetCommand(t, map[string]string{"password": tc.password, "voice": "cedar"})
			opened := false
			err := setSettings(cmd, "s3cret", func(context.Context) (settingsWriter, error) {
				opened = true
				return settingspostgres.NewStore(&fakeQuerier{}), nil
			})
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
			if opened {
				t.Fatalf("expected the store not to be opened")
			}
		})
	}
}

func TestSetSettingsMergesChangedFlags(t *testing.T) {
	querier := &fakeQuerier{row: settingsRow{voice: ptr("alloy"), useTTS: ptr(false)}}
	cmd, out := newSetCommand(t, map[string]string{"password": "s3cret", "voice": "marin"})

	err := setSettings(cmd, "s3cret", func(context.Context) (settingsWriter, error) {
		return settingspostgres.NewStore(querier), nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(querier.execArgs) != 3 || querier.execArgs[1] != "marin" || querier.execArgs[2] != false {
		t.Fatalf("expected voice marin with the stored use_tts kept, got %v", querier.execArgs)
	}
	if !strings.Contains(out.String(), "saved voice marin (use_tts=false)") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestSetSettingsRejectsUnknownVoice(t *testing.T) {
	querier := &fakeQuerier{row: settingsRow{err: pgx.ErrNoRows}}
	cmd, _ := newSetCommand(t, map[string]string{"password": "admin123", "voice": "robot"})

	err := setSettings(cmd, "", func(context.Context) (settingsWriter, error) {
		return settingspostgres.NewStore(querier), nil
	})
	if !errors.Is(err, settings.ErrInvalidVoice) {
		t.Fatalf("expected ErrInvalidVoice, got %v", err)
	}
	if querier.execArgs != nil {
		t.Fatalf("expected nothing to be saved")
	}
}

func TestShowSettings(t *testing.T) {
	store := settingspostgres.NewStore(&fakeQuerier{row: settingsRow{voice: ptr("cedar"), useTTS: ptr(true)}})

	var out bytes.Buffer
	if err := showSettings(context.Background(), &out, store); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, want := range []string{"voice:   cedar", "use_tts: true", "cedar is realtime-only"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected output to contain %q, got %q", want, out.String())
		}
	}
}
