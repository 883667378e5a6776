// ABOUTME: Tests for per-user settings storage
// ABOUTME: Covers upserts, not-found lookups and per-user separation

package store

import (
	"context"
	"errors"
	"testing"
)

func TestSaveAndGetSetting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "alice")

	if err := s.SaveSetting(ctx, userID, SettingLLMProvider, "openai"); err != nil {
		t.Fatalf("SaveSetting failed: %v", err)
	}

	value, err := s.GetSetting(ctx, userID, SettingLLMProvider)
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "openai" {
		t.Errorf("expected openai, got %q", value)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	userID := createTestUser(t, s, "alice")

	_, err := s.GetSetting(context.Background(), userID, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveSettingOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "alice")

	if err := s.SaveSetting(ctx, userID, SettingLLMModel, "gpt-4o-mini"); err != nil {
		t.Fatalf("SaveSetting failed: %v", err)
	}
	if err := s.SaveSetting(ctx, userID, SettingLLMModel, "gpt-4o"); err != nil {
		t.Fatalf("SaveSetting failed: %v", err)
	}

	value, err := s.GetSetting(ctx, userID, SettingLLMModel)
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "gpt-4o" {
		t.Errorf("expected overwritten value gpt-4o, got %q", value)
	}

	var count int
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM settings WHERE user_id = ? AND setting_key = ?`,
		userID, SettingLLMModel,
	).Scan(&count)
	if err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 setting row after upsert, got %d", count)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "alice")

	if err := s.SaveSetting(ctx, userID, SettingLLMProvider, "openrouter"); err != nil {
		t.Fatalf("SaveSetting failed: %v", err)
	}
	if err := s.SaveSetting(ctx, userID, SettingLLMModel, DefaultModel("openrouter")); err != nil {
		t.Fatalf("SaveSetting failed: %v", err)
	}

	settings, err := s.GetAllSettings(ctx, userID)
	if err != nil {
		t.Fatalf("GetAllSettings failed: %v", err)
	}
	if len(settings) != 2 {
		t.Fatalf("expected 2 settings, got %d", len(settings))
	}
	if settings[SettingLLMProvider] != "openrouter" {
		t.Errorf("unexpected provider: %q", settings[SettingLLMProvider])
	}
}

func TestSettingsSeparatePerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	aliceID := createTestUser(t, s, "alice")
	bobID := createTestUser(t, s, "bob")

	if err := s.SaveSetting(ctx, aliceID, SettingLLMProvider, "openai"); err != nil {
		t.Fatalf("SaveSetting failed: %v", err)
	}
	if err := s.SaveSetting(ctx, bobID, SettingLLMProvider, "openrouter"); err != nil {
		t.Fatalf("SaveSetting failed: %v", err)
	}

	value, err := s.GetSetting(ctx, aliceID, SettingLLMProvider)
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "openai" {
		t.Errorf("alice sees %q", value)
	}
}
