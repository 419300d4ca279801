package storage

import (
	"context"
	"errors"
	"testing"
)

func TestSettings(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.GetSetting(ctx, SettingDomain); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unset key, got %v", err)
	}

	err := s.SeedSettings(ctx, map[string]string{
		SettingDomain:       "lan.example",
		SettingExternalIPv4: "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("SeedSettings failed: %v", err)
	}

	domain, err := s.GetSetting(ctx, SettingDomain)
	if err != nil || domain != "lan.example" {
		t.Fatalf("GetSetting = %q, %v", domain, err)
	}

	t.Run("seed does not overwrite", func(t *testing.T) {
		if err := s.SeedSettings(ctx, map[string]string{SettingDomain: "other.example"}); err != nil {
			t.Fatalf("SeedSettings failed: %v", err)
		}
		got, err := s.GetSetting(ctx, SettingDomain)
		if err != nil || got != "lan.example" {
			t.Errorf("GetSetting = %q, %v; want lan.example", got, err)
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		if err := s.SetSetting(ctx, SettingExternalIPv4, "198.51.100.1"); err != nil {
			t.Fatalf("SetSetting failed: %v", err)
		}
		got, err := s.GetSetting(ctx, SettingExternalIPv4)
		if err != nil || got != "198.51.100.1" {
			t.Errorf("GetSetting = %q, %v", got, err)
		}
	})
}

func TestPingAndStats(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Version == "" {
		t.Error("expected sqlite version")
	}
	if st.Tables < 5 {
		t.Errorf("expected at least 5 tables, got %d", st.Tables)
	}
	if st.SizeBytes != 0 {
		t.Errorf("expected zero size for in-memory db, got %d", st.SizeBytes)
	}
}

func TestPingClosed(t *testing.T) {
	t.Parallel()
	s, err := New(":memory:", 0)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	_ = s.Close()

	if err := s.Ping(context.Background()); err == nil {
		t.Error("expected error pinging closed database")
	}
}
