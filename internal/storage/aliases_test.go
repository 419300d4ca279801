package storage

import (
	"context"
	"errors"
	"testing"
)

func TestAliasLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)
	ctx := context.Background()

	id, err := s.CreateAlias(ctx, &Alias{Name: "www", Target: "srv1", SSLEnabled: true})
	if err != nil {
		t.Fatalf("CreateAlias failed: %v", err)
	}

	got, err := s.GetAlias(ctx, id)
	if err != nil {
		t.Fatalf("GetAlias failed: %v", err)
	}
	if got.Name != "www" || got.Target != "srv1" || !got.SSLEnabled || got.Note != "" {
		t.Errorf("unexpected alias: %+v", got)
	}

	ok, err := s.UpdateAlias(ctx, id, &Alias{Name: "web", Target: "10.0.0.9", Note: "moved"})
	if err != nil || !ok {
		t.Fatalf("UpdateAlias = %v, %v", ok, err)
	}
	got, err = s.GetAlias(ctx, id)
	if err != nil {
		t.Fatalf("GetAlias failed: %v", err)
	}
	if got.Name != "web" || got.Target != "10.0.0.9" || got.SSLEnabled || got.Note != "moved" {
		t.Errorf("unexpected alias after update: %+v", got)
	}

	ok, err = s.DeleteAlias(ctx, id)
	if err != nil || !ok {
		t.Fatalf("DeleteAlias = %v, %v", ok, err)
	}
	if _, err := s.GetAlias(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	ok, err = s.DeleteAlias(ctx, id)
	if err != nil || ok {
		t.Errorf("second DeleteAlias = %v, %v; want false, nil", ok, err)
	}
	ok, err = s.UpdateAlias(ctx, id, &Alias{Name: "x", Target: "y"})
	if err != nil || ok {
		t.Errorf("UpdateAlias on missing = %v, %v; want false, nil", ok, err)
	}
}

func TestAliasNamespaceIndependentOfHosts(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.CreateHost(ctx, &Host{Name: "www"}); err != nil {
		t.Fatalf("CreateHost failed: %v", err)
	}
	if _, err := s.CreateAlias(ctx, &Alias{Name: "www", Target: "srv1"}); err != nil {
		t.Fatalf("alias sharing a host name should be allowed: %v", err)
	}
	if _, err := s.CreateAlias(ctx, &Alias{Name: "www", Target: "srv2"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for second alias, got %v", err)
	}
}

func TestListAliasesOrderedByTarget(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)
	ctx := context.Background()

	for _, a := range []Alias{{Name: "c", Target: "srv2"}, {Name: "a", Target: "srv1"}, {Name: "b", Target: "srv2"}} {
		if _, err := s.CreateAlias(ctx, &a); err != nil {
			t.Fatalf("CreateAlias failed: %v", err)
		}
	}

	aliases, err := s.ListAliases(ctx)
	if err != nil {
		t.Fatalf("ListAliases failed: %v", err)
	}
	got := ""
	for _, a := range aliases {
		got += a.Name
	}
	if got != "acb" {
		t.Errorf("expected order acb, got %s", got)
	}
}
