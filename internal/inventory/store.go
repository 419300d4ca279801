package inventory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sipico/netinv/internal/storage"
)

// Repository is the persistence contract shared by hosts and aliases.
type Repository[T any] interface {
	List(ctx context.Context) ([]*T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, rec *T) (int64, error)
	Update(ctx context.Context, id int64, rec *T) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Store validates records against a rule table before handing them to a
// Repository, and translates storage errors into the inventory taxonomy.
type Store[T any] struct {
	kind   string
	repo   Repository[T]
	rules  Rules
	fields func(*T) map[string]*string
	order  func([]*T)
	logger *slog.Logger
}

// List returns every record, ordered for presentation when the store has an
// ordering.
func (s *Store[T]) List(ctx context.Context) ([]*T, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.translate("list", err)
	}
	if s.order != nil {
		s.order(recs)
	}
	return recs, nil
}

// Get returns the record with the given ID or ErrNotFound.
func (s *Store[T]) Get(ctx context.Context, id int64) (*T, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.translate("get", err, "id", id)
	}
	return rec, nil
}

// Create validates rec, trimming its fields in place, and stores it.
// Returns a *ValidationError, ErrConflict or *StorageError on failure.
func (s *Store[T]) Create(ctx context.Context, rec *T) (int64, error) {
	if err := s.rules.Validate(s.fields(rec)); err != nil {
		return 0, err
	}
	id, err := s.repo.Create(ctx, rec)
	if err != nil {
		return 0, s.translate("create", err)
	}
	s.logger.Info(s.kind+" created", "id", id)
	return id, nil
}

// Update validates rec and replaces the record with the given ID.
// Returns false, nil when no such record exists.
func (s *Store[T]) Update(ctx context.Context, id int64, rec *T) (bool, error) {
	if err := s.rules.Validate(s.fields(rec)); err != nil {
		return false, err
	}
	ok, err := s.repo.Update(ctx, id, rec)
	if err != nil {
		return false, s.translate("update", err, "id", id)
	}
	if ok {
		s.logger.Info(s.kind+" updated", "id", id)
	}
	return ok, nil
}

// Delete removes the record with the given ID.
// Returns false, nil when no such record exists.
func (s *Store[T]) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, s.translate("delete", err, "id", id)
	}
	if ok {
		s.logger.Info(s.kind+" deleted", "id", id)
	}
	return ok, nil
}

func (s *Store[T]) translate(op string, err error, attrs ...any) error {
	switch {
	case errors.Is(err, storage.ErrDuplicate):
		return ErrConflict
	case errors.Is(err, storage.ErrHasDependents):
		return ErrInUse
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	}
	args := append([]any{"kind", s.kind, "op", op, "error", err}, attrs...)
	s.logger.Error("inventory storage failure", args...)
	return &StorageError{Op: s.kind + " " + op, Err: err}
}

// HostRepository is the subset of storage used for hosts.
type HostRepository interface {
	ListHosts(ctx context.Context) ([]*storage.Host, error)
	GetHost(ctx context.Context, id int64) (*storage.Host, error)
	CreateHost(ctx context.Context, h *storage.Host) (int64, error)
	UpdateHost(ctx context.Context, id int64, h *storage.Host) (bool, error)
	DeleteHost(ctx context.Context, id int64) (bool, error)
}

// AliasRepository is the subset of storage used for aliases.
type AliasRepository interface {
	ListAliases(ctx context.Context) ([]*storage.Alias, error)
	GetAlias(ctx context.Context, id int64) (*storage.Alias, error)
	CreateAlias(ctx context.Context, a *storage.Alias) (int64, error)
	UpdateAlias(ctx context.Context, id int64, a *storage.Alias) (bool, error)
	DeleteAlias(ctx context.Context, id int64) (bool, error)
}

type hostRepo struct{ r HostRepository }

func (h hostRepo) List(ctx context.Context) ([]*storage.Host, error) { return h.r.ListHosts(ctx) }
func (h hostRepo) Get(ctx context.Context, id int64) (*storage.Host, error) {
	return h.r.GetHost(ctx, id)
}
func (h hostRepo) Create(ctx context.Context, rec *storage.Host) (int64, error) {
	return h.r.CreateHost(ctx, rec)
}
func (h hostRepo) Update(ctx context.Context, id int64, rec *storage.Host) (bool, error) {
	return h.r.UpdateHost(ctx, id, rec)
}
func (h hostRepo) Delete(ctx context.Context, id int64) (bool, error) { return h.r.DeleteHost(ctx, id) }

type aliasRepo struct{ r AliasRepository }

func (a aliasRepo) List(ctx context.Context) ([]*storage.Alias, error) { return a.r.ListAliases(ctx) }
func (a aliasRepo) Get(ctx context.Context, id int64) (*storage.Alias, error) {
	return a.r.GetAlias(ctx, id)
}
func (a aliasRepo) Create(ctx context.Context, rec *storage.Alias) (int64, error) {
	return a.r.CreateAlias(ctx, rec)
}
func (a aliasRepo) Update(ctx context.Context, id int64, rec *storage.Alias) (bool, error) {
	return a.r.UpdateAlias(ctx, id, rec)
}
func (a aliasRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return a.r.DeleteAlias(ctx, id)
}

// NewHostStore returns a Store for hosts. List orders hosts by IPv4.
func NewHostStore(r HostRepository, logger *slog.Logger) *Store[storage.Host] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[storage.Host]{
		kind:  "host",
		repo:  hostRepo{r},
		rules: HostRules,
		fields: func(h *storage.Host) map[string]*string {
			return map[string]*string{
				"name": &h.Name,
				"ipv4": &h.IPv4,
				"ipv6": &h.IPv6,
				"mac":  &h.MAC,
				"note": &h.Note,
			}
		},
		order:  SortHostsByIPv4,
		logger: logger,
	}
}

// NewAliasStore returns a Store for aliases in storage order.
func NewAliasStore(r AliasRepository, logger *slog.Logger) *Store[storage.Alias] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[storage.Alias]{
		kind:  "alias",
		repo:  aliasRepo{r},
		rules: AliasRules,
		fields: func(a *storage.Alias) map[string]*string {
			return map[string]*string{
				"name":   &a.Name,
				"target": &a.Target,
				"note":   &a.Note,
			}
		},
		logger: logger,
	}
}
