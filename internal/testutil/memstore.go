// Package testutil provides in-memory stand-ins for the GORM repositories.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ecoverse/internal/apperr"
	"ecoverse/internal/models"
	"ecoverse/internal/policy"
	"ecoverse/internal/store"
)

// MemRepo keeps rows in a map. id points at the record's primary key;
// conflict, when set, reports whether two rows violate a unique index.
type MemRepo[T policy.Owned] struct {
	mu       sync.Mutex
	rows     map[uint]T
	next     uint
	id       func(*T) *uint
	conflict func(a, b T) bool
}

func NewMemRepo[T policy.Owned](id func(*T) *uint, conflict func(a, b T) bool) *MemRepo[T] {
	return &MemRepo[T]{rows: map[uint]T{}, id: id, conflict: conflict}
}

func (m *MemRepo[T]) Create(_ context.Context, record *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkConflict(*record, 0); err != nil {
		return err
	}
	m.next++
	*m.id(record) = m.next
	m.rows[m.next] = *record
	return nil
}

func (m *MemRepo[T]) Get(_ context.Context, id uint) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &row, nil
}

func (m *MemRepo[T]) List(_ context.Context, opts store.ListOptions) ([]T, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := m.scoped(opts.Scope)
	total := int64(len(matched))

	page, limit := opts.Page, opts.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = store.DefaultLimit
	}
	page, limit = min(page, store.MaxPage), min(limit, store.MaxLimit)
	start := (page - 1) * limit
	if start >= len(matched) {
		return []T{}, total, nil
	}
	end := min(start+limit, len(matched))
	return matched[start:end], total, nil
}

func (m *MemRepo[T]) Count(_ context.Context, scope policy.Scope) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.scoped(scope))), nil
}

func (m *MemRepo[T]) Save(_ context.Context, record *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := *m.id(record)
	if err := m.checkConflict(*record, id); err != nil {
		return err
	}
	m.rows[id] = *record
	return nil
}

func (m *MemRepo[T]) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

// Len is the number of stored rows.
func (m *MemRepo[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// scoped returns the rows inside scope, newest first. Callers hold mu.
func (m *MemRepo[T]) scoped(scope policy.Scope) []T {
	out := []T{}
	if scope.None {
		return out
	}
	ids := make([]uint, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	for _, id := range ids {
		row := m.rows[id]
		if scope.All || row.OwnerKey() == scope.OwnerID {
			out = append(out, row)
		}
	}
	return out
}

func (m *MemRepo[T]) checkConflict(record T, self uint) error {
	if m.conflict == nil {
		return nil
	}
	for id, row := range m.rows {
		if id != self && m.conflict(row, record) {
			return fmt.Errorf("%w: duplicate record", apperr.ErrConflict)
		}
	}
	return nil
}

type MemUsers struct {
	*MemRepo[models.User]
}

func (u *MemUsers) ByEmail(_ context.Context, email string) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, row := range u.rows {
		if row.Email == email {
			return &row, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// MemStore mirrors store.Store.
type MemStore struct {
	Users   *MemUsers
	Events  *MemRepo[models.Event]
	Courses *MemRepo[models.Course]
	Signups *MemRepo[models.Signup]
	Reports *MemRepo[models.Report]
}

func NewMemStore() *MemStore {
	return &MemStore{
		Users: &MemUsers{NewMemRepo(
			func(u *models.User) *uint { return &u.ID },
			func(a, b models.User) bool { return a.Email == b.Email },
		)},
		Events:  NewMemRepo(func(e *models.Event) *uint { return &e.ID }, nil),
		Courses: NewMemRepo(func(c *models.Course) *uint { return &c.ID }, nil),
		Signups: NewMemRepo(
			func(s *models.Signup) *uint { return &s.ID },
			func(a, b models.Signup) bool { return a.EventID == b.EventID && a.UserID == b.UserID },
		),
		Reports: NewMemRepo(func(r *models.Report) *uint { return &r.ID }, nil),
	}
}
