// Package store persists accounts and owned resources through GORM.
package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"ecoverse/internal/apperr"
	"ecoverse/internal/policy"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit inside an int32 OFFSET.
	MaxPage = math.MaxInt32 / MaxLimit
)

// ListOptions narrows a listing. Scope is the caller's visibility as decided
// by a policy; Search is matched case-insensitively against the repo's
// search columns.
type ListOptions struct {
	Scope  policy.Scope
	Page   int
	Limit  int
	Search string
}

func (o ListOptions) normalized() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Page > MaxPage {
		o.Page = MaxPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	o.Search = strings.TrimSpace(o.Search)
	return o
}

// Repo is a table of T rows. ownerColumn holds the id that policy scopes
// are matched against.
type Repo[T any] struct {
	db            *gorm.DB
	ownerColumn   string
	searchColumns []string
}

func NewRepo[T any](db *gorm.DB, ownerColumn string, searchColumns ...string) *Repo[T] {
	return &Repo[T]{db: db, ownerColumn: ownerColumn, searchColumns: searchColumns}
}

func (r *Repo[T]) Create(ctx context.Context, record *T) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *Repo[T]) Get(ctx context.Context, id uint) (*T, error) {
	var record T
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

// List returns one page of rows inside opts.Scope and the total number of
// rows matching the same filter.
func (r *Repo[T]) List(ctx context.Context, opts ListOptions) ([]T, int64, error) {
	opts = opts.normalized()
	records := []T{}
	if opts.Scope.None {
		return records, 0, nil
	}

	var total int64
	if err := r.filtered(ctx, opts).Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	if total == 0 {
		return records, 0, nil
	}

	err := r.filtered(ctx, opts).
		Order("id DESC").
		Offset((opts.Page - 1) * opts.Limit).
		Limit(opts.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return records, total, nil
}

func (r *Repo[T]) Count(ctx context.Context, scope policy.Scope) (int64, error) {
	if scope.None {
		return 0, nil
	}
	var total int64
	if err := r.filtered(ctx, ListOptions{Scope: scope}).Model(new(T)).Count(&total).Error; err != nil {
		return 0, translate(err)
	}
	return total, nil
}

// Save writes every column of record. Concurrent saves are last-write-wins.
func (r *Repo[T]) Save(ctx context.Context, record *T) error {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Delete removes the row for good.
func (r *Repo[T]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *Repo[T]) filtered(ctx context.Context, opts ListOptions) *gorm.DB {
	q := r.db.WithContext(ctx)
	if !opts.Scope.All {
		q = q.Where(r.ownerColumn+" = ?", opts.Scope.OwnerID)
	}
	if opts.Search != "" && len(r.searchColumns) > 0 {
		like := "%" + likeEscaper.Replace(opts.Search) + "%"
		clauses := make([]string, len(r.searchColumns))
		args := make([]any, len(r.searchColumns))
		for i, col := range r.searchColumns {
			clauses[i] = col + ` ILIKE ? ESCAPE '\'`
			args[i] = like
		}
		q = q.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	return q
}

// likeEscaper makes search text match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translate maps driver errors onto apperr kinds.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || hasPQCode(err, pqUniqueViolation) {
		return fmt.Errorf("%w: duplicate record", apperr.ErrConflict)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || hasPQCode(err, pqForeignKeyViolation) {
		return fmt.Errorf("%w: referenced record does not exist", apperr.ErrNotFound)
	}
	return err
}

func hasPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
