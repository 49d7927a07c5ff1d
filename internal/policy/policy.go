// Package policy decides which owned records a caller may see or change.
//
// Every resource handler goes through a Policy instead of comparing role
// strings itself. Decisions are computed from the caller and the record at
// hand; nothing is cached between requests.
package policy

import (
	"ecoverse/internal/apperr"
	"ecoverse/internal/models"
)

// Caller is the identity attached to a request by the authentication guard.
// A nil *Caller means the request carried no session.
type Caller struct {
	ID    uint
	Email string
	Name  string
	Role  string
}

// IsAdmin reports whether c holds the admin role. A nil caller is never admin.
func IsAdmin(c *Caller) bool {
	return c != nil && c.Role == models.RoleAdmin
}

// Owned is implemented by every record that carries the id of its creator.
type Owned interface {
	OwnerKey() uint
}

// Scope is the storage-side form of Visible: either every row, the rows of
// one owner, or nothing.
type Scope struct {
	All     bool
	OwnerID uint
	None    bool
}

type Policy interface {
	Scope(caller *Caller) Scope
	Visible(record Owned, caller *Caller) bool
	MayMutate(record Owned, caller *Caller) bool
}

// Ownership restricts reads and writes to the owner, with admin override.
type Ownership struct{}

func (Ownership) Scope(caller *Caller) Scope {
	switch {
	case caller == nil:
		return Scope{None: true}
	case IsAdmin(caller):
		return Scope{All: true}
	default:
		return Scope{OwnerID: caller.ID}
	}
}

func (p Ownership) Visible(record Owned, caller *Caller) bool {
	return p.MayMutate(record, caller)
}

func (Ownership) MayMutate(record Owned, caller *Caller) bool {
	if caller == nil {
		return false
	}
	return caller.Role == models.RoleAdmin || record.OwnerKey() == caller.ID
}

// Public lets anyone read, including anonymous callers, and keeps
// Ownership rules for writes. Used for event and course listings.
type Public struct {
	Ownership
}

func (Public) Scope(*Caller) Scope { return Scope{All: true} }

func (Public) Visible(Owned, *Caller) bool { return true }

// Filter returns the subset of records the caller may see, preserving order.
func Filter[T Owned](p Policy, records []T, caller *Caller) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if p.Visible(r, caller) {
			out = append(out, r)
		}
	}
	return out
}

// Authorize turns a MayMutate decision into an error: ErrAuthentication
// without a session, ErrForbidden for a caller that is neither owner nor admin.
func Authorize(p Policy, record Owned, caller *Caller) error {
	if caller == nil {
		return apperr.ErrAuthentication
	}
	if !p.MayMutate(record, caller) {
		return apperr.ErrForbidden
	}
	return nil
}

// AuthorizeRead is Authorize for reads.
func AuthorizeRead(p Policy, record Owned, caller *Caller) error {
	if p.Visible(record, caller) {
		return nil
	}
	if caller == nil {
		return apperr.ErrAuthentication
	}
	return apperr.ErrForbidden
}
