// Package access holds the ownership rules shared by every user-owned row.
package access

import "errors"

var (
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("resource belongs to another user")
)

// Check decides whether callerID may act on a row. Existence is settled
// before ownership, so a missing or soft-deleted row never reports forbidden.
func Check(found, deleted bool, ownerID, callerID int64) error {
	if !found || deleted {
		return ErrNotFound
	}
	if ownerID != callerID {
		return ErrForbidden
	}
	return nil
}

// Strategy says how a row of a given table is removed.
type Strategy interface {
	isStrategy()
}

// SoftDelete flips Column to true and keeps the row.
type SoftDelete struct {
	Column string
}

// HardDelete removes the row.
type HardDelete struct{}

func (SoftDelete) isStrategy() {}
func (HardDelete) isStrategy() {}
