// Package storage defines the repository seam behind which group state,
// ledger snapshots and operation history are persisted.
//
// The in-memory ledger is authoritative; backends hold the latest balance
// snapshot plus append-only expense and settlement records. Durability
// guarantees are out of scope, which is why the memory backend is a valid
// default.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Group is a persisted group record.
type Group struct {
	ID          string
	Name        string
	Description string
	Currency    string
	Members     []string
	CreatedAt   int64
}

// Share is one member's persisted portion of an expense.
type Share struct {
	MemberID    string
	AmountCents int64
}

// Expense is a persisted expense record. Expenses are immutable: they are
// written once and only ever read back.
type Expense struct {
	ID          string
	GroupID     string
	PayerID     string
	Description string
	TotalCents  int64
	Currency    string
	SplitType   string
	Shares      []Share
	CreatedAt   int64
}

// Settlement is a persisted settlement record, immutable like Expense.
type Settlement struct {
	ID          string
	GroupID     string
	PayerID     string
	PayeeID     string
	AmountCents int64
	Note        string
	CreatedAt   int64
}

// Store is the persistence interface consumed by the services.
type Store interface {
	CreateGroup(ctx context.Context, g *Group) error
	GetGroup(ctx context.Context, id string) (*Group, error)
	ListGroups(ctx context.Context) ([]*Group, error)
	DeleteGroup(ctx context.Context, id string) error
	AddGroupMember(ctx context.Context, groupID, memberID string) error
	RemoveGroupMember(ctx context.Context, groupID, memberID string) error

	// SaveLedger replaces the persisted balance snapshot for a group.
	SaveLedger(ctx context.Context, groupID string, balances map[string]int64) error
	// LoadLedger returns the persisted balance snapshot for a group.
	LoadLedger(ctx context.Context, groupID string) (map[string]int64, error)

	AppendExpense(ctx context.Context, e *Expense) error
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*Expense, error)
	AppendSettlement(ctx context.Context, s *Settlement) error
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*Settlement, error)

	Close() error
}

// Driver names a storage backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// IsValid reports whether the driver is one of the known backends.
func (d Driver) IsValid() bool {
	switch d {
	case DriverMemory, DriverSQLite, DriverPostgres:
		return true
	}
	return false
}

// ErrUnknownDriver is returned by the composition root when the configured
// driver does not name a known backend.
var ErrUnknownDriver = errors.New("unknown storage driver")

// ValidateDriver checks a configured driver name.
func ValidateDriver(d Driver) error {
	if !d.IsValid() {
		return fmt.Errorf("%w: %s", ErrUnknownDriver, d)
	}
	return nil
}
