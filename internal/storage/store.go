// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is wrapped by lookups that match no record.
var ErrNotFound = errors.New("not found")

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// History is append-only: there are no update or delete operations for
// expenses and settlements.
type Store interface {
	// UpsertMember inserts a member or updates the name and email of an
	// existing one.
	UpsertMember(ctx context.Context, member *models.Member) error

	// GetMembers returns the members with the given IDs keyed by ID.
	// IDs that don't exist are omitted from the result.
	GetMembers(ctx context.Context, ids []int64) (map[int64]*models.Member, error)

	// CreateGroup persists a new group with its member list.
	// The group.ID field will be populated by the store if empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group and its members by ID.
	// Returns an error wrapping ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForMember returns every group userID belongs to, oldest first.
	ListGroupsForMember(ctx context.Context, userID int64) ([]*models.Group, error)

	// AddGroupMember appends userID to a group's member list.
	AddGroupMember(ctx context.Context, groupID string, userID int64) error

	// CreateExpense persists an expense and all of its shares atomically.
	// The expense.ID and expense.CreatedAt fields are populated if unset.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its shares.
	// Returns an error wrapping ErrNotFound if the expense does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns a group's expenses in the order they were recorded.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// CreateSettlement persists a settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlementsByGroup returns a group's settlements in the order they were recorded.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}
