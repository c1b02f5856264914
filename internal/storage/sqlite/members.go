package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
)

// UpsertMember inserts a member, or refreshes the name and email of an existing one.
func (s *SQLiteStore) UpsertMember(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members (id, name, email)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, email = excluded.email
	`

	_, err := s.db.ExecContext(ctx, query, member.ID, member.Name, member.Email)
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}

	return nil
}

// GetMembers retrieves multiple members by their IDs.
// Returns a map of member ID to Member object.
// Members that don't exist are omitted from the result.
func (s *SQLiteStore) GetMembers(ctx context.Context, ids []int64) (map[int64]*models.Member, error) {
	if len(ids) == 0 {
		return make(map[int64]*models.Member), nil
	}

	// Build the IN clause with placeholders
	query := `
		SELECT id, name, email
		FROM members
		WHERE id IN (?` + repeatPlaceholder(len(ids)-1) + `)`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get members by IDs: %w", err)
	}
	defer rows.Close()

	members := make(map[int64]*models.Member, len(ids))
	for rows.Next() {
		member := &models.Member{}
		if err := rows.Scan(&member.ID, &member.Name, &member.Email); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members[member.ID] = member
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

// repeatPlaceholder returns a string of ", ?" repeated n times.
// Used for building IN clauses with multiple placeholders.
func repeatPlaceholder(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(", ?", n)
}
