package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}

func seedGroup(t *testing.T, store *SQLiteStore, memberIDs ...int64) *models.Group {
	t.Helper()
	ctx := context.Background()
	for _, id := range memberIDs {
		if err := store.UpsertMember(ctx, &models.Member{ID: id, Name: "member"}); err != nil {
			t.Fatalf("UpsertMember failed: %v", err)
		}
	}
	group := &models.Group{Name: "Flat 4B", Currency: "INR", MemberIDs: memberIDs}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func TestSQLiteStore(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates ID and keeps member order", func(t *testing.T) {
		group := seedGroup(t, store, 3, 1, 2)
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		retrieved, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		want := []int64{3, 1, 2}
		if len(retrieved.MemberIDs) != len(want) {
			t.Fatalf("MemberIDs = %v, want %v", retrieved.MemberIDs, want)
		}
		for i := range want {
			if retrieved.MemberIDs[i] != want[i] {
				t.Errorf("MemberIDs = %v, want %v", retrieved.MemberIDs, want)
				break
			}
		}
		if retrieved.Currency != "INR" {
			t.Errorf("Currency = %q, want INR", retrieved.Currency)
		}
	})

	t.Run("GetGroup returns ErrNotFound for nonexistent group", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateGroup rejects unknown members", func(t *testing.T) {
		err := store.CreateGroup(ctx, &models.Group{Name: "ghosts", Currency: "INR", MemberIDs: []int64{999}})
		if err == nil {
			t.Fatal("Expected foreign key error, got nil")
		}
	})

	t.Run("AddGroupMember appends and is idempotent", func(t *testing.T) {
		group := seedGroup(t, store, 10, 11)
		if err := store.UpsertMember(ctx, &models.Member{ID: 12, Name: "Zoe"}); err != nil {
			t.Fatalf("UpsertMember failed: %v", err)
		}
		for i := 0; i < 2; i++ {
			if err := store.AddGroupMember(ctx, group.ID, 12); err != nil {
				t.Fatalf("AddGroupMember failed: %v", err)
			}
		}

		retrieved, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(retrieved.MemberIDs) != 3 || retrieved.MemberIDs[2] != 12 {
			t.Errorf("MemberIDs = %v, want [10 11 12]", retrieved.MemberIDs)
		}

		if err := store.AddGroupMember(ctx, "missing", 12); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroupsForMember", func(t *testing.T) {
		a := seedGroup(t, store, 20, 21)
		b := seedGroup(t, store, 21, 22)

		groups, err := store.ListGroupsForMember(ctx, 21)
		if err != nil {
			t.Fatalf("ListGroupsForMember failed: %v", err)
		}
		if len(groups) != 2 {
			t.Fatalf("Expected 2 groups, got %d", len(groups))
		}
		if groups[0].ID != a.ID || groups[1].ID != b.ID {
			t.Errorf("Groups out of order: got %s, %s", groups[0].ID, groups[1].ID)
		}
		if len(groups[1].MemberIDs) != 2 {
			t.Errorf("Expected members to be loaded, got %v", groups[1].MemberIDs)
		}

		groups, err = store.ListGroupsForMember(ctx, 20)
		if err != nil {
			t.Fatalf("ListGroupsForMember failed: %v", err)
		}
		if len(groups) != 1 {
			t.Errorf("Expected 1 group, got %d", len(groups))
		}
	})

	t.Run("UpsertMember updates existing member", func(t *testing.T) {
		if err := store.UpsertMember(ctx, &models.Member{ID: 30, Name: "Asha", Email: "asha@example.com"}); err != nil {
			t.Fatalf("UpsertMember failed: %v", err)
		}
		if err := store.UpsertMember(ctx, &models.Member{ID: 30, Name: "Asha R", Email: "asha@example.com"}); err != nil {
			t.Fatalf("UpsertMember failed: %v", err)
		}

		members, err := store.GetMembers(ctx, []int64{30, 404})
		if err != nil {
			t.Fatalf("GetMembers failed: %v", err)
		}
		if len(members) != 1 {
			t.Fatalf("Expected 1 member, got %d", len(members))
		}
		if members[30].Name != "Asha R" {
			t.Errorf("Name = %q, want %q", members[30].Name, "Asha R")
		}
	})

	t.Run("CreateExpense stores shares atomically", func(t *testing.T) {
		group := seedGroup(t, store, 40, 41, 42)
		expense := &models.Expense{
			GroupID:   group.ID,
			Amount:    100,
			Currency:  "INR",
			PayerID:   40,
			SplitType: models.SplitEqual,
			Note:      "Groceries",
			CreatedBy: 40,
			Shares: []models.Share{
				{UserID: 40, Amount: 34},
				{UserID: 41, Amount: 33},
				{UserID: 42, Amount: 33},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" {
			t.Error("Expected expense ID to be generated")
		}

		retrieved, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if retrieved.Amount != 100 || retrieved.PayerID != 40 || retrieved.SplitType != models.SplitEqual {
			t.Errorf("Unexpected expense: %+v", retrieved)
		}
		if retrieved.Note != "Groceries" {
			t.Errorf("Note = %q, want Groceries", retrieved.Note)
		}
		if len(retrieved.Shares) != 3 || retrieved.Shares[0].Amount != 34 {
			t.Errorf("Shares = %+v", retrieved.Shares)
		}

		// A share for a non-member row fails the whole insert.
		bad := &models.Expense{
			GroupID: group.ID, Amount: 10, Currency: "INR", PayerID: 40,
			SplitType: models.SplitCustom, CreatedBy: 40,
			Shares: []models.Share{{UserID: 40, Amount: 5}, {UserID: 9999, Amount: 5}},
		}
		if err := store.CreateExpense(ctx, bad); err == nil {
			t.Fatal("Expected error for share referencing unknown member")
		}
		if _, err := store.GetExpense(ctx, bad.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected partially written expense to be rolled back, got %v", err)
		}
	})

	t.Run("ListExpensesByGroup returns recording order", func(t *testing.T) {
		group := seedGroup(t, store, 50, 51)
		var ids []string
		for _, amount := range []int64{300, 100, 200} {
			e := &models.Expense{
				GroupID: group.ID, Amount: amount, Currency: "INR", PayerID: 50,
				SplitType: models.SplitCustom, CreatedBy: 50, CreatedAt: 1700000000,
				Shares: []models.Share{{UserID: 51, Amount: amount}},
			}
			if err := store.CreateExpense(ctx, e); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
			ids = append(ids, e.ID)
		}

		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 3 {
			t.Fatalf("Expected 3 expenses, got %d", len(expenses))
		}
		for i, e := range expenses {
			if e.ID != ids[i] {
				t.Errorf("expense %d: got %s, want %s", i, e.ID, ids[i])
			}
			if len(e.Shares) != 1 || e.Shares[0].Amount != e.Amount {
				t.Errorf("expense %d shares = %+v", i, e.Shares)
			}
		}
	})

	t.Run("ListExpensesByGroup empty group", func(t *testing.T) {
		group := seedGroup(t, store, 55)
		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 0 {
			t.Errorf("Expected no expenses, got %d", len(expenses))
		}
	})

	t.Run("Settlements round trip in order", func(t *testing.T) {
		group := seedGroup(t, store, 60, 61)
		first := &models.Settlement{GroupID: group.ID, FromUserID: 61, ToUserID: 60, Amount: 30, Currency: "INR", CreatedBy: 61, Note: "UPI"}
		second := &models.Settlement{GroupID: group.ID, FromUserID: 60, ToUserID: 61, Amount: 5, Currency: "INR", CreatedBy: 60}
		for _, s := range []*models.Settlement{first, second} {
			if err := store.CreateSettlement(ctx, s); err != nil {
				t.Fatalf("CreateSettlement failed: %v", err)
			}
		}

		settlements, err := store.ListSettlementsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListSettlementsByGroup failed: %v", err)
		}
		if len(settlements) != 2 {
			t.Fatalf("Expected 2 settlements, got %d", len(settlements))
		}
		if settlements[0].ID != first.ID || settlements[0].Note != "UPI" {
			t.Errorf("Unexpected first settlement: %+v", settlements[0])
		}
		if settlements[1].Note != "" {
			t.Errorf("Expected empty note, got %q", settlements[1].Note)
		}
	})

	t.Run("CreateSettlement rejects self payment", func(t *testing.T) {
		group := seedGroup(t, store, 70)
		err := store.CreateSettlement(ctx, &models.Settlement{GroupID: group.ID, FromUserID: 70, ToUserID: 70, Amount: 1, Currency: "INR", CreatedBy: 70})
		if err == nil {
			t.Error("Expected check constraint error, got nil")
		}
	})
}

func TestMigrations(t *testing.T) {
	_, dbPath := newTestStore(t)

	version, dirty, err := MigrationVersion(dbPath)
	if err != nil {
		t.Fatalf("MigrationVersion failed: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("version = %d dirty = %v, want 1 false", version, dirty)
	}

	// Running again is a no-op.
	if err := MigrateUp(dbPath); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	if err := MigrateDown(dbPath); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}
	version, _, err = MigrationVersion(dbPath)
	if err != nil {
		t.Fatalf("MigrationVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("version after down = %d, want 0", version)
	}
}

func TestRepeatPlaceholder(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{-1, ""},
		{1, ", ?"},
		{3, ", ?, ?, ?"},
	}
	for _, tt := range tests {
		if got := repeatPlaceholder(tt.n); got != tt.want {
			t.Errorf("repeatPlaceholder(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
