package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createGroup(t *testing.T, store *SQLiteStore, names ...string) *models.Group {
	t.Helper()
	group := &models.Group{Name: "Trip"}
	for _, n := range names {
		group.Members = append(group.Members, models.Member{Name: n})
	}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup assigns IDs and keeps member order", func(t *testing.T) {
		group := &models.Group{
			Name: "Roommates",
			Members: []models.Member{
				{Name: "Alice", UserID: "user-alice"},
				{Name: "Bob"},
				{Name: "Charlie"},
			},
		}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" || group.CreatedAt == 0 {
			t.Fatalf("expected ID and CreatedAt to be set: %+v", group)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Roommates" {
			t.Errorf("Name mismatch: got %s", got.Name)
		}
		if len(got.Members) != 3 {
			t.Fatalf("expected 3 members, got %d", len(got.Members))
		}
		for i, name := range []string{"Alice", "Bob", "Charlie"} {
			if got.Members[i].Name != name {
				t.Errorf("member %d = %s, want %s", i, got.Members[i].Name, name)
			}
			if got.Members[i].ID != group.Members[i].ID {
				t.Errorf("member %d ID mismatch", i)
			}
		}
		if got.Members[0].UserID != "user-alice" || !got.Members[1].IsGuest() {
			t.Errorf("user links not preserved: %+v", got.Members)
		}
	})

	t.Run("AddMember appends to the group", func(t *testing.T) {
		group := createGroup(t, store, "Alice")
		member := &models.Member{GroupID: group.ID, Name: "Guest"}
		if err := store.AddMember(ctx, member); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 2 || got.Members[1].ID != member.ID {
			t.Errorf("expected guest appended, got %+v", got.Members)
		}
	})

	t.Run("AddMember to missing group", func(t *testing.T) {
		err := store.AddMember(ctx, &models.Member{GroupID: "nope", Name: "X"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroupsForUser", func(t *testing.T) {
		group := &models.Group{Name: "Mine", Members: []models.Member{{Name: "Dana", UserID: "user-dana"}}}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		groups, err := store.ListGroupsForUser(ctx, "user-dana")
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != group.ID {
			t.Errorf("unexpected groups: %+v", groups)
		}
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createGroup(t, store, "Alice", "Bob")
	alice, bob := group.Members[0].ID, group.Members[1].ID

	expense := &models.Expense{
		GroupID:      group.ID,
		Description:  "Dinner",
		PayerID:      alice,
		Amount:       50,
		Currency:     "EUR",
		ExchangeRate: 1.08,
		CreatedBy:    "user-alice",
		Splits: []models.ExpenseSplit{
			{MemberID: alice, Amount: 20},
			{MemberID: bob, Amount: 30},
		},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	t.Run("GetExpense round-trips splits and pass-through fields", func(t *testing.T) {
		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Amount != 50 || got.PayerID != alice || got.Currency != "EUR" || got.ExchangeRate != 1.08 {
			t.Errorf("unexpected expense: %+v", got)
		}
		if len(got.Splits) != 2 || got.Splits[0].MemberID != alice || got.Splits[1].Amount != 30 {
			t.Errorf("unexpected splits: %+v", got.Splits)
		}
	})

	t.Run("DeleteExpense hides the expense", func(t *testing.T) {
		second := &models.Expense{GroupID: group.ID, Description: "Taxi", PayerID: bob, Amount: 10, CreatedBy: "x"}
		if err := store.CreateExpense(ctx, second); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if err := store.DeleteExpense(ctx, second.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}

		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 1 || expenses[0].ID != expense.ID {
			t.Errorf("expected only the live expense, got %d", len(expenses))
		}

		if _, err := store.GetExpense(ctx, second.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for deleted expense, got %v", err)
		}
		if err := store.DeleteExpense(ctx, second.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound deleting twice, got %v", err)
		}
	})
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createGroup(t, store, "Alice", "Bob")

	settlement := &models.Settlement{
		GroupID:      group.ID,
		FromMemberID: group.Members[1].ID,
		ToMemberID:   group.Members[0].ID,
		Amount:       12.5,
		Method:       "cash",
		CreatedBy:    "user-bob",
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	got, err := store.GetSettlement(ctx, settlement.ID)
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if got.Amount != 12.5 || got.Method != "cash" || got.Notes != "" {
		t.Errorf("unexpected settlement: %+v", got)
	}

	list, err := store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListSettlementsByGroup failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 settlement, got %d", len(list))
	}

	bad := &models.Settlement{GroupID: group.ID, FromMemberID: "a", ToMemberID: "b", Amount: 0, CreatedBy: "x"}
	if err := store.CreateSettlement(ctx, bad); err == nil {
		t.Error("expected non-positive amount to be rejected")
	}
}

func TestReceiptsAndClaims(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createGroup(t, store, "Alice", "Bob")
	alice, bob := group.Members[0].ID, group.Members[1].ID

	total := 33.0
	receipt := &models.Receipt{
		GroupID:     group.ID,
		Merchant:    "Pizzeria",
		Subtotal:    30,
		TaxAmount:   3,
		TotalAmount: &total,
		CreatedBy:   "user-alice",
		Items: []models.ReceiptItem{
			{Description: "Pizza", Quantity: 1, UnitPrice: 20, TotalPrice: 20, IsLikelyShared: true},
			{Description: "Beer", Quantity: 2, UnitPrice: 5, TotalPrice: 10},
			{Description: "Tax", TotalPrice: 3, IsTax: true},
		},
	}
	if err := store.CreateReceipt(ctx, receipt); err != nil {
		t.Fatalf("CreateReceipt failed: %v", err)
	}
	pizza := receipt.Items[0].ID

	t.Run("GetReceipt keeps item order and flags", func(t *testing.T) {
		got, err := store.GetReceipt(ctx, receipt.ID)
		if err != nil {
			t.Fatalf("GetReceipt failed: %v", err)
		}
		if got.TotalAmount == nil || *got.TotalAmount != 33 {
			t.Errorf("TotalAmount not preserved: %v", got.TotalAmount)
		}
		if len(got.Items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(got.Items))
		}
		if !got.Items[0].IsLikelyShared || !got.Items[2].IsTax || !got.Items[1].IsRegular() {
			t.Errorf("flags not preserved: %+v", got.Items)
		}
	})

	t.Run("UpsertClaim replaces an existing claim", func(t *testing.T) {
		first := &models.ItemClaim{ReceiptItemID: pizza, MemberID: alice, ShareFraction: 1, Source: "manual"}
		if err := store.UpsertClaim(ctx, first); err != nil {
			t.Fatalf("UpsertClaim failed: %v", err)
		}
		again := &models.ItemClaim{ReceiptItemID: pizza, MemberID: alice, ShareFraction: 0.5, SplitCount: 2, Source: "voice"}
		if err := store.UpsertClaim(ctx, again); err != nil {
			t.Fatalf("UpsertClaim failed: %v", err)
		}
		if again.ID != first.ID {
			t.Errorf("expected upsert to keep claim ID %s, got %s", first.ID, again.ID)
		}
		if err := store.UpsertClaim(ctx, &models.ItemClaim{ReceiptItemID: pizza, MemberID: bob, ShareFraction: 0.5, Source: "manual"}); err != nil {
			t.Fatalf("UpsertClaim failed: %v", err)
		}

		item, err := store.GetReceiptItem(ctx, pizza)
		if err != nil {
			t.Fatalf("GetReceiptItem failed: %v", err)
		}
		if len(item.Claims) != 2 {
			t.Fatalf("expected 2 claims, got %d", len(item.Claims))
		}
		if item.Claims[0].ShareFraction != 0.5 || item.Claims[0].SplitCount != 2 || item.Claims[0].Source != "voice" {
			t.Errorf("claim not replaced: %+v", item.Claims[0])
		}
	})

	t.Run("UpsertClaim rejects fractions above one", func(t *testing.T) {
		err := store.UpsertClaim(ctx, &models.ItemClaim{ReceiptItemID: pizza, MemberID: bob, ShareFraction: 1.5, Source: "manual"})
		if err == nil {
			t.Error("expected check constraint failure")
		}
	})

	t.Run("DeleteClaim", func(t *testing.T) {
		if err := store.DeleteClaim(ctx, pizza, bob); err != nil {
			t.Fatalf("DeleteClaim failed: %v", err)
		}
		if err := store.DeleteClaim(ctx, pizza, bob); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetReceiptItem returns ErrNotFound", func(t *testing.T) {
		if _, err := store.GetReceiptItem(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Other", "hash")); err == nil {
		t.Error("expected duplicate email to fail")
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || byEmail.ID != user.ID {
		t.Fatalf("GetUserByEmail = %+v, %v", byEmail, err)
	}
	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil || byID.DisplayName != "Alice" {
		t.Fatalf("GetUserByID = %+v, %v", byID, err)
	}
	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
