package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/adhamsal/splitkit/internal/storage"
)

func TestMemoryStore(t *testing.T) {
	store := New()
	ctx := context.Background()

	g := &storage.Group{Name: "Trip", Currency: "USD", Members: []string{"alice", "bob"}}
	if err := store.CreateGroup(ctx, g); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if g.ID == "" {
		t.Fatal("expected generated group ID")
	}

	got, err := store.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	// Stored records must not alias caller slices.
	got.Members[0] = "mallory"
	again, _ := store.GetGroup(ctx, g.ID)
	if again.Members[0] != "alice" {
		t.Error("GetGroup leaked internal state")
	}

	if err := store.SaveLedger(ctx, g.ID, map[string]int64{"alice": -100, "bob": 100}); err != nil {
		t.Fatalf("SaveLedger failed: %v", err)
	}
	balances, err := store.LoadLedger(ctx, g.ID)
	if err != nil || balances["bob"] != 100 {
		t.Fatalf("LoadLedger = %v, %v", balances, err)
	}

	if err := store.AppendExpense(ctx, &storage.Expense{
		GroupID: g.ID, PayerID: "alice", TotalCents: 200, Currency: "USD", SplitType: "EQUAL",
		Shares: []storage.Share{{MemberID: "alice", AmountCents: 100}, {MemberID: "bob", AmountCents: 100}},
	}); err != nil {
		t.Fatalf("AppendExpense failed: %v", err)
	}
	expenses, err := store.ListExpensesByGroup(ctx, g.ID)
	if err != nil || len(expenses) != 1 {
		t.Fatalf("ListExpensesByGroup = %v, %v", expenses, err)
	}

	if err := store.AppendSettlement(ctx, &storage.Settlement{
		GroupID: g.ID, PayerID: "bob", PayeeID: "alice", AmountCents: 100,
	}); err != nil {
		t.Fatalf("AppendSettlement failed: %v", err)
	}
	settlements, err := store.ListSettlementsByGroup(ctx, g.ID)
	if err != nil || len(settlements) != 1 {
		t.Fatalf("ListSettlementsByGroup = %v, %v", settlements, err)
	}

	if err := store.DeleteGroup(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, err := store.GetGroup(ctx, g.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetGroup after delete = %v, want ErrNotFound", err)
	}
	if _, err := store.LoadLedger(ctx, g.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("LoadLedger after delete = %v, want ErrNotFound", err)
	}
}
