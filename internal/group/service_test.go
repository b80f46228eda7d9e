package group

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/adhamsal/splitkit/internal/ledger"
	"github.com/adhamsal/splitkit/internal/money"
	"github.com/adhamsal/splitkit/internal/storage"
	"github.com/adhamsal/splitkit/internal/storage/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(memory.New(), logger)
}

func createTestGroup(t *testing.T, s *Service, members ...string) *Group {
	t.Helper()
	g, err := s.Create(context.Background(), &CreateGroupRequest{
		Name:     "trip",
		Currency: "USD",
		Members:  members,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return g
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateGroupRequest
	}{
		{"empty name", CreateGroupRequest{Currency: "USD", Members: []string{"alice"}}},
		{"bad currency", CreateGroupRequest{Name: "trip", Currency: "DOLLARS", Members: []string{"alice"}}},
		{"no members", CreateGroupRequest{Name: "trip", Currency: "USD"}},
		{"empty member", CreateGroupRequest{Name: "trip", Currency: "USD", Members: []string{"alice", " "}}},
		{"duplicate member", CreateGroupRequest{Name: "trip", Currency: "USD", Members: []string{"alice", "alice"}}},
	}

	s := newTestService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Create(context.Background(), &tt.req); !errors.Is(err, ErrValidation) {
				t.Errorf("Create error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateAndGet(t *testing.T) {
	s := newTestService(t)
	g := createTestGroup(t, s, "carol", "alice", "bob")

	if g.ID == "" {
		t.Fatal("expected a generated group ID")
	}
	if g.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", g.Currency)
	}

	got, err := s.GetByID(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	// Members come back sorted regardless of request order.
	want := []string{"alice", "bob", "carol"}
	if len(got.Members) != len(want) {
		t.Fatalf("Members = %v, want %v", got.Members, want)
	}
	for i, m := range want {
		if got.Members[i] != m {
			t.Errorf("Members[%d] = %q, want %q", i, got.Members[i], m)
		}
	}

	if _, err := s.GetByID(context.Background(), "missing"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrGroupNotFound", err)
	}
}

func TestAddAndRemoveMember(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	g := createTestGroup(t, s, "alice", "bob")

	if err := s.AddMember(ctx, g.ID, "carol"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := s.AddMember(ctx, g.ID, "carol"); !errors.Is(err, ErrMemberAlreadyExists) {
		t.Errorf("AddMember(duplicate) error = %v, want ErrMemberAlreadyExists", err)
	}

	// A fresh member is settled and can leave immediately.
	if err := s.RemoveMember(ctx, g.ID, "carol"); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	members, err := s.Members(ctx, g.ID)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("Members = %v, want 2 members", members)
	}
}

func TestRemoveMemberWithBalance(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	g := createTestGroup(t, s, "alice", "bob")

	l, err := s.Ledger(ctx, g.ID)
	if err != nil {
		t.Fatalf("Ledger: %v", err)
	}
	total := money.New(10000, "USD")
	shares := []ledger.Share{
		{MemberID: "alice", Amount: money.New(5000, "USD")},
		{MemberID: "bob", Amount: money.New(5000, "USD")},
	}
	if err := l.ApplyExpense("alice", total, shares); err != nil {
		t.Fatalf("ApplyExpense: %v", err)
	}

	if err := s.RemoveMember(ctx, g.ID, "bob"); !errors.Is(err, ledger.ErrMemberHasBalance) {
		t.Fatalf("RemoveMember error = %v, want ErrMemberHasBalance", err)
	}

	// Settling bob's debt makes removal possible.
	if err := l.ApplySettlement("bob", "alice", money.New(5000, "USD")); err != nil {
		t.Fatalf("ApplySettlement: %v", err)
	}
	if err := s.RemoveMember(ctx, g.ID, "bob"); err != nil {
		t.Fatalf("RemoveMember after settling: %v", err)
	}
}

func TestDeleteBlockedByBalances(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	g := createTestGroup(t, s, "alice", "bob")

	l, _ := s.Ledger(ctx, g.ID)
	total := money.New(2000, "USD")
	shares := []ledger.Share{
		{MemberID: "alice", Amount: money.New(1000, "USD")},
		{MemberID: "bob", Amount: money.New(1000, "USD")},
	}
	if err := l.ApplyExpense("alice", total, shares); err != nil {
		t.Fatalf("ApplyExpense: %v", err)
	}

	if err := s.Delete(ctx, g.ID); !errors.Is(err, ErrGroupHasBalances) {
		t.Fatalf("Delete error = %v, want ErrGroupHasBalances", err)
	}

	if err := l.ApplySettlement("bob", "alice", money.New(1000, "USD")); err != nil {
		t.Fatalf("ApplySettlement: %v", err)
	}
	if err := s.Delete(ctx, g.ID); err != nil {
		t.Fatalf("Delete after settling: %v", err)
	}
	if _, err := s.GetByID(ctx, g.ID); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("GetByID after delete error = %v, want ErrGroupNotFound", err)
	}
}

func TestSimplifyDebts(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	g := createTestGroup(t, s, "alice", "bob", "carol")

	l, _ := s.Ledger(ctx, g.ID)
	total := money.New(30000, "USD")
	shares := []ledger.Share{
		{MemberID: "alice", Amount: money.New(10000, "USD")},
		{MemberID: "bob", Amount: money.New(10000, "USD")},
		{MemberID: "carol", Amount: money.New(10000, "USD")},
	}
	if err := l.ApplyExpense("alice", total, shares); err != nil {
		t.Fatalf("ApplyExpense: %v", err)
	}

	plan, err := s.SimplifyDebts(ctx, g.ID)
	if err != nil {
		t.Fatalf("SimplifyDebts: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("plan has %d transactions, want 2", len(plan))
	}
	for _, tx := range plan {
		if tx.To != "alice" {
			t.Errorf("transaction pays %s, want alice", tx.To)
		}
		if tx.Amount.Cents != 10000 {
			t.Errorf("transaction amount = %d, want 10000", tx.Amount.Cents)
		}
	}

	// The plan is advisory and never mutates the ledger.
	balances, _ := s.Balances(ctx, g.ID)
	if balances["alice"].Cents != -20000 {
		t.Errorf("alice balance = %d after simplify, want -20000", balances["alice"].Cents)
	}
}

func TestGroupSummary(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	s := NewService(store, logger)

	g, err := s.Create(ctx, &CreateGroupRequest{
		Name:     "trip",
		Currency: "USD",
		Members:  []string{"alice", "bob", "carol"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	l, _ := s.Ledger(ctx, g.ID)
	total := money.New(30000, "USD")
	shares := []ledger.Share{
		{MemberID: "alice", Amount: money.New(10000, "USD")},
		{MemberID: "bob", Amount: money.New(10000, "USD")},
		{MemberID: "carol", Amount: money.New(10000, "USD")},
	}
	if err := l.ApplyExpense("alice", total, shares); err != nil {
		t.Fatalf("ApplyExpense: %v", err)
	}
	if err := store.AppendExpense(ctx, &storage.Expense{
		GroupID:    g.ID,
		PayerID:    "alice",
		TotalCents: 30000,
		Currency:   "USD",
		SplitType:  "EQUAL",
	}); err != nil {
		t.Fatalf("AppendExpense: %v", err)
	}

	sum, err := s.Summary(ctx, g.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Group.ID != g.ID {
		t.Errorf("Group.ID = %q, want %q", sum.Group.ID, g.ID)
	}
	if sum.ExpenseCount != 1 {
		t.Errorf("ExpenseCount = %d, want 1", sum.ExpenseCount)
	}
	if sum.TotalSpent.Cents != 30000 {
		t.Errorf("TotalSpent = %d, want 30000", sum.TotalSpent.Cents)
	}
	if len(sum.SettlePlan) != 2 {
		t.Errorf("settle plan has %d transactions, want 2", len(sum.SettlePlan))
	}
	if sum.Balances["alice"].Cents != -20000 {
		t.Errorf("alice balance = %d, want -20000", sum.Balances["alice"].Cents)
	}

	resp := sum.ToResponse()
	if resp.MemberCount != 3 {
		t.Errorf("MemberCount = %d, want 3", resp.MemberCount)
	}
	if resp.TotalSpent != "300.00" {
		t.Errorf("TotalSpent = %q, want %q", resp.TotalSpent, "300.00")
	}

	if _, err := s.Summary(ctx, "missing"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("Summary(missing) error = %v, want ErrGroupNotFound", err)
	}
}

func TestMemberDebtSummary(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	g := createTestGroup(t, s, "alice", "bob", "carol")

	l, _ := s.Ledger(ctx, g.ID)
	total := money.New(30000, "USD")
	shares := []ledger.Share{
		{MemberID: "alice", Amount: money.New(10000, "USD")},
		{MemberID: "bob", Amount: money.New(10000, "USD")},
		{MemberID: "carol", Amount: money.New(10000, "USD")},
	}
	if err := l.ApplyExpense("alice", total, shares); err != nil {
		t.Fatalf("ApplyExpense: %v", err)
	}

	bob, err := s.MemberDebtSummary(ctx, g.ID, "bob")
	if err != nil {
		t.Fatalf("MemberDebtSummary(bob): %v", err)
	}
	if len(bob.OwesTo) != 1 || bob.OwesTo[0].To != "alice" || bob.OwesTo[0].Amount.Cents != 10000 {
		t.Errorf("bob OwesTo = %+v, want one 10000 payment to alice", bob.OwesTo)
	}
	if len(bob.OwedBy) != 0 {
		t.Errorf("bob OwedBy = %+v, want none", bob.OwedBy)
	}
	if bob.Net.Cents != 10000 {
		t.Errorf("bob net = %d, want 10000", bob.Net.Cents)
	}

	alice, err := s.MemberDebtSummary(ctx, g.ID, "alice")
	if err != nil {
		t.Fatalf("MemberDebtSummary(alice): %v", err)
	}
	if len(alice.OwedBy) != 2 || alice.TotalOwed.Cents != 20000 {
		t.Errorf("alice OwedBy = %+v (total %d), want two payments totalling 20000",
			alice.OwedBy, alice.TotalOwed.Cents)
	}
	// The net under the plan always matches the ledger balance.
	if alice.Net.Cents != -20000 {
		t.Errorf("alice net = %d, want -20000", alice.Net.Cents)
	}

	if _, err := s.MemberDebtSummary(ctx, g.ID, "mallory"); !errors.Is(err, ledger.ErrUnknownMember) {
		t.Errorf("MemberDebtSummary(mallory) error = %v, want ErrUnknownMember", err)
	}
}

func TestBalanceResponsesFromSingleSnapshot(t *testing.T) {
	balances := map[string]money.Money{
		"carol": money.New(0, "USD"),
		"alice": money.New(-500, "USD"),
		"bob":   money.New(500, "USD"),
	}

	got := toBalanceResponses(balances)
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	wantOrder := []string{"alice", "bob", "carol"}
	for i, r := range got {
		if r.MemberID != wantOrder[i] {
			t.Errorf("entry %d member = %q, want %q", i, r.MemberID, wantOrder[i])
		}
		// Every entry is rendered from the snapshot, so the currency is
		// always the ledger's, even for members with a zero balance.
		if r.Currency != "USD" {
			t.Errorf("entry %d currency = %q, want USD", i, r.Currency)
		}
	}
	if got[0].AmountCents != -500 || got[0].Amount != "-5.00" {
		t.Errorf("alice entry = %d %q, want -500 %q", got[0].AmountCents, got[0].Amount, "-5.00")
	}
}

func TestLedgerPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()

	s1 := NewService(store, logger)
	g, err := s1.Create(ctx, &CreateGroupRequest{Name: "trip", Currency: "EUR", Members: []string{"alice", "bob"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	l, _ := s1.Ledger(ctx, g.ID)
	total := money.New(5000, "EUR")
	shares := []ledger.Share{
		{MemberID: "alice", Amount: money.New(2500, "EUR")},
		{MemberID: "bob", Amount: money.New(2500, "EUR")},
	}
	if err := l.ApplyExpense("alice", total, shares); err != nil {
		t.Fatalf("ApplyExpense: %v", err)
	}
	s1.PersistLedger(ctx, g.ID, l)

	// A second service over the same store restores the snapshot.
	s2 := NewService(store, logger)
	balances, err := s2.Balances(ctx, g.ID)
	if err != nil {
		t.Fatalf("Balances from restored ledger: %v", err)
	}
	if balances["alice"].Cents != -2500 {
		t.Errorf("alice balance = %d, want -2500", balances["alice"].Cents)
	}
	if balances["bob"].Cents != 2500 {
		t.Errorf("bob balance = %d, want 2500", balances["bob"].Cents)
	}
}
