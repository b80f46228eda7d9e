package group

import (
	"sort"

	"github.com/adhamsal/splitkit/internal/money"
	"github.com/adhamsal/splitkit/internal/simplify"
)

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description string   `json:"description,omitempty"`
	Currency    string   `json:"currency" validate:"required,len=3"`
	Members     []string `json:"members" validate:"required,min=1"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	MemberID string `json:"member_id" validate:"required"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Currency    string   `json:"currency"`
	Members     []string `json:"members"`
	CreatedAt   string   `json:"created_at"`
}

// BalanceResponse is one member's net position. A positive amount means
// the member owes the group; a negative amount means the group owes them.
type BalanceResponse struct {
	MemberID    string `json:"member_id"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

// TransactionResponse is one payment of a settlement plan.
type TransactionResponse struct {
	From        string `json:"from"`
	To          string `json:"to"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

// DebtEntry is one settle-plan edge touching a member.
type DebtEntry struct {
	MemberID    string `json:"member_id"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

// DebtSummaryResponse represents one member's settle-plan position
type DebtSummaryResponse struct {
	MemberID       string       `json:"member_id"`
	OwesTo         []*DebtEntry `json:"owes_to"`
	OwedBy         []*DebtEntry `json:"owed_by"`
	TotalOwesCents int64        `json:"total_owes_cents"`
	TotalOwes      string       `json:"total_owes"`
	TotalOwedCents int64        `json:"total_owed_cents"`
	TotalOwed      string       `json:"total_owed"`
	NetCents       int64        `json:"net_cents"`
	Net            string       `json:"net"`
	Currency       string       `json:"currency"`
}

// GroupSummaryResponse represents the aggregate view of a group
type GroupSummaryResponse struct {
	Group           *GroupResponse         `json:"group"`
	Balances        []*BalanceResponse     `json:"balances"`
	SimplifiedDebts []*TransactionResponse `json:"simplified_debts"`
	ExpenseCount    int                    `json:"expense_count"`
	TotalSpentCents int64                  `json:"total_spent_cents"`
	TotalSpent      string                 `json:"total_spent"`
	MemberCount     int                    `json:"member_count"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Currency:    g.Currency,
		Members:     g.Members,
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// toBalanceResponses renders one ledger snapshot. The member list comes
// from the snapshot itself so every entry carries a real balance.
func toBalanceResponses(balances map[string]money.Money) []*BalanceResponse {
	members := make([]string, 0, len(balances))
	for id := range balances {
		members = append(members, id)
	}
	sort.Strings(members)

	out := make([]*BalanceResponse, 0, len(members))
	for _, id := range members {
		b := balances[id]
		out = append(out, &BalanceResponse{
			MemberID:    id,
			AmountCents: b.Cents,
			Amount:      money.FormatCents(b.Cents),
			Currency:    b.Currency,
		})
	}
	return out
}

// ToResponse converts a Summary model to a GroupSummaryResponse DTO
func (s *Summary) ToResponse() *GroupSummaryResponse {
	return &GroupSummaryResponse{
		Group:           s.Group.ToResponse(),
		Balances:        toBalanceResponses(s.Balances),
		SimplifiedDebts: toTransactionResponses(s.SettlePlan),
		ExpenseCount:    s.ExpenseCount,
		TotalSpentCents: s.TotalSpent.Cents,
		TotalSpent:      money.FormatCents(s.TotalSpent.Cents),
		MemberCount:     len(s.Group.Members),
	}
}

// ToResponse converts a DebtSummary model to a DebtSummaryResponse DTO
func (d *DebtSummary) ToResponse() *DebtSummaryResponse {
	owesTo := make([]*DebtEntry, len(d.OwesTo))
	for i, tx := range d.OwesTo {
		owesTo[i] = &DebtEntry{
			MemberID:    tx.To,
			AmountCents: tx.Amount.Cents,
			Amount:      money.FormatCents(tx.Amount.Cents),
		}
	}
	owedBy := make([]*DebtEntry, len(d.OwedBy))
	for i, tx := range d.OwedBy {
		owedBy[i] = &DebtEntry{
			MemberID:    tx.From,
			AmountCents: tx.Amount.Cents,
			Amount:      money.FormatCents(tx.Amount.Cents),
		}
	}
	return &DebtSummaryResponse{
		MemberID:       d.MemberID,
		OwesTo:         owesTo,
		OwedBy:         owedBy,
		TotalOwesCents: d.TotalOwes.Cents,
		TotalOwes:      money.FormatCents(d.TotalOwes.Cents),
		TotalOwedCents: d.TotalOwed.Cents,
		TotalOwed:      money.FormatCents(d.TotalOwed.Cents),
		NetCents:       d.Net.Cents,
		Net:            money.FormatCents(d.Net.Cents),
		Currency:       d.TotalOwes.Currency,
	}
}

func toTransactionResponses(plan []simplify.Transaction) []*TransactionResponse {
	out := make([]*TransactionResponse, len(plan))
	for i, t := range plan {
		out[i] = &TransactionResponse{
			From:        t.From,
			To:          t.To,
			AmountCents: t.Amount.Cents,
			Amount:      money.FormatCents(t.Amount.Cents),
			Currency:    t.Amount.Currency,
		}
	}
	return out
}
