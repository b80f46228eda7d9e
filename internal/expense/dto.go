package expense

import (
	"fmt"

	"github.com/adhamsal/splitkit/internal/expense/split"
	"github.com/adhamsal/splitkit/internal/money"
)

// ExpenseParticipant is one member of the split with the parameter the
// chosen split type needs. Amounts and percentages arrive as decimal
// strings so no float ever touches the money path.
type ExpenseParticipant struct {
	MemberID string  `json:"member_id" validate:"required"`
	Amount   *string `json:"amount,omitempty"`  // For EXACT splits, e.g. "12.50"
	Percent  *string `json:"percent,omitempty"` // For PERCENTAGE splits, e.g. "33.33"
}

// ToSplitParticipant converts the wire participant into split inputs,
// parsing decimal strings into cents and basis points.
func (p *ExpenseParticipant) ToSplitParticipant() (split.Participant, error) {
	out := split.Participant{MemberID: p.MemberID}
	if p.Amount != nil {
		cents, err := money.ParseDecimalToCents(*p.Amount)
		if err != nil {
			return split.Participant{}, fmt.Errorf("amount for %s: %w", p.MemberID, err)
		}
		out.AmountCents = &cents
	}
	if p.Percent != nil {
		// A percent with two decimals maps 1:1 onto basis points.
		bps, err := money.ParseDecimalToCents(*p.Percent)
		if err != nil {
			return split.Participant{}, fmt.Errorf("percent for %s: %w", p.MemberID, err)
		}
		out.BasisPoints = &bps
	}
	return out, nil
}

// CreateExpenseRequest represents the request to create an expense
type CreateExpenseRequest struct {
	GroupID      string                `json:"group_id" validate:"required"`
	PayerID      string                `json:"payer_id" validate:"required"`
	Description  string                `json:"description" validate:"required,min=1,max=255"`
	Amount       string                `json:"amount" validate:"required"`
	Currency     string                `json:"currency,omitempty"`
	SplitType    string                `json:"split_type" validate:"required,oneof=EQUAL EXACT PERCENTAGE"`
	Participants []*ExpenseParticipant `json:"participants" validate:"required,min=1"`
}

// ShareResponse is one member's computed portion of an expense.
type ShareResponse struct {
	MemberID    string `json:"member_id"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID          string           `json:"id"`
	GroupID     string           `json:"group_id"`
	PayerID     string           `json:"payer_id"`
	Description string           `json:"description"`
	AmountCents int64            `json:"amount_cents"`
	Amount      string           `json:"amount"`
	Currency    string           `json:"currency"`
	SplitType   string           `json:"split_type"`
	Shares      []*ShareResponse `json:"shares"`
	CreatedAt   string           `json:"created_at"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	shares := make([]*ShareResponse, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = &ShareResponse{
			MemberID:    s.MemberID,
			AmountCents: s.Amount.Cents,
			Amount:      money.FormatCents(s.Amount.Cents),
		}
	}
	return &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Description: e.Description,
		AmountCents: e.Total.Cents,
		Amount:      money.FormatCents(e.Total.Cents),
		Currency:    e.Total.Currency,
		SplitType:   string(e.SplitType),
		Shares:      shares,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
