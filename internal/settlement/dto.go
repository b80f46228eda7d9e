package settlement

import "github.com/adhamsal/splitkit/internal/money"

// CreateSettlementRequest represents the request to record a settlement
type CreateSettlementRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	PayerID string `json:"payer_id" validate:"required"`
	PayeeID string `json:"payee_id" validate:"required"`
	Amount  string `json:"amount" validate:"required"`
	Note    string `json:"note,omitempty" validate:"omitempty,max=255"`
}

// SettlementResponse represents the response for a settlement
type SettlementResponse struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	PayerID     string `json:"payer_id"`
	PayeeID     string `json:"payee_id"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Note        string `json:"note,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ToResponse converts a Settlement model to a SettlementResponse DTO
func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		ID:          s.ID,
		GroupID:     s.GroupID,
		PayerID:     s.PayerID,
		PayeeID:     s.PayeeID,
		AmountCents: s.Amount.Cents,
		Amount:      money.FormatCents(s.Amount.Cents),
		Currency:    s.Amount.Currency,
		Note:        s.Note,
		CreatedAt:   s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
