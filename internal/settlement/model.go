package settlement

import (
	"time"

	"github.com/adhamsal/splitkit/internal/money"
	"github.com/adhamsal/splitkit/internal/storage"
)

// Settlement is an immutable record of a direct payment between two
// members. Settlements may exceed what the payer currently owes; the
// surplus simply flips their balance.
type Settlement struct {
	ID        string
	GroupID   string
	PayerID   string
	PayeeID   string
	Amount    money.Money
	Note      string
	CreatedAt time.Time
}

func fromRecord(rec *storage.Settlement, currency string) *Settlement {
	return &Settlement{
		ID:        rec.ID,
		GroupID:   rec.GroupID,
		PayerID:   rec.PayerID,
		PayeeID:   rec.PayeeID,
		Amount:    money.New(rec.AmountCents, currency),
		Note:      rec.Note,
		CreatedAt: time.Unix(rec.CreatedAt, 0).UTC(),
	}
}

func (s *Settlement) toRecord() *storage.Settlement {
	return &storage.Settlement{
		ID:          s.ID,
		GroupID:     s.GroupID,
		PayerID:     s.PayerID,
		PayeeID:     s.PayeeID,
		AmountCents: s.Amount.Cents,
		Note:        s.Note,
		CreatedAt:   s.CreatedAt.Unix(),
	}
}
