package group

import (
	"time"

	"github.com/adhamsal/splitkit/internal/storage"
)

// Group represents a group of members sharing expenses in one currency.
type Group struct {
	ID          string
	Name        string
	Description string
	Currency    string
	Members     []string
	CreatedAt   time.Time
}

func fromRecord(rec *storage.Group) *Group {
	members := make([]string, len(rec.Members))
	copy(members, rec.Members)
	return &Group{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Currency:    rec.Currency,
		Members:     members,
		CreatedAt:   time.Unix(rec.CreatedAt, 0).UTC(),
	}
}

func (g *Group) toRecord() *storage.Group {
	members := make([]string, len(g.Members))
	copy(members, g.Members)
	return &storage.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Currency:    g.Currency,
		Members:     members,
		CreatedAt:   g.CreatedAt.Unix(),
	}
}
