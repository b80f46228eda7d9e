// Package postgres provides a Postgres-backed implementation of
// storage.Store using lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // Postgres driver

	"github.com/adhamsal/splitkit/internal/storage"
)

var _ storage.Store = (*PostgresStore)(nil)

// PostgresStore implements storage.Store on a Postgres database.
type PostgresStore struct {
	db *sql.DB
}

// New connects to the database at the given URL, verifies the connection
// and ensures the schema exists.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// CreateGroup persists a new group and its member list.
func (s *PostgresStore) CreateGroup(ctx context.Context, g *storage.Group) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO groups (id, name, description, currency, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, query, g.ID, g.Name, g.Description, g.Currency, g.CreatedAt); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	for _, m := range g.Members {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, member_id) VALUES ($1, $2)",
			g.ID, m,
		); err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
	}
	return tx.Commit()
}

// GetGroup retrieves a group by its ID.
func (s *PostgresStore) GetGroup(ctx context.Context, id string) (*storage.Group, error) {
	query := `
		SELECT id, name, description, currency, created_at
		FROM groups
		WHERE id = $1
	`
	g := &storage.Group{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.Currency,
		&g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id FROM group_members WHERE group_id = $1 ORDER BY member_id", id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		g.Members = append(g.Members, m)
	}
	return g, rows.Err()
}

// ListGroups returns all groups, newest first.
func (s *PostgresStore) ListGroups(ctx context.Context) ([]*storage.Group, error) {
	query := `
		SELECT id, name, description, currency, created_at
		FROM groups
		ORDER BY created_at DESC, id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*storage.Group
	for rows.Next() {
		g := &storage.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Currency, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, g := range groups {
		full, err := s.GetGroup(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		g.Members = full.Members
	}
	return groups, nil
}

// DeleteGroup removes a group; foreign keys cascade to the rest.
func (s *PostgresStore) DeleteGroup(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// AddGroupMember inserts a member, ignoring duplicates.
func (s *PostgresStore) AddGroupMember(ctx context.Context, groupID, memberID string) error {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO group_members (group_id, member_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		groupID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveGroupMember deletes a member row.
func (s *PostgresStore) RemoveGroupMember(ctx context.Context, groupID, memberID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = $1 AND member_id = $2",
		groupID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// SaveLedger replaces the persisted balance snapshot for a group.
func (s *PostgresStore) SaveLedger(ctx context.Context, groupID string, balances map[string]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM ledger_balances WHERE group_id = $1", groupID,
	); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	for m, cents := range balances {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO ledger_balances (group_id, member_id, balance_cents) VALUES ($1, $2, $3)",
			groupID, m, cents,
		); err != nil {
			return fmt.Errorf("failed to insert balance: %w", err)
		}
	}
	return tx.Commit()
}

// LoadLedger returns the persisted balance snapshot for a group.
func (s *PostgresStore) LoadLedger(ctx context.Context, groupID string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, balance_cents FROM ledger_balances WHERE group_id = $1", groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]int64)
	for rows.Next() {
		var m string
		var cents int64
		if err := rows.Scan(&m, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances[m] = cents
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(balances) == 0 {
		return nil, fmt.Errorf("ledger for group %s: %w", groupID, storage.ErrNotFound)
	}
	return balances, nil
}

// AppendExpense records an immutable expense with its shares.
func (s *PostgresStore) AppendExpense(ctx context.Context, e *storage.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (id, group_id, payer_id, description, total_cents, currency, split_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, query,
		e.ID, e.GroupID, e.PayerID, e.Description, e.TotalCents, e.Currency, e.SplitType, e.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	for i, share := range e.Shares {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, member_id, amount_cents, position) VALUES ($1, $2, $3, $4)",
			e.ID, share.MemberID, share.AmountCents, i,
		); err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}
	return tx.Commit()
}

// ListExpensesByGroup returns a group's expenses, oldest first.
func (s *PostgresStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*storage.Expense, error) {
	query := `
		SELECT id, group_id, payer_id, description, total_cents, currency, split_type, created_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*storage.Expense
	for rows.Next() {
		e := &storage.Expense{}
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PayerID, &e.Description,
			&e.TotalCents, &e.Currency, &e.SplitType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range expenses {
		shareRows, err := s.db.QueryContext(ctx,
			"SELECT member_id, amount_cents FROM expense_shares WHERE expense_id = $1 ORDER BY position", e.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list shares: %w", err)
		}
		for shareRows.Next() {
			var share storage.Share
			if err := shareRows.Scan(&share.MemberID, &share.AmountCents); err != nil {
				shareRows.Close()
				return nil, fmt.Errorf("failed to scan share: %w", err)
			}
			e.Shares = append(e.Shares, share)
		}
		if err := shareRows.Err(); err != nil {
			shareRows.Close()
			return nil, err
		}
		shareRows.Close()
	}
	return expenses, nil
}

// AppendSettlement records an immutable settlement.
func (s *PostgresStore) AppendSettlement(ctx context.Context, st *storage.Settlement) error {
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	if st.CreatedAt == 0 {
		st.CreatedAt = time.Now().Unix()
	}
	query := `
		INSERT INTO settlements (id, group_id, payer_id, payee_id, amount_cents, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := s.db.ExecContext(ctx, query,
		st.ID, st.GroupID, st.PayerID, st.PayeeID, st.AmountCents, st.Note, st.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// ListSettlementsByGroup returns a group's settlements, oldest first.
func (s *PostgresStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*storage.Settlement, error) {
	query := `
		SELECT id, group_id, payer_id, payee_id, amount_cents, note, created_at
		FROM settlements
		WHERE group_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*storage.Settlement
	for rows.Next() {
		st := &storage.Settlement{}
		if err := rows.Scan(&st.ID, &st.GroupID, &st.PayerID, &st.PayeeID,
			&st.AmountCents, &st.Note, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, st)
	}
	return settlements, rows.Err()
}
