// Package sqlite provides a SQLite-backed implementation of storage.Store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/adhamsal/splitkit/internal/storage"
)

var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store on a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at the given path, creating parent
// directories and running migrations.
func New(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateGroup persists a new group and its member list.
func (s *SQLiteStore) CreateGroup(ctx context.Context, g *storage.Group) error {
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

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, description, currency, created_at) VALUES (?, ?, ?, ?, ?)",
		g.ID, g.Name, g.Description, g.Currency, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	for _, m := range g.Members {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, member_id) VALUES (?, ?)",
			g.ID, m,
		); err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}
	return tx.Commit()
}

// GetGroup retrieves a group and its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*storage.Group, error) {
	g := &storage.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, currency, created_at FROM groups WHERE id = ?", id,
	).Scan(&g.ID, &g.Name, &g.Description, &g.Currency, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id FROM group_members WHERE group_id = ? ORDER BY member_id", id,
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
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*storage.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, currency, created_at FROM groups ORDER BY created_at DESC, id",
	)
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

// DeleteGroup removes a group; cascades take the rest.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id)
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
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, memberID string) error {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO group_members (group_id, member_id) VALUES (?, ?)",
		groupID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveGroupMember deletes a member row.
func (s *SQLiteStore) RemoveGroupMember(ctx context.Context, groupID, memberID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND member_id = ?",
		groupID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// SaveLedger replaces the persisted balance snapshot for a group.
func (s *SQLiteStore) SaveLedger(ctx context.Context, groupID string, balances map[string]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM ledger_balances WHERE group_id = ?", groupID,
	); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	for m, cents := range balances {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO ledger_balances (group_id, member_id, balance_cents) VALUES (?, ?, ?)",
			groupID, m, cents,
		); err != nil {
			return fmt.Errorf("failed to insert balance: %w", err)
		}
	}
	return tx.Commit()
}

// LoadLedger returns the persisted balance snapshot for a group.
func (s *SQLiteStore) LoadLedger(ctx context.Context, groupID string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, balance_cents FROM ledger_balances WHERE group_id = ?", groupID,
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
func (s *SQLiteStore) AppendExpense(ctx context.Context, e *storage.Expense) error {
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

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, payer_id, description, total_cents, currency, split_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.GroupID, e.PayerID, e.Description, e.TotalCents, e.Currency, e.SplitType, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	for i, share := range e.Shares {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, member_id, amount_cents, position) VALUES (?, ?, ?, ?)",
			e.ID, share.MemberID, share.AmountCents, i,
		); err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}
	return tx.Commit()
}

// ListExpensesByGroup returns a group's expenses, oldest first, with shares
// in their original order.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*storage.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, description, total_cents, currency, split_type, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at, id`, groupID,
	)
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
			"SELECT member_id, amount_cents FROM expense_shares WHERE expense_id = ? ORDER BY position", e.ID,
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
func (s *SQLiteStore) AppendSettlement(ctx context.Context, st *storage.Settlement) error {
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	if st.CreatedAt == 0 {
		st.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, group_id, payer_id, payee_id, amount_cents, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.GroupID, st.PayerID, st.PayeeID, st.AmountCents, st.Note, st.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// ListSettlementsByGroup returns a group's settlements, oldest first.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*storage.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, payee_id, amount_cents, note, created_at
		 FROM settlements WHERE group_id = ? ORDER BY created_at, id`, groupID,
	)
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
