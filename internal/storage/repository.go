// Package storage persists the last authoritative snapshot of each
// collection to SQLite. The worker writes a snapshot after every
// successful refresh; on startup the caches are warmed from here so the
// app has data before the first spreadsheet round trip.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"carteira/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshot reports that no snapshot has been persisted for the
// requested year yet.
var ErrNoSnapshot = errors.New("no snapshot for year")

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(dbPath string) (*SnapshotRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SnapshotRepository{db: db}, nil
}

func (r *SnapshotRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// replaceYear runs fn inside a transaction that has already cleared the
// year's rows from the given tables. Snapshots are whole-year replaces,
// never incremental updates.
func (r *SnapshotRepository) replaceYear(ctx context.Context, year string, tables []string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE year = ?", year); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SnapshotRepository) SaveCommitments(ctx context.Context, year string, records []core.Commitment) error {
	return r.replaceYear(ctx, year, []string{"commitments"}, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO commitments (year, row_index, description, category, amount_cents,
				due_date, payment_date, type, card_name, installment, total_installments)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range records {
			if _, err := stmt.ExecContext(ctx, year, c.RowIndex, c.Description, c.Category,
				c.Amount.Cents, c.DueDate, c.PaymentDate, string(c.Type), c.CardName,
				c.Installment, c.TotalInstallments); err != nil {
				return fmt.Errorf("insert commitment row %d: %w", c.RowIndex, err)
			}
		}
		return nil
	})
}

func (r *SnapshotRepository) LoadCommitments(ctx context.Context, year string) ([]core.Commitment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT row_index, description, category, amount_cents, due_date,
			payment_date, type, card_name, installment, total_installments
		FROM commitments WHERE year = ? ORDER BY row_index`, year)
	if err != nil {
		return nil, fmt.Errorf("query commitments: %w", err)
	}
	defer rows.Close()

	var out []core.Commitment
	for rows.Next() {
		var c core.Commitment
		var typ string
		if err := rows.Scan(&c.RowIndex, &c.Description, &c.Category, &c.Amount.Cents,
			&c.DueDate, &c.PaymentDate, &typ, &c.CardName,
			&c.Installment, &c.TotalInstallments); err != nil {
			return nil, fmt.Errorf("scan commitment: %w", err)
		}
		c.Type = core.CommitmentType(typ)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SnapshotRepository) SaveExpenses(ctx context.Context, year string, records []core.Expense) error {
	return r.replaceYear(ctx, year, []string{"expenses"}, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO expenses (year, row_index, description, category, amount_cents, payment_date)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range records {
			if _, err := stmt.ExecContext(ctx, year, e.RowIndex, e.Description, e.Category,
				e.Amount.Cents, e.PaymentDate); err != nil {
				return fmt.Errorf("insert expense row %d: %w", e.RowIndex, err)
			}
		}
		return nil
	})
}

func (r *SnapshotRepository) LoadExpenses(ctx context.Context, year string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT row_index, description, category, amount_cents, payment_date
		FROM expenses WHERE year = ? ORDER BY row_index`, year)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.RowIndex, &e.Description, &e.Category,
			&e.Amount.Cents, &e.PaymentDate); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SnapshotRepository) SaveIncomes(ctx context.Context, year string, records []core.Income) error {
	return r.replaceYear(ctx, year, []string{"incomes"}, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO incomes (year, row_index, description, category, amount_cents, expected_date, received_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, i := range records {
			if _, err := stmt.ExecContext(ctx, year, i.RowIndex, i.Description, i.Category,
				i.Amount.Cents, i.ExpectedDate, i.ReceivedDate); err != nil {
				return fmt.Errorf("insert income row %d: %w", i.RowIndex, err)
			}
		}
		return nil
	})
}

func (r *SnapshotRepository) LoadIncomes(ctx context.Context, year string) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT row_index, description, category, amount_cents, expected_date, received_date
		FROM incomes WHERE year = ? ORDER BY row_index`, year)
	if err != nil {
		return nil, fmt.Errorf("query incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var i core.Income
		if err := rows.Scan(&i.RowIndex, &i.Description, &i.Category, &i.Amount.Cents,
			&i.ExpectedDate, &i.ReceivedDate); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *SnapshotRepository) SaveDashboard(ctx context.Context, year string, d core.Dashboard) error {
	tables := []string{"dashboard_months", "dashboard_categories", "dashboard_cards"}
	return r.replaceYear(ctx, year, tables, func(tx *sql.Tx) error {
		for pos, mb := range d.MonthlyBalance {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO dashboard_months (year, position, month, balance_cents)
				VALUES (?, ?, ?, ?)`,
				year, pos, mb.Date, mb.Balance.Cents); err != nil {
				return fmt.Errorf("insert month %s: %w", mb.Date, err)
			}
		}
		for category, total := range d.TopCategories {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO dashboard_categories (year, category, total_cents)
				VALUES (?, ?, ?)`,
				year, category, total.Cents); err != nil {
				return fmt.Errorf("insert category %s: %w", category, err)
			}
		}
		for name, card := range d.Cards {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO dashboard_cards (year, card_name, total_limit_cents,
					available_limit_cents, statement_total_cents, used_percentage)
				VALUES (?, ?, ?, ?, ?, ?)`,
				year, name, card.TotalLimit.Cents, card.AvailableLimit.Cents,
				card.StatementTotal.Cents, card.UsedPercentage); err != nil {
				return fmt.Errorf("insert card %s: %w", name, err)
			}
		}
		return nil
	})
}

func (r *SnapshotRepository) LoadDashboard(ctx context.Context, year string) (core.Dashboard, error) {
	d := core.Dashboard{
		TopCategories: make(map[string]core.Money),
		Cards:         make(map[string]core.CardSummary),
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT month, balance_cents FROM dashboard_months
		WHERE year = ? ORDER BY position`, year)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("query months: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var mb core.MonthBalance
		if err := rows.Scan(&mb.Date, &mb.Balance.Cents); err != nil {
			return core.Dashboard{}, fmt.Errorf("scan month: %w", err)
		}
		d.MonthlyBalance = append(d.MonthlyBalance, mb)
	}
	if err := rows.Err(); err != nil {
		return core.Dashboard{}, err
	}
	if len(d.MonthlyBalance) == 0 {
		return core.Dashboard{}, fmt.Errorf("%w: %s", ErrNoSnapshot, year)
	}

	catRows, err := r.db.QueryContext(ctx, `
		SELECT category, total_cents FROM dashboard_categories WHERE year = ?`, year)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("query categories: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var category string
		var cents int64
		if err := catRows.Scan(&category, &cents); err != nil {
			return core.Dashboard{}, fmt.Errorf("scan category: %w", err)
		}
		d.TopCategories[category] = core.Money{Cents: cents}
	}
	if err := catRows.Err(); err != nil {
		return core.Dashboard{}, err
	}

	cardRows, err := r.db.QueryContext(ctx, `
		SELECT card_name, total_limit_cents, available_limit_cents,
			statement_total_cents, used_percentage
		FROM dashboard_cards WHERE year = ?`, year)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("query cards: %w", err)
	}
	defer cardRows.Close()
	for cardRows.Next() {
		var name string
		var card core.CardSummary
		if err := cardRows.Scan(&name, &card.TotalLimit.Cents, &card.AvailableLimit.Cents,
			&card.StatementTotal.Cents, &card.UsedPercentage); err != nil {
			return core.Dashboard{}, fmt.Errorf("scan card: %w", err)
		}
		d.Cards[name] = card
	}
	return d, cardRows.Err()
}
