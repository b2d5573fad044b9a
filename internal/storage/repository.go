package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"outlay/internal/core"
	"outlay/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists expenses in a local SQLite file. Amounts are
// stored as fixed-point decimal strings and dates as ISO strings, so values
// survive the round trip exactly and lexicographic date order matches
// chronological order.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Gateway = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
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

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertExpense stores a validated expense and returns it with its row ID
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.ExpenseCreate) (core.Expense, error) {
	createdAt := time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (amount, description, expense_date, category, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Amount.StringFixed(2), e.Description, e.Date.String(), e.Category, createdAt,
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("read insert id: %w", err)
	}

	saved := core.Expense{
		ID:          id,
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date,
		Category:    e.Category,
		CreatedAt:   createdAt,
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", saved.ID,
		"description", saved.Description,
		"amount", saved.Amount.StringFixed(2),
		"date", saved.Date.String())

	return saved, nil
}

// GetExpense retrieves a single expense by ID. A missing row is reported
// through the bool, not as an error.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, amount, description, expense_date, category, created_at
		 FROM expenses WHERE id = ?`, id)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, false, nil
	}
	if err != nil {
		return core.Expense{}, false, fmt.Errorf("get expense: %w", err)
	}

	return e, true, nil
}

// ListExpenses returns all expenses ordered by the given field. Rows sharing
// a field value come back in insertion order.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, orderBy ledger.SortField, descending bool) ([]core.Expense, error) {
	clause, err := orderClause(orderBy, descending)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, description, expense_date, category, created_at
		 FROM expenses ORDER BY `+clause)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

// DeleteExpense removes an expense by ID and reports whether a row existed
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count deleted rows: %w", err)
	}

	return affected > 0, nil
}

// PendingExportExpenses returns expenses not yet written to the export
// sheet, oldest first
func (r *SQLiteRepository) PendingExportExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, description, expense_date, category, created_at
		 FROM expenses WHERE export_state = 'pending' ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending export expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

// MarkExported marks an expense as successfully exported
func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET export_state = 'exported', exported_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark expense exported: %w", err)
	}

	slog.InfoContext(ctx, "Expense marked as exported", "id", id)
	return nil
}

// MarkExportError marks an expense as having export errors
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET export_state = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark expense export error: %w", err)
	}

	slog.WarnContext(ctx, "Expense marked with export error", "id", id)
	return nil
}

func orderClause(orderBy ledger.SortField, descending bool) (string, error) {
	var column string
	switch orderBy {
	case ledger.SortByExpenseDate:
		column = "expense_date"
	case ledger.SortByCreatedAt:
		column = "created_at"
	default:
		return "", fmt.Errorf("unsupported sort field: %s", orderBy)
	}

	direction := "ASC"
	if descending {
		direction = "DESC"
	}

	return fmt.Sprintf("%s %s, id ASC", column, direction), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e      core.Expense
		amount string
		date   string
	)
	if err := row.Scan(&e.ID, &amount, &e.Description, &date, &e.Category, &e.CreatedAt); err != nil {
		return core.Expense{}, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	e.Amount = parsed

	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	e.Date = d

	return e, nil
}
