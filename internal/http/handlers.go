package http

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"outlay/internal/core"
)

// commonCategories is what the add-expense form suggests. Storage stays
// free-form; these are only datalist entries.
var commonCategories = []string{
	"Food", "Transport", "Utilities", "Entertainment", "Healthcare", "Shopping", "Other",
}

// summaryView is the cached, render-ready form of the summary partial.
type summaryView struct {
	Total     string
	TopName   string
	TopAmount string
	Rows      []categoryRow
}

type categoryRow struct {
	Name   string
	Amount string
	Width  int
}

type expenseRow struct {
	ID          int64
	Date        string
	Description string
	Amount      string
	Category    string
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady probes the gateway with a cheap single-row lookup. ID 0 is
// never issued, so the answer is always "absent" when storage works.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, _, err := s.ledger.GetByID(ctx, 0); err != nil {
		slog.ErrorContext(r.Context(), "Readiness probe failed", "error", err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		Today      string
		Categories []string
	}{
		Today:      core.Today().String(),
		Categories: commonCategories,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleCreateExpense validates the form at the boundary and hands a clean
// ExpenseCreate to the ledger. Validation failures come back as 422 with an
// inline error fragment; only storage failures are 500.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError(http.MethodPost).Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	amountStr := strings.TrimSpace(r.Form.Get("amount"))
	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	date := core.Today()
	if v := strings.TrimSpace(r.Form.Get("date")); v != "" {
		date, err = core.ParseDate(v)
		if err != nil {
			UnprocessableEntityError("Invalid date, use YYYY-MM-DD").Write(w)
			return
		}
	}

	input := core.ExpenseCreate{
		Amount:      amount,
		Description: sanitizeInput(r.Form.Get("description")),
		Date:        date,
		Category:    sanitizeInput(r.Form.Get("category")),
	}
	if err := input.Validate(); err != nil {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	saved, err := s.ledger.Create(r.Context(), input)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense create error", "error", err, "description", input.Description)
		InternalServerError("Failed to save expense").
			TriggerErrorNotification("Failed to save expense").
			Write(w)
		return
	}

	s.invalidateViews()

	NewHTMXResponse().
		TriggerFormReset().
		TriggerExpensesChanged().
		TriggerSuccessNotification(fmt.Sprintf("Expense recorded: %s (%s)", saved.Description, formatAmount(saved.Amount))).
		BodyHTML(`<div class="success">Saved ` + template.HTMLEscapeString(saved.Description) +
			` (` + template.HTMLEscapeString(formatAmount(saved.Amount)) + `)</div>`).
		Write(w)
}

// handleDeleteExpense removes an expense by id. The id comes from a form or
// JSON body (htmx sends either), with the query string as fallback. Deleting
// an id that no longer exists is a soft 404 notice, not a failure.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		MethodNotAllowedError(http.MethodPost + ", " + http.MethodDelete).Write(w)
		return
	}

	values, err := parseBodyValues(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Parse body error", "error", err, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	idStr := strings.TrimSpace(values.Get("id"))
	if idStr == "" {
		idStr = strings.TrimSpace(r.URL.Query().Get("id"))
	}
	if idStr == "" {
		BadRequestError("Missing expense id").Write(w)
		return
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		BadRequestError("Invalid expense id").Write(w)
		return
	}

	existed, err := s.ledger.DeleteByID(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense delete error", "error", err, "id", id)
		InternalServerError("Failed to delete expense").
			TriggerErrorNotification("Failed to delete expense").
			Write(w)
		return
	}

	if !existed {
		NotFoundError("Expense not found").
			TriggerErrorNotification("Expense not found").
			Write(w)
		return
	}

	s.invalidateViews()

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerSuccessNotification("Expense deleted").
		BodyHTML(`<div class="success">Expense deleted</div>`).
		Write(w)
}

// handleSummary renders the summary cards partial: total spent, top
// category, and per-category bars scaled to the largest sum.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	view, err := s.getSummary(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary error", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Failed to load summary</div>`))
		return
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<div class="placeholder">Total: ` + template.HTMLEscapeString(view.Total) + `</div>`))
		return
	}

	if err := s.templates.ExecuteTemplate(w, "summary.html", view); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "summary.html")
		_, _ = w.Write([]byte(`<div class="placeholder">Failed to render summary</div>`))
	}
}

// handleExpensesTable renders the expense table partial, most recent date
// first.
func (s *Server) handleExpensesTable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	expenses, err := s.getExpenses(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List expenses error", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Failed to load expenses</div>`))
		return
	}

	data := struct {
		Rows []expenseRow
	}{}
	for _, e := range expenses {
		data.Rows = append(data.Rows, expenseRow{
			ID:          e.ID,
			Date:        e.Date.String(),
			Description: e.Description,
			Amount:      formatAmount(e.Amount),
			Category:    e.Category,
		})
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<div class="placeholder">` + strconv.Itoa(len(data.Rows)) + ` expenses</div>`))
		return
	}

	if err := s.templates.ExecuteTemplate(w, "expenses_table.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "expenses_table.html")
		_, _ = w.Write([]byte(`<div class="placeholder">Failed to render expenses</div>`))
	}
}

// getSummary returns the cached summary view, rebuilding it from the ledger
// on a miss.
func (s *Server) getSummary(ctx context.Context) (summaryView, error) {
	if view, found := s.summaryCache.Get(summaryCacheKey); found {
		slog.DebugContext(ctx, "Summary cache hit")
		return view, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	total, err := s.ledger.TotalAmount(cctx)
	if err != nil {
		return summaryView{}, fmt.Errorf("total amount: %w", err)
	}
	totals, err := s.ledger.TotalsByCategory(cctx)
	if err != nil {
		return summaryView{}, fmt.Errorf("totals by category: %w", err)
	}

	view := summaryView{Total: formatAmount(total)}

	sorted := core.SortedTotals(totals)
	if len(sorted) > 0 {
		view.TopName = sorted[0].Category
		view.TopAmount = formatAmount(sorted[0].Amount)
	}
	for _, ct := range sorted {
		width := 0
		if len(sorted) > 0 && sorted[0].Amount.IsPositive() {
			// Rounded percent of the largest category, floored at 2 so tiny
			// slices stay visible
			width = int(ct.Amount.Div(sorted[0].Amount).Mul(hundred).Round(0).IntPart())
			if width > 0 && width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		view.Rows = append(view.Rows, categoryRow{
			Name:   ct.Category,
			Amount: formatAmount(ct.Amount),
			Width:  width,
		})
	}

	s.summaryCache.Set(summaryCacheKey, view)
	slog.DebugContext(ctx, "Summary cached", "total", view.Total, "categories", len(view.Rows))
	return view, nil
}

// getExpenses returns the cached full listing, reading through on a miss.
func (s *Server) getExpenses(ctx context.Context) ([]core.Expense, error) {
	if items, found := s.expensesCache.Get(expensesCacheKey); found {
		slog.DebugContext(ctx, "Expenses cache hit", "count", len(items))
		// Copy so callers cannot mutate the cached slice
		out := make([]core.Expense, len(items))
		copy(out, items)
		return out, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	items, err := s.ledger.ListAll(cctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	s.expensesCache.Set(expensesCacheKey, items)
	slog.DebugContext(ctx, "Expenses cached", "count", len(items))
	return items, nil
}
