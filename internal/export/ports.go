package export

import (
	"context"

	"outlay/internal/core"
)

// Ports for outbound export targets.
type (
	// ExpenseWriter appends an expense to the export target.
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// ExpenseRemover deletes an exported expense by its ledger ID. Removing
	// an ID that was never exported is not an error.
	ExpenseRemover interface {
		RemoveByID(ctx context.Context, id int64) error
	}

	// Exporter is the full surface the export worker drives.
	Exporter interface {
		ExpenseWriter
		ExpenseRemover
	}
)
