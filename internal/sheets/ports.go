package sheets

import (
	"context"

	"carteira/internal/core"
)

// Ports for the spreadsheet backend. The backend assigns row indexes on
// append; the cache layer trusts them as record identity.
type (
	CommitmentStore interface {
		AppendCommitment(ctx context.Context, year string, c core.Commitment) (rowIndex int, err error)
		UpdateCommitment(ctx context.Context, year string, c core.Commitment) error
		DeleteCommitments(ctx context.Context, year string, rowIndexes []int) error
		ListCommitments(ctx context.Context, year string) ([]core.Commitment, error)
	}

	ExpenseStore interface {
		AppendExpense(ctx context.Context, year string, e core.Expense) (rowIndex int, err error)
		UpdateExpense(ctx context.Context, year string, e core.Expense) error
		DeleteExpenses(ctx context.Context, year string, rowIndexes []int) error
		ListExpenses(ctx context.Context, year string) ([]core.Expense, error)
	}

	IncomeStore interface {
		AppendIncome(ctx context.Context, year string, i core.Income) (rowIndex int, err error)
		UpdateIncome(ctx context.Context, year string, i core.Income) error
		DeleteIncomes(ctx context.Context, year string, rowIndexes []int) error
		ListIncomes(ctx context.Context, year string) ([]core.Income, error)
	}

	// SummaryReader provides the authoritative dashboard computed by the
	// spreadsheet, used to replace the locally patched aggregate.
	SummaryReader interface {
		ReadDashboard(ctx context.Context, year string) (core.Dashboard, error)
	}

	// Backend bundles every port a full adapter provides.
	Backend interface {
		CommitmentStore
		ExpenseStore
		IncomeStore
		SummaryReader
	}
)
