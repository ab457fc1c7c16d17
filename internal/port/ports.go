// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/granaflow/grana-assistant-go/internal/domain"
)

// LedgerStore defines all data operations over the tenant-scoped ledger.
// Implemented by the Supabase adapter (or any other persistence layer).
// Every method is implicitly filtered by tenantID — an implementation
// that leaks rows across tenants is broken, full stop.
type LedgerStore interface {
	// Accounts
	ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)
	FindAccountByName(ctx context.Context, tenantID, name string) (*domain.Account, error)
	CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)

	// Categories
	ListCategories(ctx context.Context, tenantID string) ([]domain.Category, error)
	FindCategoryByName(ctx context.Context, tenantID, name string) (*domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)

	// Transactions
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	// CreateTransactions inserts the whole batch in one atomic request,
	// so an installment series can never be half-written.
	CreateTransactions(ctx context.Context, txs []domain.Transaction) ([]domain.Transaction, error)
	ListTransactions(ctx context.Context, tenantID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
	// LastInsertedTransaction returns the most recently *inserted* row
	// (creation order, not transaction date).
	LastInsertedTransaction(ctx context.Context, tenantID string) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, tenantID, transactionID string) error
	// SumTransactions aggregates Transaction.Amount under the filter.
	SumTransactions(ctx context.Context, tenantID string, filter domain.TransactionFilter) (float64, error)

	// Transfers
	CreateTransfer(ctx context.Context, transfer *domain.Transfer) (*domain.Transfer, error)
	SumTransfers(ctx context.Context, tenantID, accountID string, incoming bool) (float64, error)

	// Budgets
	ListBudgets(ctx context.Context, tenantID, month string) ([]domain.Budget, error)

	// Savings goals
	ListSavingsGoals(ctx context.Context, tenantID string) ([]domain.SavingsGoal, error)
	FindSavingsGoalByName(ctx context.Context, tenantID, name string) (*domain.SavingsGoal, error)

	// Payables
	ListPayables(ctx context.Context, tenantID string, unpaidOnly bool, until time.Time) ([]domain.Payable, error)
	CreatePayable(ctx context.Context, payable *domain.Payable) (*domain.Payable, error)

	// Recurring templates
	ListRecurring(ctx context.Context, tenantID string, activeOnly bool) ([]domain.Recurring, error)
}

// TipSource returns one entry from a fixed set of financial tips.
type TipSource interface {
	Random() domain.Tip
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
