package domain

import "time"

// Ledger entities. Every row is tenant-scoped: the store must filter by
// TenantID on every operation — this is the multi-tenant isolation
// invariant the whole assistant depends on.

// TransactionType distinguishes money in from money out.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Account is a place money lives (wallet, checking, savings).
type Account struct {
	ID       string
	TenantID string
	Name     string
	Type     string
	Currency string
}

// Category classifies transactions. Type is "income" or "expense".
type Category struct {
	ID       string
	TenantID string
	Name     string
	Type     string
}

// Transaction is a posted ledger movement.
type Transaction struct {
	ID          string
	TenantID    string
	Description string
	Amount      float64
	Type        string // income | expense
	Date        time.Time
	AccountID   string
	CategoryID  string
	CreatedAt   time.Time
}

// Transfer moves money between two accounts of the same tenant.
type Transfer struct {
	ID            string
	TenantID      string
	Amount        float64
	FromAccountID string
	ToAccountID   string
	Date          time.Time
}

// Budget caps spending for one category in one month ("YYYY-MM").
type Budget struct {
	ID         string
	TenantID   string
	CategoryID string
	Amount     float64
	Month      string
}

// SavingsGoal tracks progress towards a target amount.
type SavingsGoal struct {
	ID            string
	TenantID      string
	Name          string
	TargetAmount  float64
	CurrentAmount float64
	Deadline      *time.Time
}

// Payable is a future, unpaid obligation — distinct from a posted
// Transaction until it is actually paid.
type Payable struct {
	ID          string
	TenantID    string
	Description string
	Amount      float64
	DueDate     time.Time
	Paid        bool
}

// Recurring is a template for a transaction expected to repeat.
type Recurring struct {
	ID       string
	TenantID string
	Type     string
	Amount   float64
	Active   bool
}

// TransactionFilter narrows ledger reads. Zero values mean "no filter".
type TransactionFilter struct {
	Type       string
	CategoryID string
	AccountID  string
	MinAmount  float64
	From       time.Time
	To         time.Time
}
