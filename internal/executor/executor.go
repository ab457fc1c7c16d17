// Package executor maps parsed intents to handlers that read and write
// the tenant's ledger and render one formatted reply string.
//
// Handlers share a uniform signature and live in a registry, so new
// actions are added by registering a function — no central switch.
// Expected outcomes (missing amount, no account yet, unknown intent)
// are ordinary reply strings; only store failures travel as errors, and
// they are caught exactly once, in Execute.
package executor

import (
	"context"
	"errors"
	"time"

	"github.com/granaflow/grana-assistant-go/internal/domain"
	"github.com/granaflow/grana-assistant-go/internal/infra/observability"
	"github.com/granaflow/grana-assistant-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("executor")

// HandlerFunc executes one action for one tenant and returns the reply.
type HandlerFunc func(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error)

// Executor dispatches parsed intents to registered handlers.
type Executor struct {
	store    port.LedgerStore
	tips     port.TipSource
	accounts port.Cache[[]domain.Account]
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
	registry map[domain.Action]HandlerFunc
}

// New creates the executor with all dependencies injected and every
// handler registered.
func New(
	store port.LedgerStore,
	tips port.TipSource,
	accounts port.Cache[[]domain.Account],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Executor {
	e := &Executor{
		store:    store,
		tips:     tips,
		accounts: accounts,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
	e.registry = map[domain.Action]HandlerFunc{
		domain.ActionCreateExpense:          e.createExpense,
		domain.ActionCreateIncome:           e.createIncome,
		domain.ActionCreateTransfer:         e.createTransfer,
		domain.ActionCreateInstallment:      e.createInstallment,
		domain.ActionCreateScheduled:        e.createScheduled,
		domain.ActionDeleteLastTransaction:  e.deleteLastTransaction,
		domain.ActionCreateAccount:          e.createAccount,
		domain.ActionListAccounts:           e.listAccounts,
		domain.ActionQueryExpenses:          e.queryExpenses,
		domain.ActionQueryExpensesByCat:     e.queryExpensesByCategory,
		domain.ActionQueryExpensesByAmount:  e.queryExpensesByAmount,
		domain.ActionQueryBalance:           e.queryBalance,
		domain.ActionMonthlySummary:         e.monthlySummary,
		domain.ActionBudgetStatus:           e.budgetStatus,
		domain.ActionGoalProgress:           e.goalProgress,
		domain.ActionUpcomingBills:          e.upcomingBills,
		domain.ActionMonthlyReport:          e.monthlyReport,
		domain.ActionSpendingAnalysis:       e.spendingAnalysis,
		domain.ActionPeriodComparison:       e.periodComparison,
		domain.ActionTopSpendingCategory:    e.topSpendingCategory,
		domain.ActionSpendingForecast:       e.spendingForecast,
		domain.ActionDailyBudget:            e.dailyBudget,
		domain.ActionAverageMonthlySpending: e.averageMonthlySpending,
		domain.ActionExportTransactions:     e.exportTransactions,
		domain.ActionFinancialTip:           e.financialTip,
		domain.ActionSavingsSuggestions:     e.savingsSuggestions,
		domain.ActionGreeting:               e.greeting,
		domain.ActionHelp:                   e.help,
		domain.ActionUnknown:                e.unknown,
	}
	return e
}

// WithClock replaces the executor's clock. Tests use it to pin "today".
func (e *Executor) WithClock(now func() time.Time) *Executor {
	e.now = now
	return e
}

// Execute runs the handler for the intent's action and returns the
// reply content. This is the single error boundary: any store failure
// bubbling out of a handler is logged once, counted, and converted to
// one generic user-facing string — stack traces never reach the user.
func (e *Executor) Execute(ctx context.Context, intent domain.ParsedIntent, tenantID string) string {
	ctx, span := tracer.Start(ctx, "Executor.Execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("intent.action", string(intent.Action)),
		attribute.String("tenant.id", tenantID),
	)

	handler, ok := e.registry[intent.Action]
	if !ok {
		handler = e.unknown
	}

	start := time.Now()
	reply, err := handler(ctx, &intent.Params, tenantID)
	e.metrics.RecordHandlerDuration(string(intent.Action), time.Since(start))

	if err != nil {
		e.logger.Error("handler failed",
			zap.String("action", string(intent.Action)),
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
		e.metrics.IncrHandlerError(string(intent.Action))
		e.metrics.IncrReply("error")
		return msgGenericFailure
	}
	e.metrics.IncrReply("success")
	return reply
}

// --- shared lookups ---

// defaultAccount resolves the account a write should hit: the named one
// when the utterance mentions it, otherwise the tenant's first account.
// A missing named account falls back to the default silently (extraction
// is a heuristic); a tenant with zero accounts gets the corrective
// message instead.
func (e *Executor) defaultAccount(ctx context.Context, tenantID, name string) (*domain.Account, string, error) {
	if name != "" {
		account, err := e.store.FindAccountByName(ctx, tenantID, name)
		if err == nil {
			return account, "", nil
		}
		var notFound *domain.ErrNotFound
		if !errors.As(err, &notFound) {
			return nil, "", err
		}
	}

	accounts, err := e.listTenantAccounts(ctx, tenantID)
	if err != nil {
		return nil, "", err
	}
	if len(accounts) == 0 {
		return nil, msgNoAccounts, nil
	}
	return &accounts[0], "", nil
}

// defaultCategory resolves a category of the given type by name, falling
// back to the tenant's first category of that type when the name is
// absent or doesn't match. Zero categories of the type is a precondition
// failure.
func (e *Executor) defaultCategory(ctx context.Context, tenantID, name, categoryType string) (*domain.Category, string, error) {
	if name != "" {
		category, err := e.store.FindCategoryByName(ctx, tenantID, name)
		if err == nil && category.Type == categoryType {
			return category, "", nil
		}
		var notFound *domain.ErrNotFound
		if err != nil && !errors.As(err, &notFound) {
			return nil, "", err
		}
	}

	categories, err := e.store.ListCategories(ctx, tenantID)
	if err != nil {
		return nil, "", err
	}
	for i := range categories {
		if categories[i].Type == categoryType {
			return &categories[i], "", nil
		}
	}
	if categoryType == domain.TransactionIncome {
		return nil, msgNoIncomeCategories, nil
	}
	return nil, msgNoExpenseCategories, nil
}

// listTenantAccounts serves the per-tenant account list through the TTL
// cache — every write handler hits it.
func (e *Executor) listTenantAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	cacheKey := "accounts:" + tenantID
	if cached, ok := e.accounts.Get(cacheKey); ok {
		e.metrics.IncrCacheHit("accounts")
		return cached, nil
	}
	e.metrics.IncrCacheMiss("accounts")
	accounts, err := e.store.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	e.accounts.Set(cacheKey, accounts)
	return accounts, nil
}

// categoryNames maps category id → name for display grouping.
func (e *Executor) categoryNames(ctx context.Context, tenantID string) (map[string]string, error) {
	categories, err := e.store.ListCategories(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

// resolveMonth returns the explicit month param or the current month.
func (e *Executor) resolveMonth(month string) string {
	if month != "" {
		return month
	}
	return e.now().Format("2006-01")
}
