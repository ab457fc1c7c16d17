package executor_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/granaflow/grana-assistant-go/internal/domain"
	"github.com/granaflow/grana-assistant-go/internal/executor"
	"github.com/granaflow/grana-assistant-go/internal/infra/cache"
	"github.com/granaflow/grana-assistant-go/internal/infra/observability"
	"github.com/granaflow/grana-assistant-go/internal/nlp"
	"github.com/granaflow/grana-assistant-go/internal/tips"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// --- Mocks ---

// mockStore is an in-memory LedgerStore double. Sums are canned per
// type; writes are recorded for assertions.
type mockStore struct {
	accounts   []domain.Account
	categories []domain.Category
	budgets    []domain.Budget
	goals      []domain.SavingsGoal
	payables   []domain.Payable
	recurring  []domain.Recurring
	listTxs    []domain.Transaction
	lastTx     *domain.Transaction

	incomeSum    float64
	expenseSum   float64
	transfersIn  float64
	transfersOut float64

	sumErr error

	createdBatches [][]domain.Transaction
	transfers      []domain.Transfer
	deletedIDs     []string
	listCalls      int
}

func (m *mockStore) ListAccounts(_ context.Context, _ string) ([]domain.Account, error) {
	m.listCalls++
	return m.accounts, nil
}

func (m *mockStore) FindAccountByName(_ context.Context, _, name string) (*domain.Account, error) {
	for i := range m.accounts {
		if strings.EqualFold(m.accounts[i].Name, name) {
			return &m.accounts[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "account", ID: name}
}

func (m *mockStore) CreateAccount(_ context.Context, account *domain.Account) (*domain.Account, error) {
	created := *account
	created.ID = fmt.Sprintf("acc-%d", len(m.accounts)+1)
	m.accounts = append(m.accounts, created)
	return &created, nil
}

func (m *mockStore) ListCategories(_ context.Context, _ string) ([]domain.Category, error) {
	return m.categories, nil
}

func (m *mockStore) FindCategoryByName(_ context.Context, _, name string) (*domain.Category, error) {
	for i := range m.categories {
		if strings.EqualFold(m.categories[i].Name, name) {
			return &m.categories[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "category", ID: name}
}

func (m *mockStore) CreateCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	created := *category
	created.ID = fmt.Sprintf("cat-%d", len(m.categories)+1)
	m.categories = append(m.categories, created)
	return &created, nil
}

func (m *mockStore) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	created, err := m.CreateTransactions(ctx, []domain.Transaction{*tx})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

func (m *mockStore) CreateTransactions(_ context.Context, txs []domain.Transaction) ([]domain.Transaction, error) {
	m.createdBatches = append(m.createdBatches, txs)
	return txs, nil
}

func (m *mockStore) ListTransactions(_ context.Context, _ string, _ domain.TransactionFilter) ([]domain.Transaction, error) {
	return m.listTxs, nil
}

func (m *mockStore) LastInsertedTransaction(_ context.Context, tenantID string) (*domain.Transaction, error) {
	if m.lastTx == nil {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: tenantID}
	}
	return m.lastTx, nil
}

func (m *mockStore) DeleteTransaction(_ context.Context, _, transactionID string) error {
	m.deletedIDs = append(m.deletedIDs, transactionID)
	return nil
}

func (m *mockStore) SumTransactions(_ context.Context, _ string, filter domain.TransactionFilter) (float64, error) {
	if m.sumErr != nil {
		return 0, m.sumErr
	}
	if filter.Type == domain.TransactionIncome {
		return m.incomeSum, nil
	}
	return m.expenseSum, nil
}

func (m *mockStore) CreateTransfer(_ context.Context, transfer *domain.Transfer) (*domain.Transfer, error) {
	m.transfers = append(m.transfers, *transfer)
	return transfer, nil
}

func (m *mockStore) SumTransfers(_ context.Context, _, _ string, incoming bool) (float64, error) {
	if incoming {
		return m.transfersIn, nil
	}
	return m.transfersOut, nil
}

func (m *mockStore) ListBudgets(_ context.Context, _, _ string) ([]domain.Budget, error) {
	return m.budgets, nil
}

func (m *mockStore) ListSavingsGoals(_ context.Context, _ string) ([]domain.SavingsGoal, error) {
	return m.goals, nil
}

func (m *mockStore) FindSavingsGoalByName(_ context.Context, _, name string) (*domain.SavingsGoal, error) {
	for i := range m.goals {
		if strings.EqualFold(m.goals[i].Name, name) {
			return &m.goals[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "savings_goal", ID: name}
}

func (m *mockStore) ListPayables(_ context.Context, _ string, _ bool, _ time.Time) ([]domain.Payable, error) {
	return m.payables, nil
}

func (m *mockStore) CreatePayable(_ context.Context, payable *domain.Payable) (*domain.Payable, error) {
	m.payables = append(m.payables, *payable)
	return payable, nil
}

func (m *mockStore) ListRecurring(_ context.Context, _ string, _ bool) ([]domain.Recurring, error) {
	return m.recurring, nil
}

// --- Helpers ---

var fixedNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func newExecutor(store *mockStore) *executor.Executor {
	return newExecutorWith(store, observability.NewMetrics(), zap.NewNop())
}

func newExecutorWith(store *mockStore, metrics *observability.Metrics, logger *zap.Logger) *executor.Executor {
	return executor.New(
		store,
		tips.New(1),
		cache.New[[]domain.Account](time.Minute),
		metrics,
		logger,
	).WithClock(func() time.Time { return fixedNow })
}

func seededStore() *mockStore {
	return &mockStore{
		accounts: []domain.Account{
			{ID: "acc-1", TenantID: "t1", Name: "Carteira", Type: "checking"},
			{ID: "acc-2", TenantID: "t1", Name: "Poupança", Type: "savings"},
		},
		categories: []domain.Category{
			{ID: "cat-1", TenantID: "t1", Name: "Alimentação", Type: domain.TransactionExpense},
			{ID: "cat-2", TenantID: "t1", Name: "Salário", Type: domain.TransactionIncome},
		},
	}
}

func amount(v float64) *float64 { return &v }

// --- Tests ---

func TestExecute_CreateIncome(t *testing.T) {
	store := seededStore()
	exec := newExecutor(store)

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionCreateIncome,
		Params: domain.IntentParams{Amount: amount(3000), Description: "salário"},
	}, "t1")

	if !strings.Contains(reply, "Receita registrada") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if !strings.Contains(reply, "R$ 3.000,00") {
		t.Errorf("amount missing from reply: %q", reply)
	}
	if len(store.createdBatches) != 1 || len(store.createdBatches[0]) != 1 {
		t.Fatalf("expected exactly one write, got %v", store.createdBatches)
	}
	tx := store.createdBatches[0][0]
	if tx.Type != domain.TransactionIncome || tx.Amount != 3000 {
		t.Errorf("bad transaction: %+v", tx)
	}
	if tx.CategoryID != "cat-2" {
		t.Errorf("income must land in an income category, got %s", tx.CategoryID)
	}
}

func TestExecute_CreateExpense_MissingAmountAsksForIt(t *testing.T) {
	store := seededStore()
	exec := newExecutor(store)

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionCreateExpense,
		Params: domain.IntentParams{Category: "alimentação"},
	}, "t1")

	if !strings.Contains(reply, "Não consegui identificar o valor") {
		t.Fatalf("expected clarifying reply, got %q", reply)
	}
	if len(store.createdBatches) != 0 {
		t.Fatal("clarifying replies must not write")
	}
}

func TestExecute_CreateExpense_NoAccountsIsCorrective(t *testing.T) {
	store := &mockStore{categories: seededStore().categories}
	exec := newExecutor(store)

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionCreateExpense,
		Params: domain.IntentParams{Amount: amount(50)},
	}, "t1")

	if !strings.Contains(reply, "não tem nenhuma conta") {
		t.Fatalf("expected corrective reply, got %q", reply)
	}
	if len(store.createdBatches) != 0 {
		t.Fatal("precondition failures must not write")
	}
}

func TestExecute_CreateInstallment_AtomicEvenSeries(t *testing.T) {
	store := seededStore()
	exec := newExecutor(store)

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionCreateInstallment,
		Params: domain.IntentParams{
			Amount:       amount(600),
			Installments: 3,
			Description:  "notebook",
		},
	}, "t1")

	if !strings.Contains(reply, "3x") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(store.createdBatches) != 1 {
		t.Fatalf("series must be one atomic batch, got %d", len(store.createdBatches))
	}
	series := store.createdBatches[0]
	if len(series) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(series))
	}
	for i, tx := range series {
		if tx.Amount != 200 {
			t.Errorf("installment %d amount = %v, want 200", i+1, tx.Amount)
		}
		wantSuffix := fmt.Sprintf("(%d/3)", i+1)
		if !strings.HasSuffix(tx.Description, wantSuffix) {
			t.Errorf("installment %d description %q missing %q", i+1, tx.Description, wantSuffix)
		}
		wantDate := fixedNow.AddDate(0, i, 0)
		if !tx.Date.Equal(wantDate) {
			t.Errorf("installment %d date = %v, want %v", i+1, tx.Date, wantDate)
		}
	}
}

func TestExecute_CreateInstallment_RequiresCount(t *testing.T) {
	store := seededStore()
	exec := newExecutor(store)

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionCreateInstallment,
		Params: domain.IntentParams{Amount: amount(600), Installments: 1},
	}, "t1")

	if !strings.Contains(reply, "parcelamento") {
		t.Fatalf("expected clarifying reply, got %q", reply)
	}
	if len(store.createdBatches) != 0 {
		t.Fatal("must not write without a valid count")
	}
}

func TestExecute_CreateTransfer_RequiresBothAccounts(t *testing.T) {
	store := seededStore()
	exec := newExecutor(store)

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionCreateTransfer,
		Params: domain.IntentParams{Amount: amount(100), AccountFrom: "carteira"},
	}, "t1")

	if !strings.Contains(reply, "duas contas") {
		t.Fatalf("expected clarifying reply, got %q", reply)
	}

	reply = exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionCreateTransfer,
		Params: domain.IntentParams{Amount: amount(100), AccountFrom: "carteira", AccountTo: "poupança"},
	}, "t1")

	if !strings.Contains(reply, "Transferência realizada") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(store.transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(store.transfers))
	}
	tr := store.transfers[0]
	if tr.FromAccountID != "acc-1" || tr.ToAccountID != "acc-2" {
		t.Errorf("bad transfer routing: %+v", tr)
	}
}

func TestExecute_DeleteLastTransaction(t *testing.T) {
	store := seededStore()
	exec := newExecutor(store)

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionDeleteLastTransaction,
	}, "t1")
	if !strings.Contains(reply, "Não encontrei nenhum lançamento") {
		t.Fatalf("empty ledger: got %q", reply)
	}

	store.lastTx = &domain.Transaction{
		ID: "tx-9", Description: "Uber", Amount: 23.5,
		Date: fixedNow, CreatedAt: fixedNow,
	}
	reply = exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionDeleteLastTransaction,
	}, "t1")

	if !strings.Contains(reply, "apagado") || !strings.Contains(reply, "Uber") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(store.deletedIDs) != 1 || store.deletedIDs[0] != "tx-9" {
		t.Fatalf("expected tx-9 deleted, got %v", store.deletedIDs)
	}
}

func TestExecute_QueryBalance_DerivedFormula(t *testing.T) {
	store := seededStore()
	store.incomeSum = 1000
	store.expenseSum = 300
	store.transfersIn = 50
	store.transfersOut = 150
	exec := newExecutor(store)

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionQueryBalance,
	}, "t1")

	// per account: 1000 − 300 + 50 − 150 = 600
	if !strings.Contains(reply, "Carteira: R$ 600,00") {
		t.Fatalf("balance formula broken: %q", reply)
	}
	// two identical accounts → total 1200
	if !strings.Contains(reply, "Total: R$ 1.200,00") {
		t.Fatalf("total broken: %q", reply)
	}
	if len(store.createdBatches) != 0 || len(store.deletedIDs) != 0 {
		t.Fatal("balance query must not write")
	}
}

func TestExecute_StoreFailureIsOneGenericReply(t *testing.T) {
	store := seededStore()
	store.sumErr = errors.New("connection refused")
	exec := newExecutor(store)

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionQueryBalance,
	}, "t1")

	if !strings.Contains(reply, "Tive um problema") {
		t.Fatalf("expected generic failure reply, got %q", reply)
	}
	if strings.Contains(reply, "connection refused") {
		t.Fatalf("internal error leaked to the user: %q", reply)
	}
}

func TestExecute_AccountListIsCached(t *testing.T) {
	store := seededStore()
	metrics := observability.NewMetrics()
	exec := newExecutorWith(store, metrics, zap.NewNop())

	for i := 0; i < 3; i++ {
		exec.Execute(context.Background(), domain.ParsedIntent{Action: domain.ActionListAccounts}, "t1")
	}
	if store.listCalls != 1 {
		t.Fatalf("expected 1 store read through the cache, got %d", store.listCalls)
	}

	// 1 miss + 2 hits must show up in the snapshot.
	snapshot := metrics.GetAssistantSnapshot()
	if want := 2.0 / 3.0; snapshot.CacheHitRate != want {
		t.Errorf("cache hit rate = %v, want %v", snapshot.CacheHitRate, want)
	}
}

func TestExecute_StoreFailureLogsExactlyOnce(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	store := seededStore()
	store.sumErr = errors.New("connection refused")
	exec := newExecutorWith(store, observability.NewMetrics(), zap.New(core))

	exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionQueryBalance,
	}, "t1")

	if got := logs.Len(); got != 1 {
		t.Fatalf("store failure must be logged exactly once, got %d entries", got)
	}
	entry := logs.All()[0]
	if entry.Message != "handler failed" {
		t.Errorf("unexpected log message: %q", entry.Message)
	}
}

func TestExecute_ReadQueriesAreIdempotent(t *testing.T) {
	store := seededStore()
	store.incomeSum = 1000
	store.expenseSum = 300
	exec := newExecutor(store)

	for _, action := range []domain.Action{domain.ActionQueryBalance, domain.ActionMonthlySummary} {
		first := exec.Execute(context.Background(), domain.ParsedIntent{Action: action}, "t1")
		second := exec.Execute(context.Background(), domain.ParsedIntent{Action: action}, "t1")
		if first != second {
			t.Errorf("%s: repeated query changed its answer:\n%q\nvs\n%q", action, first, second)
		}
	}
	if len(store.createdBatches) != 0 || len(store.deletedIDs) != 0 || len(store.transfers) != 0 {
		t.Fatal("read queries must not write")
	}
}

func TestExecute_SuggestedInstallmentPhrasingSplitsTotal(t *testing.T) {
	store := seededStore()
	exec := newExecutor(store)

	// The exact phrasing the help text suggests: the amount is the
	// purchase total, split across the installments.
	intent := nlp.ParseAt("comprei um notebook de R$ 3.000 em 10x", fixedNow)
	if intent.Action != domain.ActionCreateInstallment {
		t.Fatalf("action = %s, want %s", intent.Action, domain.ActionCreateInstallment)
	}

	exec.Execute(context.Background(), intent, "t1")

	if len(store.createdBatches) != 1 {
		t.Fatalf("expected one atomic batch, got %d", len(store.createdBatches))
	}
	series := store.createdBatches[0]
	if len(series) != 10 {
		t.Fatalf("expected 10 installments, got %d", len(series))
	}
	for i, tx := range series {
		if tx.Amount != 300 {
			t.Errorf("installment %d amount = %v, want 300", i+1, tx.Amount)
		}
	}
}

func TestExecute_DailyBudget_OverspentFloorsAtZero(t *testing.T) {
	store := seededStore()
	store.budgets = []domain.Budget{{ID: "b1", CategoryID: "cat-1", Amount: 500, Month: "2025-03"}}
	store.expenseSum = 800
	exec := newExecutor(store)

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionDailyBudget,
	}, "t1")

	if !strings.Contains(reply, "estourado") {
		t.Fatalf("expected overspent warning, got %q", reply)
	}
	if strings.Contains(reply, "-R$") {
		t.Fatalf("negative daily allowance leaked: %q", reply)
	}
}

func TestExecute_PeriodComparison_NoPreviousDataShowsDash(t *testing.T) {
	store := seededStore()
	store.expenseSum = 0
	exec := newExecutor(store)

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionPeriodComparison,
		Params: domain.IntentParams{Month: "2025-01", Month2: "2025-02"},
	}, "t1")

	if !strings.Contains(reply, "Variação: -") {
		t.Fatalf("undefined variation must render as dash: %q", reply)
	}
}

func TestExecute_GoalProgress_Named(t *testing.T) {
	store := seededStore()
	store.goals = []domain.SavingsGoal{
		{ID: "g1", Name: "Viagem", TargetAmount: 2000, CurrentAmount: 500},
	}
	exec := newExecutor(store)

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionGoalProgress,
		Params: domain.IntentParams{GoalName: "viagem"},
	}, "t1")

	if !strings.Contains(reply, "Viagem") || !strings.Contains(reply, "25%") {
		t.Fatalf("unexpected reply: %q", reply)
	}

	reply = exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionGoalProgress,
		Params: domain.IntentParams{GoalName: "carro"},
	}, "t1")
	if !strings.Contains(reply, "Não encontrei a meta") {
		t.Fatalf("unknown goal: got %q", reply)
	}
}

func TestExecute_UnknownActionFallsBack(t *testing.T) {
	exec := newExecutor(seededStore())

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.Action("never-registered"),
	}, "t1")

	if !strings.Contains(reply, "Não entendi") {
		t.Fatalf("expected unknown fallback, got %q", reply)
	}
}

func TestExecute_CreateAccount_DuplicateRefused(t *testing.T) {
	store := seededStore()
	exec := newExecutor(store)

	reply := exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionCreateAccount,
		Params: domain.IntentParams{AccountName: "carteira"},
	}, "t1")

	if !strings.Contains(reply, "já tem uma conta") {
		t.Fatalf("expected duplicate refusal, got %q", reply)
	}
	if len(store.accounts) != 2 {
		t.Fatal("duplicate must not create")
	}

	reply = exec.Execute(context.Background(), domain.ParsedIntent{
		Action: domain.ActionCreateAccount,
		Params: domain.IntentParams{AccountName: "nubank"},
	}, "t1")
	if !strings.Contains(reply, "criada") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(store.accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(store.accounts))
	}
}
