package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/granaflow/grana-assistant-go/internal/domain"
	"github.com/granaflow/grana-assistant-go/internal/executor"
	"github.com/granaflow/grana-assistant-go/internal/infra/cache"
	"github.com/granaflow/grana-assistant-go/internal/infra/observability"
	"github.com/granaflow/grana-assistant-go/internal/service"
	"github.com/granaflow/grana-assistant-go/internal/tips"

	"go.uber.org/zap"
)

func newChatService() *service.Chat {
	metrics := observability.NewMetrics()
	exec := executor.New(emptyStore{}, tips.New(1), cache.New[[]domain.Account](time.Minute), metrics, zap.NewNop())
	return service.NewChat(exec, metrics, zap.NewNop())
}

func TestProcessMessage_Greeting(t *testing.T) {
	svc := newChatService()

	reply, err := svc.ProcessMessage(context.Background(), "t1", domain.ChatRequest{Message: "bom dia!"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.Role != "ASSISTANT" {
		t.Errorf("role = %q, want ASSISTANT", reply.Role)
	}
	if reply.ID == "" || reply.ConversationID == "" {
		t.Errorf("ids must be populated: %+v", reply)
	}
	if !strings.Contains(reply.Content, "Olá") {
		t.Errorf("unexpected content: %q", reply.Content)
	}
}

func TestProcessMessage_EchoesConversationID(t *testing.T) {
	svc := newChatService()

	reply, err := svc.ProcessMessage(context.Background(), "t1", domain.ChatRequest{
		Message:        "ajuda",
		ConversationID: "conv-42",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.ConversationID != "conv-42" {
		t.Errorf("conversation id = %q, want conv-42", reply.ConversationID)
	}
}

func TestProcessMessage_EmptyMessageIsValidationError(t *testing.T) {
	svc := newChatService()

	_, err := svc.ProcessMessage(context.Background(), "t1", domain.ChatRequest{Message: "   "})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected *domain.ErrValidation, got %T: %v", err, err)
	}
	if validation.Field != "message" || validation.Message == "" {
		t.Errorf("incomplete validation error: %+v", validation)
	}
}

func TestProcessMessage_UnknownUtteranceStillReplies(t *testing.T) {
	svc := newChatService()

	reply, err := svc.ProcessMessage(context.Background(), "t1", domain.ChatRequest{Message: "xyzzy"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(reply.Content, "Não entendi") {
		t.Errorf("unexpected content: %q", reply.Content)
	}
}

// emptyStore satisfies port.LedgerStore with an empty ledger; the
// handlers exercised here never reach the store.
type emptyStore struct{}

func (emptyStore) ListAccounts(context.Context, string) ([]domain.Account, error) { return nil, nil }
func (emptyStore) FindAccountByName(_ context.Context, _, name string) (*domain.Account, error) {
	return nil, &domain.ErrNotFound{Resource: "account", ID: name}
}
func (emptyStore) CreateAccount(_ context.Context, a *domain.Account) (*domain.Account, error) {
	return a, nil
}
func (emptyStore) ListCategories(context.Context, string) ([]domain.Category, error) {
	return nil, nil
}
func (emptyStore) FindCategoryByName(_ context.Context, _, name string) (*domain.Category, error) {
	return nil, &domain.ErrNotFound{Resource: "category", ID: name}
}
func (emptyStore) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	return c, nil
}
func (emptyStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	return tx, nil
}
func (emptyStore) CreateTransactions(_ context.Context, txs []domain.Transaction) ([]domain.Transaction, error) {
	return txs, nil
}
func (emptyStore) ListTransactions(context.Context, string, domain.TransactionFilter) ([]domain.Transaction, error) {
	return nil, nil
}
func (emptyStore) LastInsertedTransaction(_ context.Context, tenantID string) (*domain.Transaction, error) {
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: tenantID}
}
func (emptyStore) DeleteTransaction(context.Context, string, string) error { return nil }
func (emptyStore) SumTransactions(context.Context, string, domain.TransactionFilter) (float64, error) {
	return 0, nil
}
func (emptyStore) CreateTransfer(_ context.Context, tr *domain.Transfer) (*domain.Transfer, error) {
	return tr, nil
}
func (emptyStore) SumTransfers(context.Context, string, string, bool) (float64, error) {
	return 0, nil
}
func (emptyStore) ListBudgets(context.Context, string, string) ([]domain.Budget, error) {
	return nil, nil
}
func (emptyStore) ListSavingsGoals(context.Context, string) ([]domain.SavingsGoal, error) {
	return nil, nil
}
func (emptyStore) FindSavingsGoalByName(_ context.Context, _, name string) (*domain.SavingsGoal, error) {
	return nil, &domain.ErrNotFound{Resource: "savings_goal", ID: name}
}
func (emptyStore) ListPayables(context.Context, string, bool, time.Time) ([]domain.Payable, error) {
	return nil, nil
}
func (emptyStore) CreatePayable(_ context.Context, p *domain.Payable) (*domain.Payable, error) {
	return p, nil
}
func (emptyStore) ListRecurring(context.Context, string, bool) ([]domain.Recurring, error) {
	return nil, nil
}
