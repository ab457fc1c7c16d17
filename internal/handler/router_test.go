package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/granaflow/grana-assistant-go/internal/domain"
	"github.com/granaflow/grana-assistant-go/internal/executor"
	"github.com/granaflow/grana-assistant-go/internal/handler"
	"github.com/granaflow/grana-assistant-go/internal/infra/cache"
	"github.com/granaflow/grana-assistant-go/internal/infra/observability"
	"github.com/granaflow/grana-assistant-go/internal/service"
	"github.com/granaflow/grana-assistant-go/internal/tips"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func newTestRouter(devAuth bool) http.Handler {
	metrics := observability.NewMetrics()
	exec := executor.New(nilStore{}, tips.New(1), cache.New[[]domain.Account](time.Minute), metrics, zap.NewNop())
	svc := service.NewChat(exec, metrics, zap.NewNop())
	return handler.NewRouter(svc, nilStore{}, metrics, handler.RouterConfig{
		JWTSecret: "test-secret",
		DevAuth:   devAuth,
	}, zap.NewNop())
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestChat_DevAuthRoundTrip(t *testing.T) {
	router := newTestRouter(true)

	body, _ := json.Marshal(domain.ChatRequest{Message: "bom dia!"})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(body))
	req.Header.Set("X-Tenant-Id", "t1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var reply domain.ChatReply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("invalid JSON reply: %v", err)
	}
	if reply.Role != "ASSISTANT" {
		t.Errorf("role = %q, want ASSISTANT", reply.Role)
	}
	if !strings.Contains(reply.Content, "Olá") {
		t.Errorf("unexpected content: %q", reply.Content)
	}
}

func TestChat_MissingTokenIsUnauthorized(t *testing.T) {
	router := newTestRouter(false)

	body, _ := json.Marshal(domain.ChatRequest{Message: "oi"})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestChat_ValidJWTResolvesTenant(t *testing.T) {
	router := newTestRouter(false)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "t1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	body, _ := json.Marshal(domain.ChatRequest{Message: "ajuda"})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestChat_WrongSecretIsUnauthorized(t *testing.T) {
	router := newTestRouter(false)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "t1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, _ := token.SignedString([]byte("other-secret"))

	body, _ := json.Marshal(domain.ChatRequest{Message: "ajuda"})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestChat_EmptyMessageIsBadRequest(t *testing.T) {
	router := newTestRouter(true)

	body, _ := json.Marshal(domain.ChatRequest{Message: ""})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(body))
	req.Header.Set("X-Tenant-Id", "t1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAssistantMetricsSnapshot(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/v1/metrics/assistant", nil)
	req.Header.Set("X-Tenant-Id", "t1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snapshot domain.AssistantMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("invalid JSON snapshot: %v", err)
	}
}

// nilStore satisfies port.LedgerStore for routes that never touch data.
type nilStore struct{}

func (nilStore) ListAccounts(context.Context, string) ([]domain.Account, error) { return nil, nil }
func (nilStore) FindAccountByName(_ context.Context, _, name string) (*domain.Account, error) {
	return nil, &domain.ErrNotFound{Resource: "account", ID: name}
}
func (nilStore) CreateAccount(_ context.Context, a *domain.Account) (*domain.Account, error) {
	return a, nil
}
func (nilStore) ListCategories(context.Context, string) ([]domain.Category, error) { return nil, nil }
func (nilStore) FindCategoryByName(_ context.Context, _, name string) (*domain.Category, error) {
	return nil, &domain.ErrNotFound{Resource: "category", ID: name}
}
func (nilStore) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	return c, nil
}
func (nilStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	return tx, nil
}
func (nilStore) CreateTransactions(_ context.Context, txs []domain.Transaction) ([]domain.Transaction, error) {
	return txs, nil
}
func (nilStore) ListTransactions(context.Context, string, domain.TransactionFilter) ([]domain.Transaction, error) {
	return nil, nil
}
func (nilStore) LastInsertedTransaction(_ context.Context, tenantID string) (*domain.Transaction, error) {
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: tenantID}
}
func (nilStore) DeleteTransaction(context.Context, string, string) error { return nil }
func (nilStore) SumTransactions(context.Context, string, domain.TransactionFilter) (float64, error) {
	return 0, nil
}
func (nilStore) CreateTransfer(_ context.Context, tr *domain.Transfer) (*domain.Transfer, error) {
	return tr, nil
}
func (nilStore) SumTransfers(context.Context, string, string, bool) (float64, error) { return 0, nil }
func (nilStore) ListBudgets(context.Context, string, string) ([]domain.Budget, error) {
	return nil, nil
}
func (nilStore) ListSavingsGoals(context.Context, string) ([]domain.SavingsGoal, error) {
	return nil, nil
}
func (nilStore) FindSavingsGoalByName(_ context.Context, _, name string) (*domain.SavingsGoal, error) {
	return nil, &domain.ErrNotFound{Resource: "savings_goal", ID: name}
}
func (nilStore) ListPayables(context.Context, string, bool, time.Time) ([]domain.Payable, error) {
	return nil, nil
}
func (nilStore) CreatePayable(_ context.Context, p *domain.Payable) (*domain.Payable, error) {
	return p, nil
}
func (nilStore) ListRecurring(context.Context, string, bool) ([]domain.Recurring, error) {
	return nil, nil
}
