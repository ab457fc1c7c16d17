package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/granaflow/grana-assistant-go/internal/domain"
	"github.com/granaflow/grana-assistant-go/internal/format"
)

// Side-effecting handlers. Each performs exactly the writes implied by
// its name; preconditions short-circuit with guidance strings before
// anything is written.

func (e *Executor) createExpense(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	if p.Amount == nil {
		return msgAmountMissingExpense, nil
	}
	account, msg, err := e.defaultAccount(ctx, tenantID, p.AccountName)
	if err != nil || msg != "" {
		return msg, err
	}
	category, msg, err := e.defaultCategory(ctx, tenantID, p.Category, domain.TransactionExpense)
	if err != nil || msg != "" {
		return msg, err
	}

	date := e.now()
	if p.Date != nil {
		date = *p.Date
	}
	description := titleCase(p.Description)
	if description == "" {
		description = category.Name
	}

	_, err = e.store.CreateTransaction(ctx, &domain.Transaction{
		TenantID:    tenantID,
		Description: description,
		Amount:      *p.Amount,
		Type:        domain.TransactionExpense,
		Date:        date,
		AccountID:   account.ID,
		CategoryID:  category.ID,
	})
	if err != nil {
		return "", err
	}

	reply := fmt.Sprintf("✅ Despesa registrada!\n\n💸 %s — %s\n📅 %s | 🏦 %s",
		format.Currency(*p.Amount), titleCase(category.Name), format.Date(date), account.Name)
	return format.WithSuggestions(reply, "quanto gastei esse mês?", "qual meu saldo?"), nil
}

func (e *Executor) createIncome(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	if p.Amount == nil {
		return msgAmountMissingIncome, nil
	}
	account, msg, err := e.defaultAccount(ctx, tenantID, p.AccountName)
	if err != nil || msg != "" {
		return msg, err
	}
	category, msg, err := e.defaultCategory(ctx, tenantID, p.Category, domain.TransactionIncome)
	if err != nil || msg != "" {
		return msg, err
	}

	date := e.now()
	if p.Date != nil {
		date = *p.Date
	}
	description := titleCase(p.Description)
	if description == "" {
		description = category.Name
	}

	_, err = e.store.CreateTransaction(ctx, &domain.Transaction{
		TenantID:    tenantID,
		Description: description,
		Amount:      *p.Amount,
		Type:        domain.TransactionIncome,
		Date:        date,
		AccountID:   account.ID,
		CategoryID:  category.ID,
	})
	if err != nil {
		return "", err
	}

	reply := fmt.Sprintf("✅ Receita registrada!\n\n💰 %s — %s\n📅 %s | 🏦 %s",
		format.Currency(*p.Amount), description, format.Date(date), account.Name)
	return format.WithSuggestions(reply, "resumo do mês", "qual meu saldo?"), nil
}

func (e *Executor) createTransfer(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	if p.Amount == nil {
		return msgAmountMissingTransfer, nil
	}
	if p.AccountFrom == "" || p.AccountTo == "" {
		return msgTransferAccountsMissing, nil
	}

	from, msg, err := e.namedAccount(ctx, tenantID, p.AccountFrom)
	if err != nil || msg != "" {
		return msg, err
	}
	to, msg, err := e.namedAccount(ctx, tenantID, p.AccountTo)
	if err != nil || msg != "" {
		return msg, err
	}

	_, err = e.store.CreateTransfer(ctx, &domain.Transfer{
		TenantID:      tenantID,
		Amount:        *p.Amount,
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Date:          e.now(),
	})
	if err != nil {
		return "", err
	}

	reply := fmt.Sprintf("✅ Transferência realizada!\n\n🔁 %s\n🏦 %s → %s",
		format.Currency(*p.Amount), from.Name, to.Name)
	return format.WithSuggestions(reply, "qual meu saldo?"), nil
}

// createInstallment splits the total evenly across N months and writes
// the whole series in one atomic batch. The even split (total/N) carries
// a known cents-remainder gap — kept as documented behavior. The rows
// are correlated only by the "(i/N)" description suffix.
func (e *Executor) createInstallment(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	if p.Amount == nil || p.Installments < 2 {
		return msgInstallmentMissing, nil
	}
	account, msg, err := e.defaultAccount(ctx, tenantID, p.AccountName)
	if err != nil || msg != "" {
		return msg, err
	}
	category, msg, err := e.defaultCategory(ctx, tenantID, p.Category, domain.TransactionExpense)
	if err != nil || msg != "" {
		return msg, err
	}

	base := e.now()
	if p.Date != nil {
		base = *p.Date
	}
	description := titleCase(p.Description)
	if description == "" {
		description = "Compra parcelada"
	}

	per := *p.Amount / float64(p.Installments)
	series := make([]domain.Transaction, 0, p.Installments)
	for i := 0; i < p.Installments; i++ {
		series = append(series, domain.Transaction{
			TenantID:    tenantID,
			Description: fmt.Sprintf("%s (%d/%d)", description, i+1, p.Installments),
			Amount:      per,
			Type:        domain.TransactionExpense,
			Date:        base.AddDate(0, i, 0),
			AccountID:   account.ID,
			CategoryID:  category.ID,
		})
	}

	if _, err := e.store.CreateTransactions(ctx, series); err != nil {
		return "", err
	}

	reply := fmt.Sprintf("✅ Compra parcelada registrada!\n\n💳 %s em %dx de %s\n📅 Primeira parcela: %s",
		format.Currency(*p.Amount), p.Installments, format.Currency(per), format.Date(base))
	return format.WithSuggestions(reply, "previsão de gastos", "resumo do mês"), nil
}

func (e *Executor) createScheduled(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	if p.Amount == nil {
		return msgScheduledMissing, nil
	}

	due := e.now()
	if p.Date != nil {
		due = *p.Date
	}
	description := titleCase(p.Description)
	if description == "" {
		description = "Pagamento agendado"
	}

	_, err := e.store.CreatePayable(ctx, &domain.Payable{
		TenantID:    tenantID,
		Description: description,
		Amount:      *p.Amount,
		DueDate:     due,
		Paid:        false,
	})
	if err != nil {
		return "", err
	}

	reply := fmt.Sprintf("📌 Pagamento agendado!\n\n💸 %s — %s\n📅 Vencimento: %s",
		format.Currency(*p.Amount), description, format.Date(due))
	return format.WithSuggestions(reply, "contas a pagar"), nil
}

// deleteLastTransaction removes the most recently INSERTED row for the
// tenant — creation order, not transaction date. Users backdating
// entries may find this surprising; it is the documented behavior and
// must not change without product sign-off.
func (e *Executor) deleteLastTransaction(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	last, err := e.store.LastInsertedTransaction(ctx, tenantID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return msgNothingToDelete, nil
		}
		return "", err
	}

	if err := e.store.DeleteTransaction(ctx, tenantID, last.ID); err != nil {
		return "", err
	}

	return fmt.Sprintf("🗑️ Lançamento apagado:\n\n%s — %s (%s)",
		last.Description, format.Currency(last.Amount), format.Date(last.Date)), nil
}

func (e *Executor) createAccount(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	name := titleCase(p.AccountName)
	if name == "" {
		return msgAccountNameMissing, nil
	}

	existing, err := e.store.FindAccountByName(ctx, tenantID, name)
	if err != nil {
		var notFound *domain.ErrNotFound
		if !errors.As(err, &notFound) {
			return "", err
		}
	}
	if existing != nil {
		return fmt.Sprintf("Você já tem uma conta chamada \"%s\".", existing.Name), nil
	}

	account, err := e.store.CreateAccount(ctx, &domain.Account{
		TenantID: tenantID,
		Name:     name,
		Type:     "checking",
		Currency: "BRL",
	})
	if err != nil {
		return "", err
	}
	e.accounts.Delete("accounts:" + tenantID)

	reply := fmt.Sprintf("✅ Conta \"%s\" criada!", account.Name)
	return format.WithSuggestions(reply, "minhas contas", "gastei R$ 50 em alimentação"), nil
}

// namedAccount is the strict variant of defaultAccount: the account must
// exist by name, otherwise the reply names the missing entity.
func (e *Executor) namedAccount(ctx context.Context, tenantID, name string) (*domain.Account, string, error) {
	account, err := e.store.FindAccountByName(ctx, tenantID, name)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, fmt.Sprintf("Não encontrei a conta \"%s\". Diga \"minhas contas\" para ver as existentes.", name), nil
		}
		return nil, "", err
	}
	return account, "", nil
}

// titleCase uppercases the first letter of each word of an extracted
// (lowercased) name for display.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
