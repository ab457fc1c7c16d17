package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/granaflow/grana-assistant-go/internal/domain"
	"github.com/granaflow/grana-assistant-go/internal/format"
)

// Query handlers: pure reads over a resolved date range (explicit month
// param, else the current month), rendered through the formatter.

const expenseListLimit = 10

func (e *Executor) queryExpenses(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	month := e.resolveMonth(p.Month)
	from, to := format.MonthRange(month, e.now())

	txs, err := e.store.ListTransactions(ctx, tenantID, domain.TransactionFilter{
		Type: domain.TransactionExpense,
		From: from,
		To:   to,
	})
	if err != nil {
		return "", err
	}
	if len(txs) == 0 {
		return fmt.Sprintf("Nenhum gasto encontrado em %s. 🎉", format.MonthLabel(month)), nil
	}

	return renderExpenseList(fmt.Sprintf("💸 Gastos de %s", format.MonthLabel(month)), txs), nil
}

func (e *Executor) queryExpensesByCategory(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	category, err := e.store.FindCategoryByName(ctx, tenantID, p.Category)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return fmt.Sprintf("Não encontrei a categoria \"%s\".", p.Category), nil
		}
		return "", err
	}

	month := e.resolveMonth(p.Month)
	from, to := format.MonthRange(month, e.now())

	txs, err := e.store.ListTransactions(ctx, tenantID, domain.TransactionFilter{
		Type:       domain.TransactionExpense,
		CategoryID: category.ID,
		From:       from,
		To:         to,
	})
	if err != nil {
		return "", err
	}
	if len(txs) == 0 {
		return fmt.Sprintf("Nenhum gasto em %s durante %s.", category.Name, format.MonthLabel(month)), nil
	}

	title := fmt.Sprintf("💸 Gastos em %s — %s", category.Name, format.MonthLabel(month))
	return renderExpenseList(title, txs), nil
}

func (e *Executor) queryExpensesByAmount(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	if p.MinAmount == nil {
		return "Acima de qual valor? Tente algo como: \"gastos acima de R$ 100\".", nil
	}

	month := e.resolveMonth(p.Month)
	from, to := format.MonthRange(month, e.now())

	txs, err := e.store.ListTransactions(ctx, tenantID, domain.TransactionFilter{
		Type:      domain.TransactionExpense,
		MinAmount: *p.MinAmount,
		From:      from,
		To:        to,
	})
	if err != nil {
		return "", err
	}
	if len(txs) == 0 {
		return fmt.Sprintf("Nenhum gasto acima de %s em %s.",
			format.Currency(*p.MinAmount), format.MonthLabel(month)), nil
	}

	title := fmt.Sprintf("💸 Gastos acima de %s — %s", format.Currency(*p.MinAmount), format.MonthLabel(month))
	return renderExpenseList(title, txs), nil
}

// queryBalance computes each account's balance as
// sum(income) − sum(expense) + sum(transfersIn) − sum(transfersOut).
// Balance is derived, never stored — this formula is canonical.
func (e *Executor) queryBalance(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	accounts, err := e.listTenantAccounts(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return msgNoAccounts, nil
	}

	var b strings.Builder
	b.WriteString("🏦 **Saldo das contas**\n")
	total := 0.0
	for _, account := range accounts {
		income, err := e.store.SumTransactions(ctx, tenantID, domain.TransactionFilter{
			Type: domain.TransactionIncome, AccountID: account.ID,
		})
		if err != nil {
			return "", err
		}
		expense, err := e.store.SumTransactions(ctx, tenantID, domain.TransactionFilter{
			Type: domain.TransactionExpense, AccountID: account.ID,
		})
		if err != nil {
			return "", err
		}
		transfersIn, err := e.store.SumTransfers(ctx, tenantID, account.ID, true)
		if err != nil {
			return "", err
		}
		transfersOut, err := e.store.SumTransfers(ctx, tenantID, account.ID, false)
		if err != nil {
			return "", err
		}

		balance := income - expense + transfersIn - transfersOut
		total += balance
		fmt.Fprintf(&b, "\n• %s: %s", account.Name, format.Currency(balance))
	}
	fmt.Fprintf(&b, "\n\n💰 **Total: %s**", format.Currency(total))

	return format.WithSuggestions(b.String(), "resumo do mês", "quanto gastei esse mês?"), nil
}

func (e *Executor) monthlySummary(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	month := e.resolveMonth(p.Month)
	from, to := format.MonthRange(month, e.now())

	income, err := e.store.SumTransactions(ctx, tenantID, domain.TransactionFilter{
		Type: domain.TransactionIncome, From: from, To: to,
	})
	if err != nil {
		return "", err
	}
	expense, err := e.store.SumTransactions(ctx, tenantID, domain.TransactionFilter{
		Type: domain.TransactionExpense, From: from, To: to,
	})
	if err != nil {
		return "", err
	}

	result := income - expense
	mood := "🟢"
	if result < 0 {
		mood = "🔴"
	}

	reply := fmt.Sprintf("📊 **Resumo de %s**\n\n💰 Receitas: %s\n💸 Despesas: %s\n%s Resultado: %s",
		format.MonthLabel(month), format.Currency(income), format.Currency(expense),
		mood, format.Currency(result))
	return format.WithSuggestions(reply, "relatório do mês", "onde mais gastei?"), nil
}

func (e *Executor) budgetStatus(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	month := e.resolveMonth(p.Month)
	budgets, err := e.store.ListBudgets(ctx, tenantID, month)
	if err != nil {
		return "", err
	}
	if len(budgets) == 0 {
		return msgNoBudgets, nil
	}

	names, err := e.categoryNames(ctx, tenantID)
	if err != nil {
		return "", err
	}
	from, to := format.MonthRange(month, e.now())

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 **Orçamentos de %s**\n", format.MonthLabel(month))
	for _, budget := range budgets {
		spent, err := e.store.SumTransactions(ctx, tenantID, domain.TransactionFilter{
			Type: domain.TransactionExpense, CategoryID: budget.CategoryID, From: from, To: to,
		})
		if err != nil {
			return "", err
		}

		pct := 0.0
		if budget.Amount > 0 {
			pct = spent / budget.Amount * 100
		}
		name := names[budget.CategoryID]
		if name == "" {
			name = "Sem categoria"
		}
		fmt.Fprintf(&b, "\n%s %s\n%s  %s de %s",
			format.StatusEmoji(pct), name, format.ProgressBar(pct),
			format.Currency(spent), format.Currency(budget.Amount))
	}

	return format.WithSuggestions(b.String(), "quanto posso gastar por dia?"), nil
}

func (e *Executor) goalProgress(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	var goals []domain.SavingsGoal
	if p.GoalName != "" {
		goal, err := e.store.FindSavingsGoalByName(ctx, tenantID, p.GoalName)
		if err != nil {
			var notFound *domain.ErrNotFound
			if errors.As(err, &notFound) {
				return fmt.Sprintf("Não encontrei a meta \"%s\".", p.GoalName), nil
			}
			return "", err
		}
		goals = []domain.SavingsGoal{*goal}
	} else {
		var err error
		goals, err = e.store.ListSavingsGoals(ctx, tenantID)
		if err != nil {
			return "", err
		}
	}
	if len(goals) == 0 {
		return msgNoGoals, nil
	}

	var b strings.Builder
	b.WriteString("🎯 **Metas de economia**\n")
	for _, goal := range goals {
		pct := 0.0
		if goal.TargetAmount > 0 {
			pct = goal.CurrentAmount / goal.TargetAmount * 100
		}
		fmt.Fprintf(&b, "\n**%s**\n%s  %s de %s",
			goal.Name, format.ProgressBar(pct),
			format.Currency(goal.CurrentAmount), format.Currency(goal.TargetAmount))
		if goal.Deadline != nil {
			fmt.Fprintf(&b, " (até %s)", format.Date(*goal.Deadline))
		}
	}

	return format.WithSuggestions(b.String(), "sugestões de economia"), nil
}

func (e *Executor) upcomingBills(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	now := e.now()
	payables, err := e.store.ListPayables(ctx, tenantID, true, now.AddDate(0, 0, 30))
	if err != nil {
		return "", err
	}
	if len(payables) == 0 {
		return "Nenhuma conta a vencer nos próximos 30 dias. 🎉", nil
	}

	var b strings.Builder
	b.WriteString("📅 **Contas a pagar (próximos 30 dias)**\n")
	total := 0.0
	for _, payable := range payables {
		marker := "•"
		if payable.DueDate.Before(now) {
			marker = "⚠️"
		}
		total += payable.Amount
		fmt.Fprintf(&b, "\n%s %s — %s (vence %s)",
			marker, payable.Description, format.Currency(payable.Amount), format.Date(payable.DueDate))
	}
	fmt.Fprintf(&b, "\n\n💸 Total: %s", format.Currency(total))

	return b.String(), nil
}

func (e *Executor) listAccounts(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	accounts, err := e.listTenantAccounts(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return msgNoAccounts, nil
	}

	var b strings.Builder
	b.WriteString("🏦 **Suas contas**\n")
	for _, account := range accounts {
		fmt.Fprintf(&b, "\n• %s (%s)", account.Name, account.Type)
	}
	return format.WithSuggestions(b.String(), "qual meu saldo?"), nil
}

// exportTransactions renders the month's movements as a pipe-delimited
// table — the chat surface renders it as rich text.
func (e *Executor) exportTransactions(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	month := e.resolveMonth(p.Month)
	from, to := format.MonthRange(month, e.now())

	txs, err := e.store.ListTransactions(ctx, tenantID, domain.TransactionFilter{From: from, To: to})
	if err != nil {
		return "", err
	}
	if len(txs) == 0 {
		return fmt.Sprintf("Nenhuma movimentação em %s para exportar.", format.MonthLabel(month)), nil
	}

	names, err := e.categoryNames(ctx, tenantID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📄 **Movimentações de %s**\n\n", format.MonthLabel(month))
	b.WriteString("| Data | Descrição | Categoria | Tipo | Valor |\n")
	b.WriteString("|------|-----------|-----------|------|-------|\n")
	for _, tx := range txs {
		kind := "Despesa"
		if tx.Type == domain.TransactionIncome {
			kind = "Receita"
		}
		name := names[tx.CategoryID]
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			format.Date(tx.Date), tx.Description, name, kind, format.Currency(tx.Amount))
	}
	return b.String(), nil
}

// renderExpenseList shows the first rows plus the total of all of them.
func renderExpenseList(title string, txs []domain.Transaction) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteByte('\n')

	total := 0.0
	for _, tx := range txs {
		total += tx.Amount
	}
	shown := txs
	if len(shown) > expenseListLimit {
		shown = shown[:expenseListLimit]
	}
	for _, tx := range shown {
		fmt.Fprintf(&b, "\n• %s — %s: %s", format.Date(tx.Date), tx.Description, format.Currency(tx.Amount))
	}
	if len(txs) > expenseListLimit {
		fmt.Fprintf(&b, "\n… e mais %d lançamentos", len(txs)-expenseListLimit)
	}
	fmt.Fprintf(&b, "\n\n💸 Total: %s (%d lançamentos)", format.Currency(total), len(txs))
	return b.String()
}
