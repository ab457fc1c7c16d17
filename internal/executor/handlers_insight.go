package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/granaflow/grana-assistant-go/internal/domain"
	"github.com/granaflow/grana-assistant-go/internal/format"

	"golang.org/x/sync/errgroup"
)

// Insight handlers: aggregations, projections and comparisons.
// Independent reads run concurrently via errgroup; results land in
// dedicated variables so formatting always sees them in the original
// order.

func (e *Executor) monthlyReport(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	month := e.resolveMonth(p.Month)
	from, to := format.MonthRange(month, e.now())

	var (
		income   float64
		expense  float64
		expenses []domain.Transaction
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		income, err = e.store.SumTransactions(gCtx, tenantID, domain.TransactionFilter{
			Type: domain.TransactionIncome, From: from, To: to,
		})
		return err
	})
	g.Go(func() error {
		var err error
		expense, err = e.store.SumTransactions(gCtx, tenantID, domain.TransactionFilter{
			Type: domain.TransactionExpense, From: from, To: to,
		})
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = e.store.ListTransactions(gCtx, tenantID, domain.TransactionFilter{
			Type: domain.TransactionExpense, From: from, To: to,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📈 **Relatório de %s**\n\n", format.MonthLabel(month))
	fmt.Fprintf(&b, "💰 Receitas: %s\n💸 Despesas: %s\n🧮 Resultado: %s\n",
		format.Currency(income), format.Currency(expense), format.Currency(income-expense))

	if len(expenses) > 0 {
		names, err := e.categoryNames(ctx, tenantID)
		if err != nil {
			return "", err
		}
		rows := groupByCategory(expenses, names)
		b.WriteString("\n**Gastos por categoria**\n```\n")
		b.WriteString(format.BarChart(rows))
		b.WriteString("\n```")
	}

	return format.WithSuggestions(b.String(), "comparar com mês passado", "previsão de gastos"), nil
}

func (e *Executor) spendingAnalysis(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	month := e.resolveMonth(p.Month)
	from, to := format.MonthRange(month, e.now())

	expenses, err := e.store.ListTransactions(ctx, tenantID, domain.TransactionFilter{
		Type: domain.TransactionExpense, From: from, To: to,
	})
	if err != nil {
		return "", err
	}
	if len(expenses) == 0 {
		return fmt.Sprintf("Sem gastos em %s para analisar.", format.MonthLabel(month)), nil
	}

	names, err := e.categoryNames(ctx, tenantID)
	if err != nil {
		return "", err
	}
	rows := groupByCategory(expenses, names)

	total := 0.0
	for _, r := range rows {
		total += r.Value
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 **Análise de gastos — %s**\n\nTotal: %s em %d lançamentos\n",
		format.MonthLabel(month), format.Currency(total), len(expenses))
	for _, r := range rows {
		pct := r.Value / total * 100
		fmt.Fprintf(&b, "\n• %s: %s (%.0f%%)", r.Label, format.Currency(r.Value), pct)
	}
	if total > 0 {
		fmt.Fprintf(&b, "\n\n⚠️ Sua maior categoria é **%s**, com %.0f%% do total.",
			rows[0].Label, rows[0].Value/total*100)
	}

	return format.WithSuggestions(b.String(), "sugestões de economia"), nil
}

// periodComparison queries the two months concurrently and renders the
// percentage change, defined only when the previous month is positive.
func (e *Executor) periodComparison(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	now := e.now()
	previous, current := p.Month, p.Month2
	if previous == "" || current == "" {
		current = now.Format("2006-01")
		previous = now.AddDate(0, -1, 0).Format("2006-01")
	}

	prevFrom, prevTo := format.MonthRange(previous, now)
	curFrom, curTo := format.MonthRange(current, now)

	var prevTotal, curTotal float64
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prevTotal, err = e.store.SumTransactions(gCtx, tenantID, domain.TransactionFilter{
			Type: domain.TransactionExpense, From: prevFrom, To: prevTo,
		})
		return err
	})
	g.Go(func() error {
		var err error
		curTotal, err = e.store.SumTransactions(gCtx, tenantID, domain.TransactionFilter{
			Type: domain.TransactionExpense, From: curFrom, To: curTo,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	variation := "-"
	if prevTotal > 0 {
		pct := (curTotal - prevTotal) / prevTotal * 100
		arrow := "⬆️"
		if pct < 0 {
			arrow = "⬇️"
		}
		variation = fmt.Sprintf("%s %.1f%%", arrow, pct)
	}

	var b strings.Builder
	b.WriteString("⚖️ **Comparação de gastos**\n\n")
	b.WriteString("| Mês | Gastos |\n|-----|--------|\n")
	fmt.Fprintf(&b, "| %s | %s |\n", format.MonthLabel(previous), format.Currency(prevTotal))
	fmt.Fprintf(&b, "| %s | %s |\n", format.MonthLabel(current), format.Currency(curTotal))
	fmt.Fprintf(&b, "\nVariação: %s", variation)

	return b.String(), nil
}

func (e *Executor) topSpendingCategory(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	month := e.resolveMonth(p.Month)
	from, to := format.MonthRange(month, e.now())

	expenses, err := e.store.ListTransactions(ctx, tenantID, domain.TransactionFilter{
		Type: domain.TransactionExpense, From: from, To: to,
	})
	if err != nil {
		return "", err
	}
	if len(expenses) == 0 {
		return fmt.Sprintf("Sem gastos em %s.", format.MonthLabel(month)), nil
	}

	names, err := e.categoryNames(ctx, tenantID)
	if err != nil {
		return "", err
	}
	rows := groupByCategory(expenses, names)

	total := 0.0
	for _, r := range rows {
		total += r.Value
	}
	top := rows[0]

	chart := rows
	if len(chart) > 5 {
		chart = chart[:5]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 **Maior gasto de %s: %s**\n\n%s — %.0f%% do total\n",
		format.MonthLabel(month), top.Label, format.Currency(top.Value), top.Value/total*100)
	b.WriteString("\n```\n")
	b.WriteString(format.BarChart(chart))
	b.WriteString("\n```")

	return b.String(), nil
}

// spendingForecast projects the month's total from the daily average:
// dailyAvg = spent / daysElapsed; projection = dailyAvg × daysInMonth.
func (e *Executor) spendingForecast(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	now := e.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	spent, err := e.store.SumTransactions(ctx, tenantID, domain.TransactionFilter{
		Type: domain.TransactionExpense, From: monthStart, To: now,
	})
	if err != nil {
		return "", err
	}

	daysElapsed := now.Day()
	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	dailyAvg := spent / float64(daysElapsed)
	projected := dailyAvg * float64(daysInMonth)

	reply := fmt.Sprintf("🔮 **Previsão de gastos do mês**\n\n"+
		"Gasto até agora: %s (%d dias)\nMédia diária: %s\nProjeção para %d dias: **%s**",
		format.Currency(spent), daysElapsed, format.Currency(dailyAvg), daysInMonth, format.Currency(projected))
	return format.WithSuggestions(reply, "quanto posso gastar por dia?"), nil
}

// dailyBudget shows what is left to spend per remaining day of the
// month: (budgeted − spent) / daysRemaining, floored at zero.
func (e *Executor) dailyBudget(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	now := e.now()
	month := now.Format("2006-01")

	budgets, err := e.store.ListBudgets(ctx, tenantID, month)
	if err != nil {
		return "", err
	}
	if len(budgets) == 0 {
		return msgNoBudgets, nil
	}

	budgeted := 0.0
	for _, budget := range budgets {
		budgeted += budget.Amount
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	spent, err := e.store.SumTransactions(ctx, tenantID, domain.TransactionFilter{
		Type: domain.TransactionExpense, From: monthStart, To: now,
	})
	if err != nil {
		return "", err
	}

	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	daysRemaining := daysInMonth - now.Day() + 1
	perDay := (budgeted - spent) / float64(daysRemaining)

	if perDay <= 0 {
		return fmt.Sprintf("🔴 Orçamento estourado: você já gastou %s de %s este mês. "+
			"O ideal é segurar os gastos até o fim do mês.",
			format.Currency(spent), format.Currency(budgeted)), nil
	}

	reply := fmt.Sprintf("📆 **Orçamento diário**\n\n"+
		"Restam %s de %s para %d dias.\nVocê pode gastar **%s por dia**.",
		format.Currency(budgeted-spent), format.Currency(budgeted), daysRemaining, format.Currency(perDay))
	return reply, nil
}

const averageWindowMonths = 6

func (e *Executor) averageMonthlySpending(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	now := e.now()

	var rows []format.ChartRow
	total := 0.0
	monthsWithData := 0
	for i := averageWindowMonths - 1; i >= 0; i-- {
		ref := now.AddDate(0, -i, 0)
		month := ref.Format("2006-01")
		from, to := format.MonthRange(month, now)

		sum, err := e.store.SumTransactions(ctx, tenantID, domain.TransactionFilter{
			Type: domain.TransactionExpense, From: from, To: to,
		})
		if err != nil {
			return "", err
		}
		rows = append(rows, format.ChartRow{Label: format.MonthLabel(month), Value: sum})
		if sum > 0 {
			total += sum
			monthsWithData++
		}
	}
	if monthsWithData == 0 {
		return "Ainda não há gastos registrados nos últimos meses.", nil
	}

	average := total / float64(monthsWithData)

	var b strings.Builder
	fmt.Fprintf(&b, "📊 **Gasto médio mensal: %s**\n(últimos %d meses com movimentação)\n",
		format.Currency(average), monthsWithData)
	b.WriteString("\n```\n")
	b.WriteString(format.BarChart(rows))
	b.WriteString("\n```")
	return b.String(), nil
}

func (e *Executor) financialTip(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	tip := e.tips.Random()
	return fmt.Sprintf("💡 **%s**\n\n%s", tip.Title, tip.Content), nil
}

func (e *Executor) savingsSuggestions(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	now := e.now()
	month := now.Format("2006-01")
	from, to := format.MonthRange(month, now)

	expenses, err := e.store.ListTransactions(ctx, tenantID, domain.TransactionFilter{
		Type: domain.TransactionExpense, From: from, To: to,
	})
	if err != nil {
		return "", err
	}
	recurring, err := e.store.ListRecurring(ctx, tenantID, true)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("💰 **Sugestões de economia**\n")

	if len(expenses) > 0 {
		names, err := e.categoryNames(ctx, tenantID)
		if err != nil {
			return "", err
		}
		rows := groupByCategory(expenses, names)
		top := rows[0]
		fmt.Fprintf(&b, "\n1. Sua maior categoria este mês é **%s** (%s). "+
			"Reduzir 10%% economizaria %s por mês.",
			top.Label, format.Currency(top.Value), format.Currency(top.Value*0.10))
	} else {
		b.WriteString("\n1. Registre seus gastos diários para eu identificar onde dá para cortar.")
	}

	if len(recurring) > 0 {
		fmt.Fprintf(&b, "\n2. Você tem %d lançamentos recorrentes ativos. "+
			"Revise se todos ainda fazem sentido.", len(recurring))
	} else {
		b.WriteString("\n2. Monte uma reserva de emergência antes de novos compromissos fixos.")
	}

	tip := e.tips.Random()
	fmt.Fprintf(&b, "\n3. %s", tip.Content)

	return b.String(), nil
}

func (e *Executor) greeting(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	reply := "Olá! 👋 Sou seu assistente financeiro.\n\n" +
		"Me conte seus gastos e receitas em linguagem natural e eu cuido do resto."
	return format.WithSuggestions(reply,
		"gastei R$ 50 em alimentação",
		"qual meu saldo?",
		"resumo do mês"), nil
}

func (e *Executor) help(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	return "🤖 **O que eu sei fazer**\n\n" +
		"**Registrar**\n" +
		"• \"gastei R$ 50 em alimentação\"\n" +
		"• \"recebi R$ 3.000 de salário\"\n" +
		"• \"transferi R$ 100 da conta Carteira para a conta Poupança\"\n" +
		"• \"comprei um notebook de R$ 3.000 em 10x\"\n" +
		"• \"agendar pagamento de R$ 120 dia 15\"\n" +
		"• \"apagar último lançamento\"\n\n" +
		"**Consultar**\n" +
		"• \"qual meu saldo?\" • \"quanto gastei esse mês?\"\n" +
		"• \"gastos em alimentação\" • \"gastos acima de R$ 100\"\n" +
		"• \"resumo do mês\" • \"relatório do mês\" • \"exportar\"\n\n" +
		"**Planejar**\n" +
		"• \"como estão meus orçamentos?\" • \"minhas metas\"\n" +
		"• \"contas a pagar\" • \"previsão de gastos\"\n" +
		"• \"quanto posso gastar por dia?\" • \"comparar janeiro e fevereiro\"\n" +
		"• \"onde mais gastei?\" • \"média de gastos\" • \"sugestões de economia\"\n" +
		"• \"me dê uma dica\"", nil
}

func (e *Executor) unknown(ctx context.Context, p *domain.IntentParams, tenantID string) (string, error) {
	return msgUnknown, nil
}

// groupByCategory sums expenses per category name, descending by value.
func groupByCategory(txs []domain.Transaction, names map[string]string) []format.ChartRow {
	totals := make(map[string]float64)
	for _, tx := range txs {
		name := names[tx.CategoryID]
		if name == "" {
			name = "Outros"
		}
		totals[name] += tx.Amount
	}

	rows := make([]format.ChartRow, 0, len(totals))
	for name, value := range totals {
		rows = append(rows, format.ChartRow{Label: name, Value: value})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	return rows
}
