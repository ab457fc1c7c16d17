package nlp

import (
	"regexp"
	"strings"
	"time"

	"github.com/granaflow/grana-assistant-go/internal/domain"
)

// rule is one entry of the prioritized classification table. Ordering
// encodes priority: the FIRST matching rule wins, so greeting/help
// patterns sit above financial verbs ("bom dia" is never a query) and
// query phrasings of "gastei" sit above the create_expense verb rule.
// Confidence is fixed per rule and advisory only — rules are never
// ranked against each other.
type rule struct {
	re         *regexp.Regexp
	action     domain.Action
	confidence float64
	// when, if set, must also hold for the rule to match; otherwise
	// evaluation falls through to later rules (e.g. a category query
	// without an extractable category degrades to query_expenses).
	when func(text string) bool
}

var rules = []rule{
	// Social / meta — must beat every financial verb.
	{re: regexp.MustCompile(`(?i)^\s*(oi|olá|ola|bom dia|boa tarde|boa noite|e a[íi]|opa|hey)\b`), action: domain.ActionGreeting, confidence: 1.0},
	{re: regexp.MustCompile(`(?i)\b(ajuda|help|comandos|o que (você|voce) (faz|sabe)|como (usar|funciona))\b`), action: domain.ActionHelp, confidence: 0.95},
	{re: regexp.MustCompile(`(?i)\b(dicas?( financeiras?)?|conselho)\b`), action: domain.ActionFinancialTip, confidence: 0.9},

	// Accounts.
	{re: regexp.MustCompile(`(?i)\b(criar|abrir|nova)\s+(uma\s+)?conta\b`), action: domain.ActionCreateAccount, confidence: 0.95},
	{re: regexp.MustCompile(`(?i)\b(minhas contas|listar? (as )?contas|quais (são )?(as )?(minhas )?contas)\b`), action: domain.ActionListAccounts, confidence: 0.9},

	// Balance.
	{re: regexp.MustCompile(`(?i)\b(saldo|quanto (eu )?tenho)\b`), action: domain.ActionQueryBalance, confidence: 0.95},

	// Insights phrased around spending — checked before the bare
	// "gastei/paguei" verbs so questions never post transactions.
	{re: regexp.MustCompile(`(?i)\b(quanto (ainda )?posso gastar|or[çc]amento di[áa]rio|gastar por dia)\b`), action: domain.ActionDailyBudget, confidence: 0.9},
	{re: regexp.MustCompile(`(?i)\b(onde (mais )?gast(ei|o)|maior (gasto|categoria)|top categoria)\b`), action: domain.ActionTopSpendingCategory, confidence: 0.9},
	{re: regexp.MustCompile(`(?i)\b(previs[ãa]o|proje[çc][ãa]o)\b`), action: domain.ActionSpendingForecast, confidence: 0.85},
	{re: regexp.MustCompile(`(?i)\b(m[ée]dia (de )?gastos?|gasto m[ée]dio)\b`), action: domain.ActionAverageMonthlySpending, confidence: 0.85},
	{re: regexp.MustCompile(`(?i)\bcompar(e|ar|a[çc][ãa]o)\b`), action: domain.ActionPeriodComparison, confidence: 0.85},
	{re: regexp.MustCompile(`(?i)\ban[áa]lise\b`), action: domain.ActionSpendingAnalysis, confidence: 0.85},
	{re: regexp.MustCompile(`(?i)\b(economizar|economia|poupar|sugest(ão|ões) de economia)\b`), action: domain.ActionSavingsSuggestions, confidence: 0.85},

	// Reports & plans.
	{re: regexp.MustCompile(`(?i)\brelat[óo]rio\b`), action: domain.ActionMonthlyReport, confidence: 0.9},
	{re: regexp.MustCompile(`(?i)\bresumo\b`), action: domain.ActionMonthlySummary, confidence: 0.9},
	{re: regexp.MustCompile(`(?i)\bor[çc]amentos?\b`), action: domain.ActionBudgetStatus, confidence: 0.9},
	{re: regexp.MustCompile(`(?i)\bmetas?\b`), action: domain.ActionGoalProgress, confidence: 0.9},
	{re: regexp.MustCompile(`(?i)\b(contas a pagar|pr[óo]xim(as contas|os vencimentos)|vencimentos?|boletos?)\b`), action: domain.ActionUpcomingBills, confidence: 0.9},
	{re: regexp.MustCompile(`(?i)\bexportar?\b`), action: domain.ActionExportTransactions, confidence: 0.9},

	// Expense queries — "quanto gastei", "gastos em X", "acima de R$".
	{re: regexp.MustCompile(`(?i)\b(gastos?|despesas?)\b.*\b(acima d[eo]|maior(es)? que)\b`), action: domain.ActionQueryExpensesByAmount, confidence: 0.9},
	{
		re:     regexp.MustCompile(`(?i)\b(quanto gastei|gastos?|despesas?)\b.*\b(em|com|na|no|de)\b`),
		action: domain.ActionQueryExpensesByCat, confidence: 0.85,
		// Without an extractable category this falls through to the
		// general expense query below.
		when: func(text string) bool { return ExtractCategory(text) != "" },
	},
	{re: regexp.MustCompile(`(?i)\b(quanto gastei|meus gastos|minhas despesas|gastos|despesas|extrato)\b`), action: domain.ActionQueryExpenses, confidence: 0.85},

	// Writes.
	{re: regexp.MustCompile(`(?i)\b(apag(ar|a|ue)|exclu(ir|a)|delet(ar|a|e)|remov(er|a))\b.*\b([úu]ltim[oa]|lan[çc]amento|transa[çc][ãa]o)\b`), action: domain.ActionDeleteLastTransaction, confidence: 0.9},
	{re: regexp.MustCompile(`(?i)\btransfer(i|ir|ência|encia|e)\b`), action: domain.ActionCreateTransfer, confidence: 0.9},
	{re: regexp.MustCompile(`(?i)\b(parcel(ei|ar|ado)|em \d{1,2}\s*x\b|\d{1,2}\s*(vezes|parcelas))`), action: domain.ActionCreateInstallment, confidence: 0.9},
	{re: regexp.MustCompile(`(?i)\b(agend(ar|a|e)|lembr(ar|e) de pagar|vence dia)\b`), action: domain.ActionCreateScheduled, confidence: 0.85},
	{re: regexp.MustCompile(`(?i)\b(recebi|ganhei|entrou|caiu)\b`), action: domain.ActionCreateIncome, confidence: 0.9},
	{re: regexp.MustCompile(`(?i)\b(gastei|paguei|comprei)\b`), action: domain.ActionCreateExpense, confidence: 0.9},
}

// Parse classifies one utterance against the rule table and runs every
// extractor over it. It never fails: an unmatched utterance yields
// action=unknown with confidence 0.
func Parse(text string) domain.ParsedIntent {
	return ParseAt(text, time.Now())
}

// ParseAt is Parse with an injectable clock for deterministic tests.
func ParseAt(text string, now time.Time) domain.ParsedIntent {
	normalized := strings.TrimSpace(strings.ToLower(text))

	intent := domain.ParsedIntent{
		Action: domain.ActionUnknown,
		Raw:    text,
		Params: extractParams(text, now),
	}

	for _, r := range rules {
		if !r.re.MatchString(normalized) {
			continue
		}
		if r.when != nil && !r.when(normalized) {
			continue
		}
		intent.Action = r.action
		intent.Confidence = r.confidence
		break
	}
	return intent
}

// extractParams runs all extractors over the raw text. Extractors are
// independent of the matched rule: the executor picks what it needs.
func extractParams(text string, now time.Time) domain.IntentParams {
	from, to := ExtractTransferAccounts(text)
	month, month2 := ExtractMonthPair(text, now)
	if month == "" {
		month = ExtractMonth(text, now)
	}
	return domain.IntentParams{
		Amount:       ExtractAmount(text),
		MinAmount:    ExtractMinAmount(text),
		Category:     ExtractCategory(text),
		AccountName:  ExtractAccountName(text),
		AccountFrom:  from,
		AccountTo:    to,
		Date:         ExtractDate(text, now),
		Month:        month,
		Month2:       month2,
		GoalName:     ExtractGoalName(text),
		Installments: ExtractInstallments(text),
		Description:  ExtractCategory(text),
	}
}
