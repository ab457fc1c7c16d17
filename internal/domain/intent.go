package domain

import "time"

// Action identifies one of the operations the assistant can perform.
// The set is closed: the classifier never emits a value outside it.
type Action string

const (
	ActionCreateExpense          Action = "create_expense"
	ActionCreateIncome           Action = "create_income"
	ActionCreateTransfer         Action = "create_transfer"
	ActionCreateInstallment      Action = "create_installment"
	ActionCreateScheduled        Action = "create_scheduled"
	ActionDeleteLastTransaction  Action = "delete_last_transaction"
	ActionQueryExpenses          Action = "query_expenses"
	ActionQueryExpensesByCat     Action = "query_expenses_by_category"
	ActionQueryExpensesByAmount  Action = "query_expenses_by_amount"
	ActionQueryBalance           Action = "query_balance"
	ActionMonthlySummary         Action = "monthly_summary"
	ActionBudgetStatus           Action = "budget_status"
	ActionGoalProgress           Action = "goal_progress"
	ActionUpcomingBills          Action = "upcoming_bills"
	ActionMonthlyReport          Action = "monthly_report"
	ActionCreateAccount          Action = "create_account"
	ActionListAccounts           Action = "list_accounts"
	ActionFinancialTip           Action = "financial_tip"
	ActionSavingsSuggestions     Action = "savings_suggestions"
	ActionSpendingAnalysis       Action = "spending_analysis"
	ActionPeriodComparison       Action = "period_comparison"
	ActionTopSpendingCategory    Action = "top_spending_category"
	ActionSpendingForecast       Action = "spending_forecast"
	ActionDailyBudget            Action = "daily_budget"
	ActionAverageMonthlySpending Action = "average_monthly_spending"
	ActionExportTransactions     Action = "export_transactions"
	ActionGreeting               Action = "greeting"
	ActionHelp                   Action = "help"
	ActionUnknown                Action = "unknown"
)

// IntentParams carries everything the extractors pulled out of the
// utterance. Pointer fields distinguish "absent" from zero — an amount
// of 0 is never implied by a missing match.
type IntentParams struct {
	Amount       *float64
	MinAmount    *float64
	Description  string
	Category     string
	AccountName  string
	AccountFrom  string
	AccountTo    string
	Date         *time.Time
	Month        string // "YYYY-MM"
	Month2       string // second month for comparisons
	GoalName     string
	Installments int
}

// ParsedIntent is the typed interpretation of one utterance.
// Created once per message and discarded after execution.
type ParsedIntent struct {
	Action     Action
	Params     IntentParams
	Confidence float64 // advisory only; first match wins, never ranked
	Raw        string
}
