package executor

// User-facing reply fragments. Expected-outcome messages (clarifying,
// corrective, guidance) are ordinary values per the error taxonomy —
// only msgGenericFailure corresponds to an actual error.
const (
	msgGenericFailure = "😔 Tive um problema ao acessar seus dados agora. Tente novamente em instantes."

	msgNoAccounts = "Você ainda não tem nenhuma conta cadastrada. " +
		"Crie uma primeiro, por exemplo: \"criar conta Carteira\"."

	msgNoExpenseCategories = "Você ainda não tem categorias de despesa cadastradas. " +
		"Cadastre suas categorias para começar a registrar gastos."

	msgNoIncomeCategories = "Você ainda não tem categorias de receita cadastradas. " +
		"Cadastre suas categorias para começar a registrar receitas."

	msgAmountMissingExpense = "Não consegui identificar o valor. " +
		"Tente algo como: \"gastei R$ 50 em alimentação\"."

	msgAmountMissingIncome = "Não consegui identificar o valor. " +
		"Tente algo como: \"recebi R$ 3.000 de salário\"."

	msgAmountMissingTransfer = "Não consegui identificar o valor da transferência. " +
		"Tente algo como: \"transferi R$ 100 da conta Carteira para a conta Poupança\"."

	msgTransferAccountsMissing = "Preciso das duas contas para transferir. " +
		"Tente algo como: \"transferi R$ 100 da conta Carteira para a conta Poupança\"."

	msgInstallmentMissing = "Não consegui identificar o parcelamento. O valor é o total da compra. " +
		"Tente algo como: \"comprei um notebook de R$ 3.000 em 10x\" ou \"parcelei R$ 600 em 3 vezes\"."

	msgScheduledMissing = "Não consegui identificar o valor do agendamento. " +
		"Tente algo como: \"agendar pagamento de R$ 120 dia 15\"."

	msgAccountNameMissing = "Qual o nome da nova conta? " +
		"Tente algo como: \"criar conta Poupança\"."

	msgNothingToDelete = "Não encontrei nenhum lançamento para apagar."

	msgNoBudgets = "Você ainda não definiu orçamentos para este mês. " +
		"Defina um teto por categoria para acompanhar seus limites."

	msgNoGoals = "Você ainda não tem metas de economia cadastradas. " +
		"Crie uma meta para acompanhar seu progresso."

	msgUnknown = "Não entendi o que você quis dizer. 🤔\n\n" +
		"Alguns exemplos do que posso fazer:\n" +
		"• \"gastei R$ 50 em alimentação\"\n" +
		"• \"recebi R$ 3.000 de salário\"\n" +
		"• \"qual meu saldo?\"\n" +
		"• \"resumo do mês\"\n" +
		"• \"ajuda\" para ver tudo"
)
