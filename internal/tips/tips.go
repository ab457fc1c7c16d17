// Package tips holds the fixed collection of financial-education tips
// served by the financial_tip action.
package tips

import (
	"math/rand"
	"sync"

	"github.com/granaflow/grana-assistant-go/internal/domain"
)

var catalog = []domain.Tip{
	{Title: "Regra 50/30/20", Content: "Destine 50% da renda para necessidades, 30% para desejos e 20% para poupança e investimentos."},
	{Title: "Reserva de emergência", Content: "Antes de investir, monte uma reserva equivalente a 3 a 6 meses das suas despesas fixas."},
	{Title: "Pague-se primeiro", Content: "Separe o valor da poupança assim que o salário cair, não com o que sobra no fim do mês."},
	{Title: "Cuidado com o parcelamento", Content: "Parcelas pequenas somadas viram um gasto fixo grande. Some todas antes de assumir uma nova."},
	{Title: "Revise assinaturas", Content: "Cancele serviços recorrentes que você não usa há mais de um mês — eles corroem o orçamento em silêncio."},
	{Title: "Anote tudo", Content: "Registrar cada gasto, por menor que seja, é o passo mais eficaz para descobrir para onde seu dinheiro vai."},
	{Title: "Compare antes de comprar", Content: "Para compras acima de R$ 100, espere 24 horas e pesquise o preço em pelo menos três lugares."},
	{Title: "Orçamento por categoria", Content: "Defina um teto mensal por categoria de gasto e acompanhe o consumo ao longo do mês, não só no fim."},
	{Title: "Dívidas caras primeiro", Content: "Quite primeiro as dívidas com juros mais altos (cartão e cheque especial) antes de qualquer investimento."},
	{Title: "Metas com prazo", Content: "Meta sem valor e sem data é desejo. Defina quanto e até quando, e divida pelo número de meses."},
}

// Repository serves pseudo-random tips from the fixed catalog.
type Repository struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a tip repository seeded by the caller (tests pass a fixed
// seed for determinism).
func New(seed int64) *Repository {
	return &Repository{rng: rand.New(rand.NewSource(seed))}
}

// Random returns one tip from the catalog.
func (r *Repository) Random() domain.Tip {
	r.mu.Lock()
	defer r.mu.Unlock()
	return catalog[r.rng.Intn(len(catalog))]
}
