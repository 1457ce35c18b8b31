package analytics

// Fixed answers. Templates taking values live next to the recipe that fills them.
const (
	MsgNoData = "Não encontrei dados para o período selecionado."

	msgNoRevenueForConcentration = "Não há faturamento no período para calcular a concentração."
	msgConcentrationHigh         = "Isso indica uma **alta dependência** dos seus principais vendedores, o que pode ser um risco."
	msgConcentrationDiversified  = "Isso mostra um ecossistema **bem diversificado e saudável**, com baixo risco de dependência."
	msgConcentrationModerate     = "A concentração está em um nível moderado."

	msgNoSellersInPeriod = "Não há dados de lojas para analisar neste período."
	msgNoSellers         = "Não há dados de lojas para analisar."

	msgNoCorrelation      = "✅ **Não parece haver uma correlação clara** entre atrasos e notas ruins no período."
	msgNotEnoughDelayData = "✅ Não há dados suficientes de entregas com e sem atraso para comparar no período."

	msgNoSalesDays   = "Não há vendas registradas no período."
	msgNoAtRisk      = "✅ Nenhuma loja se enquadra nos critérios de risco no período."
	msgNoCategories  = "Não há dados de categorias para analisar no período."
	msgNoDeliveries  = "Não há dados de entrega suficientes no período."
	msgNoMonthlyData = "Não há dados suficientes no período para analisar uma queda mensal."
	msgNoReviews     = "Não há avaliações registradas no período."

	msgStable         = " O valor se manteve estável em relação ao período anterior."
	msgNoPreviousData = " Não há dados do período anterior para comparação."
)

// MsgHelp is returned for questions no rule understands
const MsgHelp = `❓ Desculpe, não entendi. Que tal tentar uma destas perguntas?

*(Lembre-se que a análise será feita no período que você selecionou no Dashboard!)*

---
**Visão Geral do Negócio**
- ` + "`Qual o faturamento?`" + `
- ` + "`Qual o ticket médio?`" + `
- ` + "`Qual a concentração de vendas?`" + `
- ` + "`Qual foi o melhor dia de vendas?`" + `
- ` + "`Qual foi o pior dia de vendas?`" + `
- ` + "`Houve queda nas vendas?`" + `
- ` + "`Quais as 3 categorias mais vendidas?`" + `

**Análise de Lojas (Sellers)**
- ` + "`Como está o desempenho dos vendedores?`" + `
- ` + "`Qual a loja com mais pedidos?`" + `
- ` + "`Qual loja tem o maior ticket?`" + `
- ` + "`Qual loja tem a melhor avaliação?`" + `
- ` + "`Qual loja tem a pior avaliação?`" + `
- ` + "`Quantas lojas ativas existem?`" + `
- ` + "`Quais lojas estão em risco?`" + `

**Análise de Clientes e Logística**
- ` + "`Atrasos na entrega afetam as avaliações?`" + `
- ` + "`Qual estado tem a entrega mais rápida?`" + `
- ` + "`Qual estado tem a pior entrega?`" + `
- ` + "`Qual o tempo médio de entrega?`" + `
- ` + "`Qual a taxa de atraso?`" + `
- ` + "`Quantos clientes únicos compraram?`" + `
- ` + "`Qual a nota média?`" + `
- ` + "`Qual o frete médio?`"
