package portfolio

import (
	"github.com/finsightapp/finsight/internal/models"
)

// QuoteResolver maps a symbol to its effective quote. Total function: it must
// return a usable quote for every symbol, falling back to the holding's
// store-of-record values when nothing fresher exists.
type QuoteResolver func(symbol string) models.Quote

// ComputeTotals derives aggregate valuation from holdings and a resolver.
// Pure function of its inputs:
//
//	totalValue  = Σ shares × price
//	totalChange = Σ shares × price × changePct / 100
//
// TotalChangePct is defined as 0 for an empty or zero-value portfolio, never
// NaN or Inf.
func ComputeTotals(holdings []*models.HoldingRecord, resolve QuoteResolver) *models.PortfolioTotals {
	totals := &models.PortfolioTotals{HoldingCount: len(holdings)}

	for _, holding := range holdings {
		quote := resolve(holding.Symbol)
		shares := float64(holding.Shares)
		totals.TotalValue += shares * quote.Price
		totals.TotalChangeDollars += shares * quote.Price * quote.ChangePct / 100
	}

	if totals.TotalValue != 0 {
		totals.TotalChangePct = totals.TotalChangeDollars / totals.TotalValue * 100
	}

	return totals
}

// RecordResolver builds a resolver over the holdings' store-of-record values
// alone. Used when no quote cache is available.
func RecordResolver(holdings []*models.HoldingRecord) QuoteResolver {
	bySymbol := make(map[string]models.Quote, len(holdings))
	for _, holding := range holdings {
		key := models.NormalizeSymbol(holding.Symbol)
		bySymbol[key] = models.Quote{
			Symbol:    key,
			Price:     holding.CurrentPrice,
			ChangePct: holding.ChangePct,
		}
	}
	return func(symbol string) models.Quote {
		return bySymbol[models.NormalizeSymbol(symbol)]
	}
}
