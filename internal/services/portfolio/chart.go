package portfolio

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/finsightapp/finsight/internal/models"
)

// maxChartSlices caps the number of named slices; smaller positions fold into
// an "Other" slice so labels stay readable.
const maxChartSlices = 8

// RenderAllocationChart renders a PNG donut chart of portfolio allocation by
// market value. Returns raw PNG bytes.
func RenderAllocationChart(holdings []*models.HoldingView) ([]byte, error) {
	if len(holdings) == 0 {
		return nil, fmt.Errorf("no holdings to chart")
	}

	sorted := append([]*models.HoldingView(nil), holdings...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MarketValue > sorted[j].MarketValue
	})

	var values []chart.Value
	var other float64
	for i, holding := range sorted {
		if holding.MarketValue <= 0 {
			continue
		}
		if i < maxChartSlices {
			values = append(values, chart.Value{
				Label: holding.Symbol,
				Value: holding.MarketValue,
			})
		} else {
			other += holding.MarketValue
		}
	}
	if other > 0 {
		values = append(values, chart.Value{Label: "Other", Value: other})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no positive-value holdings to chart")
	}

	graph := chart.DonutChart{
		Title:  "Portfolio Allocation",
		Width:  512,
		Height: 512,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
