// Package report renders local PNG charts from the synchronized
// transaction collection. Rendering is entirely client-side and never
// talks to the server.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"monevo/internal/core"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// MonthlyTrend renders income and expenses per day for one month,
// with a cumulative balance line on top.
func (r *Renderer) MonthlyTrend(txs []core.Transaction, year, month int) ([]byte, error) {
	points := core.DailyTrend(txs, year, month)
	if len(points) == 0 {
		return nil, nil
	}

	xValues := make([]time.Time, len(points))
	incomeValues := make([]float64, len(points))
	expenseValues := make([]float64, len(points))
	balanceValues := make([]float64, len(points))

	runningBalance := 0.0
	hasData := false
	for i, p := range points {
		xValues[i] = p.Date
		incomeValues[i] = p.Income
		expenseValues[i] = p.Expense
		runningBalance += p.Income - p.Expense
		balanceValues[i] = runningBalance
		if p.Income != 0 || p.Expense != 0 {
			hasData = true
		}
	}
	if !hasData {
		return nil, nil
	}

	graph := chart.Chart{
		Width:  1200,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02/01"),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("R$%.0f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Despesas",
				XValues: xValues,
				YValues: expenseValues,
				Style: chart.Style{
					StrokeColor: chart.ColorRed,
					StrokeWidth: 2,
				},
			},
			chart.TimeSeries{
				Name:    "Receitas",
				XValues: xValues,
				YValues: incomeValues,
				Style: chart.Style{
					StrokeColor: chart.ColorGreen,
					StrokeWidth: 2,
				},
			},
			chart.TimeSeries{
				Name:    "Saldo acumulado",
				XValues: xValues,
				YValues: balanceValues,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 3,
				},
			},
		},
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph, chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		}),
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render monthly trend: %w", err)
	}
	return buffer.Bytes(), nil
}

// CategoryBreakdown renders the month's expenses by category as a bar
// chart, largest first.
func (r *Renderer) CategoryBreakdown(txs []core.Transaction, year, month int) ([]byte, error) {
	overview := core.Summarize(txs, year, month)
	if len(overview.ByCategory) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(overview.ByCategory))
	for _, cat := range overview.ByCategory {
		bars = append(bars, chart.Value{
			Label: cat.Name,
			Value: cat.Amount,
		})
	}

	graph := chart.BarChart{
		Width:    1200,
		Height:   600,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("R$%.0f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render category breakdown: %w", err)
	}
	return buffer.Bytes(), nil
}

// GoalProgress renders how far along each goal is, as percentage bars.
func (r *Renderer) GoalProgress(goals []core.Goal) ([]byte, error) {
	if len(goals) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(goals))
	for _, g := range goals {
		bars = append(bars, chart.Value{
			Label: g.Title,
			Value: g.Progress() * 100,
		})
	}

	graph := chart.BarChart{
		Width:    1200,
		Height:   600,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f%%", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render goal progress: %w", err)
	}
	return buffer.Bytes(), nil
}
