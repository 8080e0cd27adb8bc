package conversation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"finbot/internal/charts"
	"finbot/internal/export"
	"finbot/internal/logger"
	"finbot/internal/rates"
	"finbot/internal/services"
)

const (
	weekTrendDays    = 7
	diagramTrendDays = 30
)

func money(d decimal.Decimal, currency string) string {
	return d.StringFixed(2) + " " + currency
}

func (e *Engine) showBalance(t *turn) ([]Reply, error) {
	b, err := e.analytics.GetBalance(t.user.ID)
	if err != nil {
		return nil, err
	}
	return menuReply(fmt.Sprintf("📊 Баланс: %s\n💵 Доходы: %s\n💸 Расходы: %s",
		money(b.Net, t.user.Currency), money(b.Income, t.user.Currency), money(b.Expense, t.user.Currency))), nil
}

// Statistics.

func (e *Engine) startStats(t *turn) ([]Reply, error) {
	e.advance(t, StateAwaitingStatsChoice)
	return []Reply{{Text: msgChoosePeriod, Keyboard: statsMenu}}, nil
}

func (e *Engine) onStatsChoice(t *turn) ([]Reply, error) {
	switch t.text {
	case btnStatsDay:
		e.end(t)
		return e.statsToday(t)
	case btnStatsWeek:
		e.end(t)
		return e.statsWeek(t)
	case btnStatsMonth:
		e.end(t)
		return e.statsMonth(t)
	case btnStatsByCat:
		e.end(t)
		return e.statsByCategory(t)
	}

	e.stay(t)
	return []Reply{{Text: msgChoosePeriod, Keyboard: statsMenu}}, nil
}

func (e *Engine) statsToday(t *turn) ([]Reply, error) {
	total, err := e.analytics.GetTodayExpenseTotal(t.user.ID)
	if err != nil {
		return nil, err
	}
	replies := menuReply("📅 Расходы за сегодня: " + money(total, t.user.Currency))

	byCat, err := e.analytics.GetTodayExpensesByCategory(t.user.ID)
	if err != nil {
		return nil, err
	}
	if anyNonZero(byCat) {
		replies = append(replies, e.barReply(capTodayByCat, byCat))
	}
	return replies, nil
}

func (e *Engine) statsWeek(t *turn) ([]Reply, error) {
	trend, err := e.analytics.GetBalanceTrend(t.user.ID, weekTrendDays)
	if err != nil {
		return nil, err
	}
	return []Reply{e.lineReply(capWeekTrend, trend)}, nil
}

func (e *Engine) statsMonth(t *turn) ([]Reply, error) {
	byCat, err := e.analytics.GetMonthlyExpensesByCategory(t.user.ID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, ct := range byCat {
		total = total.Add(ct.Total)
	}

	replies := menuReply("📆 Расходы за месяц: " + money(total, t.user.Currency))
	if anyNonZero(byCat) {
		replies = append(replies, e.barReply(capMonthByCat, byCat))
	}
	return replies, nil
}

func (e *Engine) statsByCategory(t *turn) ([]Reply, error) {
	byCat, err := e.analytics.GetMonthlyExpensesByCategory(t.user.ID)
	if err != nil {
		return nil, err
	}
	if len(byCat) == 0 {
		return menuReply(msgNoExpenseCats), nil
	}

	var b strings.Builder
	b.WriteString("🗂 Расходы по категориям за месяц:")
	for _, ct := range byCat {
		fmt.Fprintf(&b, "\n%s: %s", ct.Name, money(ct.Total, t.user.Currency))
	}
	return menuReply(b.String()), nil
}

func (e *Engine) showDiagrams(t *turn) ([]Reply, error) {
	byCat, err := e.analytics.GetMonthlyExpensesByCategory(t.user.ID)
	if err != nil {
		return nil, err
	}
	trend, err := e.analytics.GetBalanceTrend(t.user.ID, diagramTrendDays)
	if err != nil {
		return nil, err
	}
	return []Reply{
		e.barReply(capDiagramByCat, byCat),
		e.lineReply(capDiagramTrend, trend),
	}, nil
}

// barReply renders per-category totals. Rendering failures become a notice
// instead of failing the step.
func (e *Engine) barReply(caption string, totals []services.CategoryTotal) Reply {
	labels := make([]string, len(totals))
	values := make([]float64, len(totals))
	for i, ct := range totals {
		labels[i] = ct.Name
		values[i] = ct.Total.InexactFloat64()
	}

	img, err := e.charts.RenderBar(caption, labels, values)
	if err != nil {
		logger.Get().Warnw("bar chart rendering failed", "error", err)
		return Reply{Text: msgChartFailed, Keyboard: mainMenu}
	}
	return Reply{Text: caption, Keyboard: mainMenu, Photo: &Attachment{Name: "chart.png", Data: img}}
}

func (e *Engine) lineReply(caption string, trend []services.TrendPoint) Reply {
	points := make([]charts.Point, len(trend))
	for i, p := range trend {
		points[i] = charts.Point{Date: p.Date, Value: p.Cumulative.InexactFloat64()}
	}

	img, err := e.charts.RenderLine(caption, points)
	if err != nil {
		logger.Get().Warnw("line chart rendering failed", "error", err)
		return Reply{Text: msgChartFailed, Keyboard: mainMenu}
	}
	return Reply{Text: caption, Keyboard: mainMenu, Photo: &Attachment{Name: "trend.png", Data: img}}
}

func anyNonZero(totals []services.CategoryTotal) bool {
	for _, ct := range totals {
		if !ct.Total.IsZero() {
			return true
		}
	}
	return false
}

// Rates.

func (e *Engine) showRates(t *turn) ([]Reply, error) {
	r, err := e.rates.FetchRates(t.ctx, t.user.Currency, rates.DefaultSymbols)
	if err != nil {
		logger.Get().Warnw("rate lookup failed", "base", t.user.Currency, "error", err)
		return menuReply(msgRatesFailed), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🌐 Курс валют к %s на %s:", r.Base, r.Date)
	for _, code := range rates.DefaultSymbols {
		if v, ok := r.Rates[code]; ok {
			fmt.Fprintf(&b, "\n%s: %.4f", code, v)
		}
	}
	return menuReply(b.String()), nil
}

// Export.

func (e *Engine) exportCSV(t *turn) ([]Reply, error) {
	entries, err := e.transactions.GetLedger(t.user.ID)
	if err != nil {
		return nil, err
	}
	data, err := export.BuildCSV(entries)
	if err != nil {
		return nil, err
	}
	return []Reply{{Keyboard: mainMenu, Document: &Attachment{Name: export.CSVFileName, Data: data}}}, nil
}

func (e *Engine) exportXLSX(t *turn) ([]Reply, error) {
	entries, err := e.transactions.GetLedger(t.user.ID)
	if err != nil {
		return nil, err
	}
	data, err := export.BuildXLSX(entries)
	if err != nil {
		return nil, err
	}
	return []Reply{{Keyboard: mainMenu, Document: &Attachment{Name: export.XLSXFileName, Data: data}}}, nil
}
