package service

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"greek-irini/internal/domain"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return Period(s), true
	case "":
		return PeriodDaily, true
	}
	return "", false
}

// DefaultTaxRate is the Dutch low VAT rate in percent, included in prices.
var DefaultTaxRate = decimal.NewFromInt(9)

const topItemsLimit = 5

type ItemSales struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type CategoryRevenue struct {
	Category domain.MenuCategory `json:"category"`
	Revenue  decimal.Decimal     `json:"revenue"`
}

type AnalyticsReport struct {
	Period       Period            `json:"period"`
	From         time.Time         `json:"from"`
	Revenue      decimal.Decimal   `json:"revenue"`
	OrderCount   int               `json:"order_count"`
	AverageOrder decimal.Decimal   `json:"average_order"`
	TotalDishes  int               `json:"total_dishes"`
	TopItems     []ItemSales       `json:"top_items"`
	Categories   []CategoryRevenue `json:"categories"`
	TaxRate      decimal.Decimal   `json:"tax_rate"`
	TaxAmount    decimal.Decimal   `json:"tax_amount"`
	NetRevenue   decimal.Decimal   `json:"net_revenue"`
	ActiveOrders int               `json:"active_orders"`
}

// windowStart is local midnight of the first day in the period.
func windowStart(p Period, now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodWeekly:
		return midnight.AddDate(0, 0, -7)
	case PeriodMonthly:
		return midnight.AddDate(0, 0, -30)
	}
	return midnight
}

func inWindow(p Period, created, now time.Time) bool {
	if p == PeriodDaily {
		c := created.In(now.Location())
		y1, m1, d1 := c.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	}
	return !created.Before(windowStart(p, now))
}

// Aggregate folds completed qualifying orders of the period into a report.
// Categories are looked up in the current catalog; items no longer on the
// menu are left out of the category breakdown.
func Aggregate(orders []domain.Order, menu []domain.MenuItem, p Period, now time.Time, taxRate decimal.Decimal) AnalyticsReport {
	categories := make(map[string]domain.MenuCategory, len(menu))
	for _, m := range menu {
		categories[m.ID] = m.Category
	}

	report := AnalyticsReport{
		Period:       p,
		From:         windowStart(p, now),
		Revenue:      decimal.Zero,
		AverageOrder: decimal.Zero,
		TaxRate:      taxRate,
		TopItems:     []ItemSales{},
		Categories:   []CategoryRevenue{},
	}
	units := make(map[string]*ItemSales)
	byCategory := make(map[domain.MenuCategory]decimal.Decimal)

	for _, o := range orders {
		if o.Active() {
			report.ActiveOrders++
		}
		if o.Status != domain.StatusCompleted || !o.Qualifies() || !inWindow(p, o.CreatedAt, now) {
			continue
		}
		report.OrderCount++
		report.Revenue = report.Revenue.Add(o.Total)
		for _, it := range o.Items {
			report.TotalDishes += it.Quantity
			u, ok := units[it.ID]
			if !ok {
				u = &ItemSales{ID: it.ID, Name: it.Name}
				units[it.ID] = u
			}
			u.Quantity += it.Quantity
			if cat, ok := categories[it.ID]; ok {
				byCategory[cat] = byCategory[cat].Add(it.LineTotal())
			}
		}
	}

	if report.OrderCount > 0 {
		report.AverageOrder = report.Revenue.Div(decimal.NewFromInt(int64(report.OrderCount))).Round(2)
	}
	report.TaxAmount = TaxIncluded(report.Revenue, taxRate)
	report.NetRevenue = report.Revenue.Sub(report.TaxAmount)

	for _, u := range units {
		report.TopItems = append(report.TopItems, *u)
	}
	sort.Slice(report.TopItems, func(i, j int) bool {
		a, b := report.TopItems[i], report.TopItems[j]
		if a.Quantity == b.Quantity {
			return a.Name < b.Name
		}
		return a.Quantity > b.Quantity
	})
	if len(report.TopItems) > topItemsLimit {
		report.TopItems = report.TopItems[:topItemsLimit]
	}

	for cat, rev := range byCategory {
		report.Categories = append(report.Categories, CategoryRevenue{Category: cat, Revenue: rev})
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		a, b := report.Categories[i], report.Categories[j]
		if a.Revenue.Equal(b.Revenue) {
			return a.Category < b.Category
		}
		return a.Revenue.GreaterThan(b.Revenue)
	})
	return report
}

// TaxIncluded extracts the tax part of a gross amount: gross * rate / (100 + rate).
func TaxIncluded(gross, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return gross.Mul(rate).Div(decimal.NewFromInt(100).Add(rate)).Round(2)
}

type AnalyticsService struct {
	state   *State
	taxRate decimal.Decimal
	now     func() time.Time
}

func NewAnalyticsService(state *State, taxRate decimal.Decimal) *AnalyticsService {
	return &AnalyticsService{state: state, taxRate: taxRate, now: time.Now}
}

func (s *AnalyticsService) Report(p Period) AnalyticsReport {
	return Aggregate(s.state.Orders(), s.state.Menu(), p, s.now(), s.taxRate)
}

// Export renders the report as an XLSX workbook.
func (s *AnalyticsService) Export(p Period) ([]byte, error) {
	return ExportReport(s.Report(p))
}

func ExportReport(r AnalyticsReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}
	rows := [][]any{
		{"Period", string(r.Period)},
		{"From", r.From.Format("2006-01-02")},
		{"Orders", r.OrderCount},
		{"Revenue", r.Revenue.InexactFloat64()},
		{"Average order", r.AverageOrder.InexactFloat64()},
		{"Dishes", r.TotalDishes},
		{fmt.Sprintf("BTW %s%%", r.TaxRate.String()), r.TaxAmount.InexactFloat64()},
		{"Net revenue", r.NetRevenue.InexactFloat64()},
		{"Active orders", r.ActiveOrders},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, err
		}
	}

	const items = "Top items"
	if _, err := f.NewSheet(items); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(items, "A1", &[]any{"Item", "Quantity"}); err != nil {
		return nil, err
	}
	for i, it := range r.TopItems {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(items, cell, &[]any{it.Name, it.Quantity}); err != nil {
			return nil, err
		}
	}

	const cats = "Categories"
	if _, err := f.NewSheet(cats); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(cats, "A1", &[]any{"Category", "Revenue"}); err != nil {
		return nil, err
	}
	for i, c := range r.Categories {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(cats, cell, &[]any{string(c.Category), c.Revenue.InexactFloat64()}); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ AnalyticsServiceInterface = (*AnalyticsService)(nil)
