package service

import (
	"github.com/shopspring/decimal"

	"greek-irini/internal/domain"
)

type QuoteLine struct {
	MenuItemID string          `json:"id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

type Quote struct {
	Lines        []QuoteLine         `json:"lines"`
	DeliveryType domain.DeliveryType `json:"delivery_type"`
	Subtotal     decimal.Decimal     `json:"subtotal"`
	DeliveryFee  decimal.Decimal     `json:"delivery_fee"`
	Total        decimal.Decimal     `json:"total"`
	MinOrder     decimal.Decimal     `json:"min_order"`
	ItemCount    int                 `json:"item_count"`
}

func (q Quote) BelowMinimum() bool {
	return q.Subtotal.LessThan(q.MinOrder)
}

// Remaining is how much has to be added before the minimum order is reached.
func (q Quote) Remaining() decimal.Decimal {
	if !q.BelowMinimum() {
		return decimal.Zero
	}
	return q.MinOrder.Sub(q.Subtotal)
}

type MenuLookup func(id string) (domain.MenuItem, bool)

// PriceCart resolves every line against the live catalog. Lines whose item no
// longer exists are left out of the quote.
func PriceCart(lines []domain.CartLine, lookup MenuLookup, t domain.DeliveryType, policy domain.DeliveryPolicy, lang domain.Language) Quote {
	q := Quote{
		Lines:        make([]QuoteLine, 0, len(lines)),
		DeliveryType: t,
		Subtotal:     decimal.Zero,
		MinOrder:     policy.MinOrder,
	}
	for _, line := range lines {
		item, ok := lookup(line.MenuItemID)
		if !ok || line.Quantity <= 0 {
			continue
		}
		total := item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		q.Lines = append(q.Lines, QuoteLine{
			MenuItemID: item.ID,
			Name:       item.Name(lang),
			UnitPrice:  item.Price,
			Quantity:   line.Quantity,
			LineTotal:  total,
		})
		q.Subtotal = q.Subtotal.Add(total)
		q.ItemCount += line.Quantity
	}
	q.DeliveryFee = policy.DeliveryFee(t, q.Subtotal)
	q.Total = q.Subtotal.Add(q.DeliveryFee)
	return q
}

// Items freezes the quote into order line snapshots.
func (q Quote) Items() []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(q.Lines))
	for _, l := range q.Lines {
		items = append(items, domain.OrderItem{ID: l.MenuItemID, Name: l.Name, Price: l.UnitPrice, Quantity: l.Quantity})
	}
	return items
}
