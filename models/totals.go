package models

import "github.com/shopspring/decimal"

// Totals are the monetary figures derived from a document's line items. They
// are never persisted.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	TaxAmount float64 `json:"tax_amount"`
	Total     float64 `json:"total"`
}

// ComputeTotals derives subtotal, tax and grand total. Decimal arithmetic
// keeps repeated edits from drifting; figures are rounded to cents. The
// function is pure and order-independent over the items.
func ComputeTotals(items []LineItem, taxExempt bool, taxRate Amount) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Quantity.Float64()).
			Mul(decimal.NewFromFloat(it.UnitPrice.Float64()))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)

	tax := decimal.Zero
	if !taxExempt {
		tax = subtotal.
			Mul(decimal.NewFromFloat(taxRate.Float64())).
			Div(decimal.NewFromInt(100)).
			Round(2)
	}

	sub, _ := subtotal.Float64()
	ta, _ := tax.Float64()
	tot, _ := subtotal.Add(tax).Float64()
	return Totals{Subtotal: sub, TaxAmount: ta, Total: tot}
}

// Totals computes the document's own monetary figures.
func (d BillingDocument) Totals() Totals {
	return ComputeTotals(d.Items, d.TaxExempt, d.TaxRate)
}

// Revenue sums the subtotals of all invoices, the dashboard headline figure.
// Quotes and orders do not count as revenue.
func Revenue(docs []BillingDocument) float64 {
	sum := decimal.Zero
	for _, d := range docs {
		if d.Type != TypeInvoice {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(d.Totals().Subtotal))
	}
	f, _ := sum.Float64()
	return f
}
