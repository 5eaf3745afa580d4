// Package gst computes Goods and Services Tax amounts for single transactions
// and rolls sale and purchase records up into a net payable or refundable
// position.
package gst

import (
	"sort"

	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
)

var hundred = decimal.NewFromInt(100)

// SupportedRates returns the slabs offered to users. ApplyGST accepts any rate.
func SupportedRates() []decimal.Decimal {
	return core.GSTRates()
}

// ApplyGST adds tax at rate percent to a GST-exclusive amount.
// The tax is rounded to two places; the total is amount plus that tax.
func ApplyGST(amount, rate decimal.Decimal) core.GSTAmounts {
	tax := core.Round2(amount.Mul(rate).Div(hundred))
	return core.GSTAmounts{
		Amount:      amount,
		Rate:        rate,
		GSTAmount:   tax,
		TotalAmount: amount.Add(tax),
	}
}

// ReverseGST splits a GST-inclusive total into its base and tax parts.
// The base is rounded to two places and the tax is whatever remains, so
// Amount + GSTAmount always equals total.
func ReverseGST(total, rate decimal.Decimal) core.GSTAmounts {
	divisor := hundred.Add(rate)
	if divisor.IsZero() {
		return core.GSTAmounts{Amount: total, Rate: rate, GSTAmount: decimal.Zero, TotalAmount: total}
	}
	base := core.Round2(total.Mul(hundred).Div(divisor))
	return core.GSTAmounts{
		Amount:      base,
		Rate:        rate,
		GSTAmount:   total.Sub(base),
		TotalAmount: total,
	}
}

// Summarize partitions sale and purchase records and nets the tax on each
// side. Income and expense records carry no tax role and are skipped.
func Summarize(txs []core.Transaction) core.GSTSummary {
	s := core.GSTSummary{
		TotalSales:     decimal.Zero,
		TotalPurchases: decimal.Zero,
		GSTOnSales:     decimal.Zero,
		GSTOnPurchases: decimal.Zero,
	}
	for _, tx := range txs {
		switch tx.TaxRole() {
		case core.TaxRoleSale:
			s.TotalSales = s.TotalSales.Add(tx.Amount)
			s.GSTOnSales = s.GSTOnSales.Add(tx.GSTAmount())
		case core.TaxRolePurchase:
			s.TotalPurchases = s.TotalPurchases.Add(tx.Amount)
			s.GSTOnPurchases = s.GSTOnPurchases.Add(tx.GSTAmount())
		default:
			continue
		}
		s.Transactions++
	}

	s.NetGST = s.GSTOnSales.Sub(s.GSTOnPurchases)
	s.GSTPayable = decimal.Max(s.NetGST, decimal.Zero)
	s.GSTRefund = decimal.Max(s.NetGST.Neg(), decimal.Zero)
	return s
}

// SummarizeFiltered applies f before summarizing.
func SummarizeFiltered(txs []core.Transaction, f core.Filter) core.GSTSummary {
	return Summarize(f.Apply(txs))
}

// ByRate builds the rate-wise table of a GST return, ascending by rate.
// Only slabs that appear in the input are listed.
func ByRate(txs []core.Transaction) []core.GSTRateBreakdown {
	slabs := make(map[string]*core.GSTRateBreakdown)
	for _, tx := range txs {
		role := tx.TaxRole()
		if role == core.TaxRoleNone {
			continue
		}
		key := tx.GSTRate.String()
		slab, ok := slabs[key]
		if !ok {
			slab = &core.GSTRateBreakdown{
				Rate:             tx.GSTRate,
				TaxableSales:     decimal.Zero,
				TaxablePurchases: decimal.Zero,
				OutputTax:        decimal.Zero,
				InputTax:         decimal.Zero,
			}
			slabs[key] = slab
		}
		if role == core.TaxRoleSale {
			slab.TaxableSales = slab.TaxableSales.Add(tx.Amount)
			slab.OutputTax = slab.OutputTax.Add(tx.GSTAmount())
		} else {
			slab.TaxablePurchases = slab.TaxablePurchases.Add(tx.Amount)
			slab.InputTax = slab.InputTax.Add(tx.GSTAmount())
		}
	}

	out := make([]core.GSTRateBreakdown, 0, len(slabs))
	for _, slab := range slabs {
		out = append(out, *slab)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rate.LessThan(out[j].Rate) })
	return out
}
