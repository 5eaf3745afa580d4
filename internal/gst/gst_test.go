package gst

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sale(amount, rate string) core.Transaction {
	return core.Transaction{Date: core.NewDate(2025, 1, 1), Amount: dec(amount), Type: core.TypeSale, GSTRate: dec(rate), Category: "Sales"}
}

func purchase(amount, rate string) core.Transaction {
	return core.Transaction{Date: core.NewDate(2025, 1, 1), Amount: dec(amount), Type: core.TypePurchase, GSTRate: dec(rate), Category: "Stock"}
}

func TestApplyGST(t *testing.T) {
	cases := []struct {
		amount, rate string
		tax, total   string
	}{
		{"1000", "0", "0", "1000"},
		{"1000", "5", "50", "1050"},
		{"1000", "18", "180", "1180"},
		{"999.99", "28", "280", "1279.99"},
		{"10.05", "12", "1.21", "11.26"}, // 1.206 rounds up
		{"10", "7.5", "0.75", "10.75"},   // off-slab rates are not rejected
	}
	for _, tc := range cases {
		got := ApplyGST(dec(tc.amount), dec(tc.rate))
		if !got.GSTAmount.Equal(dec(tc.tax)) || !got.TotalAmount.Equal(dec(tc.total)) {
			t.Errorf("ApplyGST(%s, %s) = %s/%s, want %s/%s", tc.amount, tc.rate, got.GSTAmount, got.TotalAmount, tc.tax, tc.total)
		}
	}
}

func TestApplyGSTZeroRate(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		amount := decimal.New(int64(r.Intn(10000000)), -2)
		got := ApplyGST(amount, decimal.Zero)
		if !got.GSTAmount.IsZero() || !got.TotalAmount.Equal(amount) {
			t.Fatalf("zero rate changed %s to %+v", amount, got)
		}
	}
}

func TestReverseGST(t *testing.T) {
	got := ReverseGST(dec("1180"), dec("18"))
	if !got.Amount.Equal(dec("1000")) || !got.GSTAmount.Equal(dec("180")) {
		t.Fatalf("unexpected split %+v", got)
	}
	odd := ReverseGST(dec("100"), dec("18"))
	if !odd.Amount.Add(odd.GSTAmount).Equal(dec("100")) {
		t.Fatalf("parts must add back to total: %+v", odd)
	}
	if !odd.Amount.Equal(dec("84.75")) {
		t.Fatalf("unexpected base %s", odd.Amount)
	}
}

func TestSummarizeScenario(t *testing.T) {
	got := Summarize([]core.Transaction{sale("10000", "18"), purchase("5000", "18")})
	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"totalSales", got.TotalSales, "10000"},
		{"totalPurchases", got.TotalPurchases, "5000"},
		{"gstOnSales", got.GSTOnSales, "1800"},
		{"gstOnPurchases", got.GSTOnPurchases, "900"},
		{"netGST", got.NetGST, "900"},
		{"gstPayable", got.GSTPayable, "900"},
		{"gstRefund", got.GSTRefund, "0"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(c.want)) {
			t.Errorf("%s: got %s want %s", c.name, c.got, c.want)
		}
	}
	if got.Transactions != 2 {
		t.Errorf("transactions: got %d", got.Transactions)
	}
}

func TestSummarizeRefund(t *testing.T) {
	got := Summarize([]core.Transaction{sale("1000", "5"), purchase("2000", "28")})
	if !got.GSTPayable.IsZero() || !got.GSTRefund.Equal(dec("510")) || !got.NetGST.Equal(dec("-510")) {
		t.Fatalf("unexpected refund summary %+v", got)
	}
}

func TestSummarizeEmptyAndLedgerOnly(t *testing.T) {
	for _, txs := range [][]core.Transaction{nil, {{Amount: dec("100"), Type: core.TypeIncome, GSTRate: dec("18")}}} {
		got := Summarize(txs)
		if !got.NetGST.IsZero() || !got.GSTPayable.IsZero() || !got.GSTRefund.IsZero() || got.Transactions != 0 {
			t.Fatalf("expected zero summary, got %+v", got)
		}
	}
}

func TestSummarizePayableRefundExclusive(t *testing.T) {
	rates := []string{"0", "5", "12", "18", "28"}
	for seed := int64(1); seed <= 50; seed++ {
		r := rand.New(rand.NewSource(seed))
		var txs []core.Transaction
		for i := 0; i < 1+r.Intn(30); i++ {
			amount := decimal.New(int64(1+r.Intn(1000000)), -2).String()
			rate := rates[r.Intn(len(rates))]
			if r.Intn(2) == 0 {
				txs = append(txs, sale(amount, rate))
			} else {
				txs = append(txs, purchase(amount, rate))
			}
		}
		s := Summarize(txs)
		if s.GSTPayable.IsPositive() && !s.GSTRefund.IsZero() {
			t.Fatalf("seed %d: both payable and refund set: %+v", seed, s)
		}
		if s.GSTRefund.IsPositive() && !s.GSTPayable.IsZero() {
			t.Fatalf("seed %d: both refund and payable set: %+v", seed, s)
		}
		bothZero := s.GSTPayable.IsZero() && s.GSTRefund.IsZero()
		if bothZero != s.GSTOnSales.Equal(s.GSTOnPurchases) {
			t.Fatalf("seed %d: zero position must mean equal tax on both sides: %+v", seed, s)
		}
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	txs := []core.Transaction{sale("123.45", "12"), purchase("67.89", "5"), sale("1", "28")}
	if a, b := Summarize(txs), Summarize(txs); !reflect.DeepEqual(a, b) {
		t.Fatalf("Summarize not idempotent: %+v vs %+v", a, b)
	}
}

func TestSummarizeFiltered(t *testing.T) {
	early := sale("100", "18")
	late := sale("200", "18")
	late.Date = core.NewDate(2025, 3, 1)
	got := SummarizeFiltered([]core.Transaction{early, late}, core.Filter{To: core.NewDate(2025, 1, 31)})
	if !got.TotalSales.Equal(dec("100")) {
		t.Fatalf("filter not applied: %+v", got)
	}
}

func TestByRate(t *testing.T) {
	got := ByRate([]core.Transaction{
		sale("1000", "18"),
		purchase("500", "18.00"),
		sale("200", "5"),
		{Amount: dec("50"), Type: core.TypeExpense, GSTRate: dec("12")},
	})
	if len(got) != 2 {
		t.Fatalf("expected two slabs, got %+v", got)
	}
	if !got[0].Rate.Equal(dec("5")) || !got[0].OutputTax.Equal(dec("10")) {
		t.Fatalf("unexpected 5%% slab %+v", got[0])
	}
	if !got[1].TaxableSales.Equal(dec("1000")) || !got[1].TaxablePurchases.Equal(dec("500")) ||
		!got[1].OutputTax.Equal(dec("180")) || !got[1].InputTax.Equal(dec("90")) {
		t.Fatalf("unexpected 18%% slab %+v", got[1])
	}
	if len(SupportedRates()) != 5 {
		t.Fatalf("expected five supported rates")
	}
}
