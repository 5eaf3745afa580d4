package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.005", true}, // no rounding on input
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(dec(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseRate(t *testing.T) {
	for _, in := range []string{"0", "5", "18%", " 28 ", "12,5"} {
		if _, err := ParseRate(in); err != nil {
			t.Fatalf("%q expected ok, got %v", in, err)
		}
	}
	for _, in := range []string{"", "-5", "x"} {
		if _, err := ParseRate(in); err == nil {
			t.Fatalf("%q expected error", in)
		}
	}
}

func TestPercentGuardsZero(t *testing.T) {
	if got := Percent(dec("50"), dec("0")); !got.IsZero() {
		t.Fatalf("expected 0 for zero denominator, got %s", got)
	}
	if got := Percent(dec("1"), dec("3")); Round2(got).String() != "33.33" {
		t.Fatalf("unexpected rounded percent %s", Round2(got))
	}
}

func TestSupportedRates(t *testing.T) {
	if len(GSTRates()) != 5 {
		t.Fatalf("expected five slabs")
	}
	if !IsSupportedGSTRate(dec("18.00")) {
		t.Fatalf("18.00 should be supported")
	}
	if IsSupportedGSTRate(dec("15")) {
		t.Fatalf("15 should not be supported")
	}
}

func TestDisplayHelpers(t *testing.T) {
	if got := DisplayAmount(dec("1800")); got != "1800.00" {
		t.Fatalf("DisplayAmount got %q", got)
	}
	if got := DisplayPercent(dec("33.333")); got != "33.3%" {
		t.Fatalf("DisplayPercent got %q", got)
	}
}
