package money

import (
	"math"
	"testing"

	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}

func TestCompute(t *testing.T) {
	lines := []Line{
		{UnitPrice: 10.00, Qty: 2},
		{UnitPrice: 5.00, Qty: 2},
	}

	totals, err := Compute(lines, 10, 8)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if !almostEqual(totals.Subtotal, 30.00) {
		t.Errorf("subtotal = %v, want 30.00", totals.Subtotal)
	}
	if !almostEqual(totals.Discount, 3.00) {
		t.Errorf("discount = %v, want 3.00", totals.Discount)
	}
	if !almostEqual(totals.TaxableBase, 27.00) {
		t.Errorf("taxable base = %v, want 27.00", totals.TaxableBase)
	}
	if !almostEqual(totals.Tax, 2.16) {
		t.Errorf("tax = %v, want 2.16", totals.Tax)
	}
	if !almostEqual(totals.Total, 29.16) {
		t.Errorf("total = %v, want 29.16", totals.Total)
	}
}

func TestComputeZeroRates(t *testing.T) {
	totals, err := Compute([]Line{{UnitPrice: 19.99, Qty: 3}}, 0, 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !almostEqual(totals.Total, totals.Subtotal) {
		t.Errorf("total = %v, want subtotal %v", totals.Total, totals.Subtotal)
	}
	if !almostEqual(totals.Discount, 0) || !almostEqual(totals.Tax, 0) {
		t.Errorf("discount = %v tax = %v, want both 0", totals.Discount, totals.Tax)
	}
}

func TestComputeEmptyLines(t *testing.T) {
	totals, err := Compute(nil, 15, 8.25)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if totals.Subtotal != 0 || totals.Total != 0 {
		t.Errorf("got %+v, want all zero", totals)
	}
}

func TestValidatePercent(t *testing.T) {
	cases := []struct {
		name    string
		percent float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"hundred", 100, false},
		{"mid", 8.25, false},
		{"negative", -0.01, true},
		{"over", 100.01, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePercent("discount", tc.percent)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %v", tc.percent)
				}
				if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error for %v: %v", tc.percent, err)
			}
		})
	}
}

func TestComputeRejectsBadRates(t *testing.T) {
	if _, err := Compute(nil, -1, 0); err == nil {
		t.Error("expected error for negative discount")
	}
	if _, err := Compute(nil, 0, 101); err == nil {
		t.Error("expected error for tax over 100")
	}
}

func TestConsistent(t *testing.T) {
	if !Consistent(30.00, 3.00, 2.16, 29.16) {
		t.Error("expected totals to be consistent")
	}
	if Consistent(30.00, 3.00, 2.16, 29.17) {
		t.Error("expected drift beyond tolerance to be flagged")
	}
	// accumulated float error inside tolerance still passes
	if !Consistent(30.00, 3.00, 2.16, 29.16+1e-9) {
		t.Error("expected sub-tolerance drift to pass")
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(29.164999); got != 29.16 {
		t.Errorf("Round2 = %v, want 29.16", got)
	}
	if got := Round2(29.165); got != 29.17 {
		t.Errorf("Round2 = %v, want 29.17", got)
	}
}
