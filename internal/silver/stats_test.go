package silver

import (
	"math"
	"testing"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		input    []float64
		expected float64
		ok       bool
	}{
		{"empty", nil, 0, false},
		{"single", []float64{42}, 42, true},
		{"odd length", []float64{3, 1, 2}, 2, true},
		{"even length", []float64{4, 1, 3, 2}, 2.5, true},
		{"unsorted input", []float64{100, 10, 50}, 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Median(tt.input)
			if ok != tt.ok {
				t.Fatalf("Median(%v) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("Median(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name     string
		input    []float64
		p        float64
		expected float64
		ok       bool
	}{
		{"empty", nil, 0.5, 0, false},
		{"single value", []float64{7}, 0.25, 7, true},
		{"min", []float64{1, 2, 3, 4}, 0, 1, true},
		{"max", []float64{1, 2, 3, 4}, 1, 4, true},
		{"first quartile interpolated", []float64{1, 2, 3, 4}, 0.25, 1.75, true},
		{"third quartile interpolated", []float64{1, 2, 3, 4}, 0.75, 3.25, true},
		{"median via quantile", []float64{1, 2, 3, 4, 5}, 0.5, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Quantile(tt.input, tt.p)
			if ok != tt.ok {
				t.Fatalf("Quantile(%v, %v) ok = %v, want %v", tt.input, tt.p, ok, tt.ok)
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Quantile(%v, %v) = %v, want %v", tt.input, tt.p, got, tt.expected)
			}
		})
	}
}

func TestGroupMedians(t *testing.T) {
	groups := map[int][]float64{
		2: {1, 2, 3},
		4: {2, 4},
		6: {},
	}
	medians := GroupMedians(groups)

	if got := medians[2]; got != 2 {
		t.Errorf("median for group 2 = %v, want 2", got)
	}
	if got := medians[4]; got != 3 {
		t.Errorf("median for group 4 = %v, want 3", got)
	}
	if _, ok := medians[6]; ok {
		t.Error("empty group should have no median")
	}
}

func TestPriceCapperCap(t *testing.T) {
	// Q1=50, Q3=150 gives fences at -100 and 300.
	capper := NewPriceCapper(50, 150, 90)

	tests := []struct {
		name     string
		price    float64
		expected float64
	}{
		{"above upper fence caps to median", 500, 90},
		{"inside fence unchanged", 250, 250},
		{"at upper fence unchanged", 300, 300},
		{"at lower fence unchanged", -100, -100},
		{"below lower fence caps to median", -150, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := capper.Cap(tt.price); got != tt.expected {
				t.Errorf("Cap(%v) = %v, want %v", tt.price, got, tt.expected)
			}
		})
	}
}

func TestPriceCapperFromData(t *testing.T) {
	if _, ok := PriceCapperFromData(nil); ok {
		t.Fatal("expected no capper from empty data")
	}

	capper, ok := PriceCapperFromData([]float64{1, 2, 3, 4})
	if !ok {
		t.Fatal("expected capper from data")
	}
	if math.Abs(capper.Median-2.5) > 1e-9 {
		t.Errorf("median = %v, want 2.5", capper.Median)
	}
	// Q1=1.75, Q3=3.25, IQR=1.5.
	if math.Abs(capper.Lower-(-0.5)) > 1e-9 {
		t.Errorf("lower fence = %v, want -0.5", capper.Lower)
	}
	if math.Abs(capper.Upper-5.5) > 1e-9 {
		t.Errorf("upper fence = %v, want 5.5", capper.Upper)
	}
}
