package calculator

import (
	"math"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name           string
		amount         float64
		rate           float64
		wantCommission float64
		wantNet        float64
		wantErr        bool
	}{
		{
			name:           "default rate on round amount",
			amount:         100.0,
			rate:           DefaultRate,
			wantCommission: 5.0,
			wantNet:        95.0,
		},
		{
			name:           "commission rounds to cents",
			amount:         33.33,
			rate:           0.05,
			wantCommission: 1.67, // 1.6665 rounds up
			wantNet:        31.66,
		},
		{
			name:           "zero amount",
			amount:         0,
			rate:           0.05,
			wantCommission: 0,
			wantNet:        0,
		},
		{
			name:           "zero rate keeps full net",
			amount:         49.99,
			rate:           0,
			wantCommission: 0,
			wantNet:        49.99,
		},
		{
			name:    "negative amount rejected",
			amount:  -1,
			rate:    0.05,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commission, net, err := Split(tt.amount, tt.rate)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Split(%v, %v) expected error, got none", tt.amount, tt.rate)
				}
				return
			}
			if err != nil {
				t.Fatalf("Split(%v, %v) unexpected error: %v", tt.amount, tt.rate, err)
			}
			if math.Abs(commission-tt.wantCommission) > 0.005 {
				t.Errorf("commission = %v, want %v", commission, tt.wantCommission)
			}
			if math.Abs(net-tt.wantNet) > 0.005 {
				t.Errorf("net = %v, want %v", net, tt.wantNet)
			}
		})
	}
}

func TestSplitInvariant(t *testing.T) {
	// commission + net must reconstruct the gross amount to within half a cent
	amounts := []float64{0.01, 1, 9.99, 25.5, 33.33, 100, 149.95, 1234.56}
	for _, amount := range amounts {
		commission, net, err := Split(amount, DefaultRate)
		if err != nil {
			t.Fatalf("Split(%v) error: %v", amount, err)
		}
		if math.Abs((commission+net)-amount) > 0.005 {
			t.Errorf("amount %v: commission %v + net %v != amount", amount, commission, net)
		}
	}
}
