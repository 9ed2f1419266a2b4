package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"exact", 10.00, 10.00},
		{"half up", 10.005, 10.01},
		{"truncates drift", 0.1 + 0.2, 0.3},
		{"negative", -5.555, -5.56},
		{"zero", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Round2(tc.in))
		})
	}
}

func TestToLocal(t *testing.T) {
	// 100 RMB at 15.85 BDT per RMB.
	require.Equal(t, 1585.00, ToLocal(100, 15.85))
	// Repeated float multiplication would drift here; decimal must not.
	require.Equal(t, 33.03, ToLocal(19.9, 1.66))
	require.Equal(t, 0.0, ToLocal(0, 17.2))
}

func TestMulSub(t *testing.T) {
	require.Equal(t, 1000.00, Mul(12.5, 80))
	require.Equal(t, -200.00, Sub(300, 500))
	require.Equal(t, 0.01, Sub(0.03, 0.02))
}

func TestMinMax(t *testing.T) {
	require.Equal(t, 3.0, Min(3, 7))
	require.Equal(t, 7.0, Max(3, 7))
}
