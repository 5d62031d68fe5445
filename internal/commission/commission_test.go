package commission

import (
	"testing"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculator_Calculate(t *testing.T) {
	testCases := []struct {
		name       string
		percent    float64
		fee        int64
		commission int64
		total      int64
	}{
		{"three percent", 3, 1000, 30, 1030},
		{"zero percent", 0, 1000, 0, 1000},
		{"zero fee", 5, 0, 0, 0},
		{"rounds half up", 5, 10, 1, 11},
		{"rounds down below half", 3, 10, 0, 10},
		{"fractional percent", 2.5, 1999, 50, 2049},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			calc := MustCalculator(tc.percent)
			fees, err := calc.Calculate(tc.fee)
			require.NoError(t, err)
			assert.Equal(t, tc.fee, fees.HostelFee)
			assert.Equal(t, tc.commission, fees.AdminCommission)
			assert.Equal(t, tc.total, fees.TotalAmount)
		})
	}
}

func TestCalculator_RejectsNegativeInput(t *testing.T) {
	_, err := NewCalculator(-1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = MustCalculator(3).Calculate(-10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
