package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatIDR(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "Rp 0"},
		{999, "Rp 999"},
		{15000, "Rp 15.000"},
		{1500000, "Rp 1.500.000"},
		{-5000, "-Rp 5.000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatIDR(tt.amount))
		})
	}
}

func TestFormat_OtherCurrency(t *testing.T) {
	assert.Equal(t, "Rp 15.000", Format("idr", 15000))
	assert.Equal(t, "USD 1,000", Format("usd", 1000))
}
