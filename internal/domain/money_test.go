package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "0", want: "0.00", ok: true},
		{in: "19.9", want: "19.90", ok: true},
		{in: "19.990", want: "19.99", ok: true},
		{in: "9999999999.99", want: "9999999999.99", ok: true},
		{in: "19.999", ok: false},
		{in: "-0.01", ok: false},
		{in: "10000000000", ok: false},
	}
	for _, tc := range cases {
		got, err := FormatAmount(decimal.RequireFromString(tc.in))
		if !tc.ok {
			require.ErrorIs(t, err, ErrInvalidArgument, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}
