package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFunds(t *testing.T, s string) Funds {
	t.Helper()
	f, err := ParseFunds(s)
	require.NoError(t, err)
	return f
}

func TestParseFunds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "integer", in: "10", want: "10.0000"},
		{name: "four places", in: "1.2345", want: "1.2345"},
		{name: "surrounding spaces", in: "  2.5 ", want: "2.5000"},
		{name: "zero", in: "0", want: "0.0000"},
		{name: "max", in: "79228162514264337593543950335", want: "79228162514264337593543950335.0000"},
		{name: "empty", in: "", wantErr: ErrMalformed},
		{name: "garbage", in: "ten", wantErr: ErrMalformed},
		{name: "negative", in: "-1.5", wantErr: ErrNegative},
		{name: "above max", in: "79228162514264337593543950336", wantErr: ErrOverflow},
		{name: "huge exponent", in: "1e9999999", wantErr: ErrMalformed},
		{name: "tiny exponent", in: "1e-99999", wantErr: ErrMalformed},
		{name: "upper case exponent", in: "1E3", wantErr: ErrMalformed},
		{name: "too many places", in: "0." + strings.Repeat("1", 29), wantErr: ErrMalformed},
		{name: "max places", in: "0." + strings.Repeat("1", 28), want: "0.1111"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFunds(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNewFundsBoundsExponent(t *testing.T) {
	t.Parallel()

	_, err := NewFunds(decimal.New(1, 9999999))
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Less(t, len(err.Error()), 64, "error must not carry the expanded value")

	_, err = NewFunds(decimal.New(1, -99999))
	assert.ErrorIs(t, err, ErrMalformed)

	f, err := NewFunds(decimal.New(7, 28))
	require.NoError(t, err)
	assert.True(t, f.Decimal().Equal(decimal.New(7, 28)))
}

func TestParseFundsClipsEchoedInput(t *testing.T) {
	t.Parallel()

	_, err := ParseFunds(strings.Repeat("x", 10000))
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Less(t, len(err.Error()), 100)
}

func TestFundsAdd(t *testing.T) {
	t.Parallel()

	sum, err := mustFunds(t, "1.5").Add(mustFunds(t, "2.25"))
	require.NoError(t, err)
	assert.Equal(t, "3.7500", sum.String())

	top, err := NewFunds(MaxFunds)
	require.NoError(t, err)

	got, err := top.Add(mustFunds(t, "42"))
	assert.ErrorIs(t, err, ErrOverflow)
	assert.True(t, got.Equal(top), "failed add must leave the receiver value")
}

func TestFundsSub(t *testing.T) {
	t.Parallel()

	diff, err := mustFunds(t, "5").Sub(mustFunds(t, "5"))
	require.NoError(t, err)
	assert.True(t, diff.IsZero())

	_, err = mustFunds(t, "1").Sub(mustFunds(t, "1.0001"))
	assert.ErrorIs(t, err, ErrUnderflow)
}

func TestFundsKeepsInternalPrecision(t *testing.T) {
	t.Parallel()

	f := mustFunds(t, "0.00005")
	assert.True(t, f.Decimal().Equal(decimal.RequireFromString("0.00005")))
	assert.Equal(t, "0.0001", f.String())
}
