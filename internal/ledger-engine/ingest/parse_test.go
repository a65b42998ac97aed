package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/money"
)

func TestParseRecord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fields   []string
		wantKind domain.Kind
		wantRef  domain.Ref
		wantAmt  string
		wantErr  error
	}{
		{name: "deposit", fields: []string{"deposit", "1", "1", "1.0"}, wantKind: domain.KindDeposit, wantRef: domain.Ref{Client: 1, Tx: 1}, wantAmt: "1.0000"},
		{name: "withdrawal padded", fields: []string{" withdrawal ", " 2 ", " 5 ", " 1.5 "}, wantKind: domain.KindWithdrawal, wantRef: domain.Ref{Client: 2, Tx: 5}, wantAmt: "1.5000"},
		{name: "upper case type", fields: []string{"DEPOSIT", "1", "1", "2"}, wantKind: domain.KindDeposit, wantRef: domain.Ref{Client: 1, Tx: 1}, wantAmt: "2.0000"},
		{name: "dispute without amount column", fields: []string{"dispute", "1", "1"}, wantKind: domain.KindDispute, wantRef: domain.Ref{Client: 1, Tx: 1}},
		{name: "resolve with empty amount", fields: []string{"resolve", "3", "4", ""}, wantKind: domain.KindResolve, wantRef: domain.Ref{Client: 3, Tx: 4}},
		{name: "chargeback ignores amount", fields: []string{"chargeback", "3", "4", "9.9"}, wantKind: domain.KindChargeback, wantRef: domain.Ref{Client: 3, Tx: 4}},
		{name: "unknown type", fields: []string{"transfer", "1", "1", "1"}, wantErr: ErrUnknownType},
		{name: "deposit missing amount", fields: []string{"deposit", "1", "1", " "}, wantErr: ErrMissingAmount},
		{name: "withdrawal without amount column", fields: []string{"withdrawal", "1", "1"}, wantErr: ErrMissingAmount},
		{name: "negative amount", fields: []string{"deposit", "1", "1", "-1"}, wantErr: money.ErrNegative},
		{name: "garbage amount", fields: []string{"deposit", "1", "1", "1,5"}, wantErr: money.ErrMalformed},
		{name: "exponent amount", fields: []string{"deposit", "1", "1", "1e9999999"}, wantErr: money.ErrMalformed},
		{name: "client out of range", fields: []string{"deposit", "70000", "1", "1"}, wantErr: ErrBadField},
		{name: "tx not a number", fields: []string{"deposit", "1", "x", "1"}, wantErr: ErrBadField},
		{name: "too few fields", fields: []string{"deposit", "1"}, wantErr: ErrBadField},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tx, err := ParseRecord(tt.fields)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, tx.Kind())
			assert.Equal(t, tt.wantRef, tx.Target())

			amt, ok := amountOf(tx)
			assert.Equal(t, tt.wantAmt != "", ok)
			if ok {
				assert.Equal(t, tt.wantAmt, amt.String())
			}
		})
	}
}

func TestDecodeEvent(t *testing.T) {
	t.Parallel()

	tx, err := DecodeEvent([]byte(`{"type":"deposit","client":7,"tx":9,"amount":"12.3456"}`))
	require.NoError(t, err)
	dep, ok := tx.(domain.Deposit)
	require.True(t, ok)
	assert.Equal(t, domain.ClientID(7), dep.Client)
	assert.Equal(t, "12.3456", dep.Amount.String())

	tx, err = DecodeEvent([]byte(`{"type":"dispute","client":7,"tx":9}`))
	require.NoError(t, err)
	assert.Equal(t, domain.KindDispute, tx.Kind())

	_, err = DecodeEvent([]byte(`{"type":"deposit","client":7,"tx":9}`))
	assert.ErrorIs(t, err, ErrMissingAmount)

	_, err = DecodeEvent([]byte(`{"type":"withdrawal","client":7,"tx":10,"amount":"1e-99999"}`))
	assert.ErrorIs(t, err, money.ErrMalformed)

	_, err = DecodeEvent([]byte(`{"type":`))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`{"type":"deposit","client":70000,"tx":1,"amount":"1"}`))
	assert.Error(t, err, "client must fit in uint16")
}

func TestEncodingIsInverseOfParsing(t *testing.T) {
	t.Parallel()

	amt, err := money.ParseFunds("3.25")
	require.NoError(t, err)

	for _, tx := range []domain.Transaction{
		domain.Deposit{Ref: domain.Ref{Client: 1, Tx: 2}, Amount: amt},
		domain.Withdrawal{Ref: domain.Ref{Client: 3, Tx: 4}, Amount: amt},
		domain.Dispute{Ref: domain.Ref{Client: 5, Tx: 2}},
		domain.Resolve{Ref: domain.Ref{Client: 5, Tx: 2}},
		domain.Chargeback{Ref: domain.Ref{Client: 5, Tx: 2}},
	} {
		fromCSV, err := ParseRecord(FormatRecord(tx))
		require.NoError(t, err)
		assert.Equal(t, tx.Kind(), fromCSV.Kind())
		assert.Equal(t, tx.Target(), fromCSV.Target())

		fromEvent, err := FromEvent(ToEvent(tx))
		require.NoError(t, err)
		assert.Equal(t, tx.Kind(), fromEvent.Kind())
		assert.Equal(t, tx.Target(), fromEvent.Target())
	}
}
