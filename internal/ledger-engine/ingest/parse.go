package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/money"
	"github.com/radieske/tx-ledger-engine/pkg/contracts/events"
)

var (
	ErrUnknownType   = errors.New("unknown transaction type")
	ErrMissingAmount = errors.New("missing amount")
	ErrBadField      = errors.New("bad field")
)

// Build monta a variante tipada a partir dos campos já separados.
// amount é ignorado para dispute/resolve/chargeback.
func Build(kind string, client domain.ClientID, tx domain.TxID, amount *string) (domain.Transaction, error) {
	ref := domain.Ref{Client: client, Tx: tx}

	switch domain.Kind(strings.ToLower(strings.TrimSpace(kind))) {
	case domain.KindDeposit:
		amt, err := requireAmount(amount)
		if err != nil {
			return nil, err
		}
		return domain.Deposit{Ref: ref, Amount: amt}, nil
	case domain.KindWithdrawal:
		amt, err := requireAmount(amount)
		if err != nil {
			return nil, err
		}
		return domain.Withdrawal{Ref: ref, Amount: amt}, nil
	case domain.KindDispute:
		return domain.Dispute{Ref: ref}, nil
	case domain.KindResolve:
		return domain.Resolve{Ref: ref}, nil
	case domain.KindChargeback:
		return domain.Chargeback{Ref: ref}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
}

func requireAmount(amount *string) (money.Funds, error) {
	if amount == nil || strings.TrimSpace(*amount) == "" {
		return money.Funds{}, ErrMissingAmount
	}
	return money.ParseFunds(*amount)
}

// ParseRecord converte uma linha do CSV (type, client, tx[, amount]).
func ParseRecord(fields []string) (domain.Transaction, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: expected at least 3 fields, got %d", ErrBadField, len(fields))
	}

	client, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: client %q", ErrBadField, fields[1])
	}
	tx, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: tx %q", ErrBadField, fields[2])
	}

	var amount *string
	if len(fields) > 3 {
		amount = &fields[3]
	}
	return Build(fields[0], domain.ClientID(client), domain.TxID(tx), amount)
}

// FromEvent converte o contrato Kafka na variante tipada.
func FromEvent(ev events.TransactionEvent) (domain.Transaction, error) {
	return Build(ev.Type, domain.ClientID(ev.Client), domain.TxID(ev.Tx), ev.Amount)
}

// DecodeEvent desserializa e converte uma mensagem do tópico de transações.
func DecodeEvent(value []byte) (domain.Transaction, error) {
	var ev events.TransactionEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return nil, fmt.Errorf("decode transaction event: %w", err)
	}
	return FromEvent(ev)
}

// ToEvent é o caminho inverso de FromEvent, usado pelo simulador.
func ToEvent(tx domain.Transaction) events.TransactionEvent {
	t := tx.Target()
	ev := events.TransactionEvent{Type: string(tx.Kind()), Client: uint16(t.Client), Tx: uint32(t.Tx)}
	if amt, ok := amountOf(tx); ok {
		s := amt.String()
		ev.Amount = &s
	}
	return ev
}

// FormatRecord é o caminho inverso de ParseRecord.
func FormatRecord(tx domain.Transaction) []string {
	t := tx.Target()
	amount := ""
	if amt, ok := amountOf(tx); ok {
		amount = amt.String()
	}
	return []string{
		string(tx.Kind()),
		strconv.FormatUint(uint64(t.Client), 10),
		strconv.FormatUint(uint64(t.Tx), 10),
		amount,
	}
}

func amountOf(tx domain.Transaction) (money.Funds, bool) {
	switch t := tx.(type) {
	case domain.Deposit:
		return t.Amount, true
	case domain.Withdrawal:
		return t.Amount, true
	default:
		return money.Funds{}, false
	}
}
