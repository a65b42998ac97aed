package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/tx-ledger-engine/pkg/contracts/events"
)

// Schema cria as tabelas usadas pelo repositório, se ainda não existirem.
// Cada execução recalcula os saldos do zero a partir das suas próprias transações, então nenhuma
// linha aqui é o saldo acumulado do cliente: account_last_run_balances guarda a foto da última
// execução que tocou o cliente (com o run_id dela) e account_balance_runs o histórico por execução.
const Schema = `
CREATE TABLE IF NOT EXISTS account_last_run_balances (
  client     INTEGER PRIMARY KEY,
  available  NUMERIC(38,4) NOT NULL,
  held       NUMERIC(38,4) NOT NULL,
  total      NUMERIC(38,4) NOT NULL,
  locked     BOOLEAN NOT NULL,
  run_id     UUID NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS account_balance_runs (
  run_id     UUID NOT NULL,
  client     INTEGER NOT NULL,
  available  NUMERIC(38,4) NOT NULL,
  held       NUMERIC(38,4) NOT NULL,
  total      NUMERIC(38,4) NOT NULL,
  locked     BOOLEAN NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  PRIMARY KEY (run_id, client)
);
`

// execer é satisfeito por *sql.DB e *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PostgresRepo implementa a persistência das contas em um banco Postgres
// DB: conexão com o banco de dados
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, Schema)
	return err
}

// UpsertSnapshot grava a foto da conta em account_last_run_balances
// Utiliza ON CONFLICT para manter uma linha por cliente: a da execução mais recente
func (r *PostgresRepo) UpsertSnapshot(ctx context.Context, s events.AccountSnapshot) error {
	return upsertSnapshot(ctx, r.DB, s)
}

// InsertHistory registra a foto da conta no histórico da execução (account_balance_runs)
func (r *PostgresRepo) InsertHistory(ctx context.Context, s events.AccountSnapshot) error {
	return insertHistory(ctx, r.DB, s)
}

// Save grava a foto da última execução e o histórico na mesma transação
func (r *PostgresRepo) Save(ctx context.Context, s events.AccountSnapshot) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertSnapshot(ctx, tx, s); err != nil {
		return fmt.Errorf("upsert account_last_run_balances: %w", err)
	}
	if err := insertHistory(ctx, tx, s); err != nil {
		return fmt.Errorf("insert account_balance_runs: %w", err)
	}
	return tx.Commit()
}

func upsertSnapshot(ctx context.Context, db execer, s events.AccountSnapshot) error {
	const q = `
		INSERT INTO account_last_run_balances
		  (client, available, held, total, locked, run_id, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (client) DO UPDATE SET
		  available = EXCLUDED.available,
		  held      = EXCLUDED.held,
		  total     = EXCLUDED.total,
		  locked    = EXCLUDED.locked,
		  run_id    = EXCLUDED.run_id,
		  updated_at= EXCLUDED.updated_at
	`
	_, err := db.ExecContext(ctx, q,
		int(s.Client), s.Available, s.Held, s.Total, s.Locked, s.RunID, s.Ts,
	)
	return err
}

// reexportar a mesma execução não duplica o histórico
func insertHistory(ctx context.Context, db execer, s events.AccountSnapshot) error {
	const q = `
		INSERT INTO account_balance_runs
		  (run_id, client, available, held, total, locked, created_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (run_id, client) DO NOTHING
	`
	_, err := db.ExecContext(ctx, q,
		s.RunID, int(s.Client), s.Available, s.Held, s.Total, s.Locked, s.Ts,
	)
	return err
}
