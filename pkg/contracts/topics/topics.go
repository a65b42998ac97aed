package topics

const (
	// Entrada do motor
	Transactions = "ledger_transactions"

	// Saída: uma mensagem por conta ao final de cada execução
	AccountSnapshots = "ledger_account_snapshots"

	// DLQs
	TransactionsDLQ = "ledger_transactions_dlq"
)
