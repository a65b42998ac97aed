package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/tx-ledger-engine/pkg/contracts/events"
)

// ErrNotFound indica que a conta não está no cache (nunca exportada ou expirada).
var ErrNotFound = errors.New("snapshot not found")

// RedisCache guarda a última foto de cada conta no Redis
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// key gera a chave Redis da conta de um cliente
func key(client uint16) string { return "ledger:account:" + strconv.FormatUint(uint64(client), 10) }

// SetSnapshot armazena a foto da conta com o TTL definido
func (r *RedisCache) SetSnapshot(ctx context.Context, s events.AccountSnapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(s.Client), b, r.TTL).Err()
}

// GetSnapshot lê a última foto exportada de um cliente
func (r *RedisCache) GetSnapshot(ctx context.Context, client uint16) (events.AccountSnapshot, error) {
	var s events.AccountSnapshot
	b, err := r.Client.Get(ctx, key(client)).Bytes()
	if errors.Is(err, redis.Nil) {
		return s, ErrNotFound
	}
	if err != nil {
		return s, err
	}
	err = json.Unmarshal(b, &s)
	return s, err
}

// RunCompleted é o payload publicado no canal de Pub/Sub ao fim de uma exportação
type RunCompleted struct {
	RunID    string    `json:"run_id"`
	Accounts int       `json:"accounts"`
	Ts       time.Time `json:"ts"`
}

// Announce avisa os assinantes do canal que uma nova execução foi exportada
func (r *RedisCache) Announce(ctx context.Context, channel, runID string, accounts int) error {
	b, err := json.Marshal(RunCompleted{RunID: runID, Accounts: accounts, Ts: time.Now().UTC()})
	if err != nil {
		return err
	}
	return r.Client.Publish(ctx, channel, b).Err()
}
