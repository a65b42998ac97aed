package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	skafka "github.com/radieske/tx-ledger-engine/internal/shared/kafka"
	"github.com/radieske/tx-ledger-engine/pkg/contracts/events"
)

// HeaderRunID identifica a execução que gerou a mensagem.
const HeaderRunID = "run_id"

// KafkaPublisher encapsula o writer Kafka e o logger.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// NewKafkaPublisher cria um publisher para um tópico Kafka.
// Em ambiente local/dev garante a existência do tópico antes de criar o writer.
func NewKafkaPublisher(brokers []string, topic, env string, log *zap.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not provided")
	}

	if env == "local" || env == "dev" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := EnsureTopic(ctx, brokers[0], topic, log); err != nil {
			return nil, err
		}
	}

	return &KafkaPublisher{
		writer: skafka.NewWriter(brokers, topic),
		log:    log,
	}, nil
}

// NewWithWriter usa um writer já configurado.
func NewWithWriter(w *kafka.Writer, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, log: log}
}

// EnsureTopic cria o tópico via controller do cluster; tópico existente não é erro.
func EnsureTopic(ctx context.Context, broker, topic string, log *zap.Logger) error {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("connect to kafka: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("get kafka controller: %w", err)
	}

	controllerAddr := fmt.Sprintf("%s:%d", controller.Host, controller.Port)
	cconn, err := kafka.DialContext(ctx, "tcp", controllerAddr)
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer cconn.Close()

	// compatível com single-broker
	cfg := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}

	if err := cconn.CreateTopics(cfg); err != nil && !strings.Contains(err.Error(), "already exists") {
		log.Warn("failed to create kafka topic", zap.String("topic", topic), zap.Error(err))
	} else if err == nil {
		log.Info("kafka topic created", zap.String("topic", topic))
	}
	return nil
}

// Publish serializa a foto da conta e envia para o tópico configurado.
// A chave é o id do cliente: todas as fotos de uma conta caem na mesma partição.
func (p *KafkaPublisher) Publish(ctx context.Context, s events.AccountSnapshot) error {
	value, err := json.Marshal(s)
	if err != nil {
		return err
	}

	key := strconv.FormatUint(uint64(s.Client), 10)
	hdr := kafka.Header{Key: HeaderRunID, Value: []byte(s.RunID)}
	if err := skafka.WriteJSON(ctx, p.writer, key, value, hdr); err != nil {
		p.log.Error("failed to publish account snapshot", zap.Uint16("client", s.Client), zap.Error(err))
		return err
	}

	p.log.Debug("published account snapshot", zap.Uint16("client", s.Client))
	return nil
}

// Close finaliza o writer e libera recursos associados.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
