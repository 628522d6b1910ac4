package ledger

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/bytedance/sonic"

	"swing_bot/internal/models"
)

// KafkaLedger публикует сделки в топик — внешние алертеры и дашборды
// подписываются на него, не трогая процесс бота.
type KafkaLedger struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafka(brokers []string, topic string) (*KafkaLedger, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return &KafkaLedger{producer: producer, topic: topic}, nil
}

func (l *KafkaLedger) Append(_ context.Context, row models.TradeRow) error {
	payload, err := sonic.Marshal(row)
	if err != nil {
		return fmt.Errorf("kafka.Append marshal: %w", err)
	}

	_, _, err = l.producer.SendMessage(&sarama.ProducerMessage{
		Topic: l.topic,
		Key:   sarama.StringEncoder(row.Symbol),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("kafka.Append send: %w", err)
	}
	return nil
}

func (l *KafkaLedger) Close() error {
	return l.producer.Close()
}
