package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// KafkaPublisher writes events to one topic keyed by order id, so every
// event of an order lands on the same partition in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher dials the brokers, retrying while they come up.
func NewKafkaPublisher(brokers []string, topic string, attempts int) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3

	if attempts < 1 {
		attempts = 1
	}

	var (
		producer sarama.SyncProducer
		err      error
	)
	for i := 1; i <= attempts; i++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			log.Printf("Kafka producer ready (topic %s)", topic)
			return NewKafkaPublisherWithProducer(producer, topic), nil
		}
		log.Printf("Waiting for Kafka... (%d/%d) Error: %v", i, attempts, err)
		if i < attempts {
			time.Sleep(2 * time.Second)
		}
	}
	return nil, fmt.Errorf("kafka producer: %w", err)
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.Type, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
		},
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send %s for %s: %w", event.Type, event.OrderID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
