//go:build integration

package producer_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"amlgen/internal/platform/kafka"
	"amlgen/internal/platform/kafka/producer"
	"amlgen/pkg/testutil/containers"
)

type ProducerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestProducerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerIntegrationSuite))
}

func (s *ProducerIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())

	cfg := kafka.DefaultProducerConfig()
	cfg.Brokers = s.kafka.Brokers
	cfg.DeliveryTimeout = 10 * time.Second
	prod, err := producer.New(cfg, nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

// ProduceBatch returns only after every record is acknowledged, and records
// sharing a key arrive in the order they were given.
func (s *ProducerIntegrationSuite) TestProduceBatchKeepsPerKeyOrder() {
	ctx := context.Background()
	topic := "test-produce-batch"
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic, 3, 1))

	var msgs []*producer.Message
	for i := range 20 {
		msgs = append(msgs, &producer.Message{
			Topic:   topic,
			Key:     []byte("U-0000000A"),
			Value:   []byte(fmt.Sprintf("%02d", i)),
			Headers: map[string]string{"table": "transactions"},
		})
	}
	s.Require().NoError(s.producer.ProduceBatch(ctx, msgs))

	consumer, err := s.kafka.NewConsumer(ctx, "test-batch-consumer", topic)
	s.Require().NoError(err)
	defer consumer.Close()

	var got []string
	deadline := time.Now().Add(10 * time.Second)
	for len(got) < len(msgs) && time.Now().Before(deadline) {
		pollCtx, cancel := context.WithTimeout(ctx, time.Second)
		fetches := consumer.PollFetches(pollCtx)
		cancel()
		fetches.EachRecord(func(r *kgo.Record) {
			got = append(got, string(r.Value))
			s.Equal("transactions", string(r.Headers[0].Value))
		})
	}
	s.Require().Len(got, len(msgs))
	for i, v := range got {
		s.Equal(fmt.Sprintf("%02d", i), v)
	}
}

func (s *ProducerIntegrationSuite) TestProduceSingleMessage() {
	ctx := context.Background()
	topic := "test-produce-single-" + time.Now().Format("20060102150405")

	s.Require().NoError(s.producer.Produce(ctx, &producer.Message{
		Topic: topic,
		Key:   []byte("single-key"),
		Value: []byte("single-value"),
	}))

	consumer, err := s.kafka.NewConsumer(ctx, "test-single-consumer", topic)
	s.Require().NoError(err)
	defer consumer.Close()

	record := s.kafka.WaitForMessage(ctx, consumer, 5*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "single-key"
	})
	s.Require().NotNil(record)
	s.Equal("single-value", string(record.Value))
}

func (s *ProducerIntegrationSuite) TestProducerHealthy() {
	s.True(s.producer.Healthy(context.Background()))
}
