package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"amlgen/internal/dataset"
	"amlgen/internal/platform/kafka/producer"
)

// Publisher delivers a batch of messages. *producer.Producer satisfies it.
type Publisher interface {
	ProduceBatch(ctx context.Context, msgs []*producer.Message) error
}

// Kafka publishes every row as a JSON object to one topic per table, keyed
// by the user the row belongs to so a consumer sees a user's rows in order.
type Kafka struct {
	publisher   Publisher
	topicPrefix string
}

func NewKafka(publisher Publisher, topicPrefix string) *Kafka {
	return &Kafka{publisher: publisher, topicPrefix: topicPrefix}
}

func (k *Kafka) Name() string { return "kafka" }

// Topic returns the topic a table is published to.
func (k *Kafka) Topic(table string) string {
	return k.topicPrefix + table
}

func (k *Kafka) Write(ctx context.Context, export dataset.Export) error {
	for _, table := range export.Tables() {
		msgs := make([]*producer.Message, 0, table.Len())
		for i, row := range table.Rows {
			value, err := json.Marshal(rowObject(table.Columns, row))
			if err != nil {
				return fmt.Errorf("encode %s row %d: %w", table.Name, i, err)
			}
			msgs = append(msgs, &producer.Message{
				Topic:   k.Topic(table.Name),
				Key:     []byte(table.Keys[i]),
				Value:   value,
				Headers: map[string]string{"table": table.Name},
			})
		}
		if err := k.publisher.ProduceBatch(ctx, msgs); err != nil {
			return fmt.Errorf("publish %s: %w", table.Name, err)
		}
	}
	return nil
}

func rowObject(columns, row []string) map[string]string {
	obj := make(map[string]string, len(columns))
	for i, c := range columns {
		obj[c] = row[i]
	}
	return obj
}
