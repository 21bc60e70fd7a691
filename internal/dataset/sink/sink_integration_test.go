//go:build integration

package sink_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"amlgen/internal/dataset"
	"amlgen/internal/dataset/sink"
	"amlgen/internal/generator/typology"
	"amlgen/internal/platform/database"
	"amlgen/internal/platform/kafka"
	"amlgen/internal/platform/kafka/producer"
	"amlgen/pkg/money"
	"amlgen/pkg/testutil/containers"
)

type SinkIntegrationSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	kafka    *containers.KafkaContainer
}

func TestSinkIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(SinkIntegrationSuite))
}

func (s *SinkIntegrationSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.kafka = containers.GetManager().GetKafka(s.T())
}

func (s *SinkIntegrationSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateDataset(context.Background()))
}

func (s *SinkIntegrationSuite) TestPostgresLoadsEveryRow() {
	ctx := context.Background()
	export := testExport(s.T())

	s.Require().NoError(sink.NewPostgres(database.FromDB(s.postgres.DB)).Write(ctx, export))

	s.Equal(export.Users.Len(), s.postgres.Count(ctx, s.T(), sink.PGUsers))
	s.Equal(export.Transactions.Len(), s.postgres.Count(ctx, s.T(), sink.PGTransactions))
	s.Equal(export.Alerts.Len(), s.postgres.Count(ctx, s.T(), sink.PGAlerts))

	var amount string
	s.Require().NoError(s.postgres.DB.QueryRowContext(ctx,
		"SELECT amount::text FROM aml_transactions WHERE txn_id = $1", "TX-MULE-IN-0000AAAA").Scan(&amount))
	s.Equal("142500.0095", amount)
}

func (s *SinkIntegrationSuite) TestPostgresKeepsForwardAmountsExact() {
	ctx := context.Background()
	ring := typology.NewMuleRing()
	ring.Retention = decimal.RequireFromString("0.0333")
	forward := ring.Forward(decimal.RequireFromString("142500.0095"))

	export := testExport(s.T())
	export.Transactions.Rows[1][3] = money.Format(forward)
	s.Require().NoError(sink.NewPostgres(database.FromDB(s.postgres.DB)).Write(ctx, export))

	var amount string
	s.Require().NoError(s.postgres.DB.QueryRowContext(ctx,
		"SELECT amount::text FROM aml_transactions WHERE txn_id = $1", "TX-00000000BBBB").Scan(&amount))
	s.Equal("137754.75918365", amount)
	s.True(forward.Equal(decimal.RequireFromString(amount)))
}

func (s *SinkIntegrationSuite) TestPostgresReplacesPreviousDataset() {
	ctx := context.Background()
	pg := sink.NewPostgres(database.FromDB(s.postgres.DB))
	export := testExport(s.T())

	s.Require().NoError(pg.Write(ctx, export))
	s.Require().NoError(pg.Write(ctx, export), "a second load must not collide with the first")

	s.Equal(export.Users.Len(), s.postgres.Count(ctx, s.T(), sink.PGUsers))
}

func (s *SinkIntegrationSuite) TestPostgresRollsBackOnBadRow() {
	ctx := context.Background()
	pg := sink.NewPostgres(database.FromDB(s.postgres.DB))
	s.Require().NoError(pg.Write(ctx, testExport(s.T())))

	broken := testExport(s.T())
	broken.Alerts.Rows[0][1] = "U-DEADBEEF"
	s.Require().Error(pg.Write(ctx, broken))

	s.Equal(2, s.postgres.Count(ctx, s.T(), sink.PGUsers), "the previous dataset survives")
	s.Equal(1, s.postgres.Count(ctx, s.T(), sink.PGAlerts))
}

func (s *SinkIntegrationSuite) TestKafkaDeliversEveryRow() {
	ctx := context.Background()
	prefix := "sink-it-" + time.Now().Format("150405.000") + "."
	export := testExport(s.T())

	var topics []string
	for _, table := range export.Tables() {
		topic := prefix + table.Name
		s.Require().NoError(s.kafka.CreateTopic(ctx, topic, 1, 1))
		topics = append(topics, topic)
	}

	cfg := kafka.DefaultProducerConfig()
	cfg.Brokers = s.kafka.Brokers
	prod, err := producer.New(cfg, nil)
	s.Require().NoError(err)
	defer prod.Close()

	s.Require().NoError(sink.NewKafka(prod, prefix).Write(ctx, export))

	consumer, err := s.kafka.NewConsumer(ctx, prefix+"reader", topics...)
	s.Require().NoError(err)
	defer consumer.Close()

	total := export.Users.Len() + export.Transactions.Len() + export.Alerts.Len()
	records := s.kafka.Drain(ctx, consumer, total, 30*time.Second)
	s.Require().Len(records, total)

	perTopic := map[string]int{}
	for _, r := range records {
		perTopic[r.Topic]++
	}
	s.Equal(export.Users.Len(), perTopic[prefix+dataset.TableUsers])
	s.Equal(export.Transactions.Len(), perTopic[prefix+dataset.TableTransactions])
	s.Equal(export.Alerts.Len(), perTopic[prefix+dataset.TableAlerts])
}
