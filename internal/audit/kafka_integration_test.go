//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"zipstate/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	logger   *slog.Logger
	topicSeq int
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// freshTopic returns a topic name unused by earlier tests. The Redpanda
// container is shared, so topics cannot be reused between tests.
func (s *KafkaPublisherSuite) freshTopic() string {
	s.topicSeq++
	return fmt.Sprintf("audit-events-%d-%d", time.Now().UnixNano(), s.topicSeq)
}

func (s *KafkaPublisherSuite) TestEmitDeliversToTopic() {
	ctx := context.Background()
	topic := s.freshTopic()

	publisher, err := NewKafkaPublisher(ctx, []string{s.redpanda.Broker}, topic, s.logger)
	s.Require().NoError(err)

	event := Event{
		Action:     ActionPostalLookup,
		Domain:     "postal",
		Code:       "80301",
		State:      "CO",
		Outcome:    OutcomeResolved,
		Caller:     "billing-backend",
		RequestID:  "req-123",
		APIVersion: "v1",
	}
	s.Require().NoError(publisher.Emit(ctx, event))
	s.Require().NoError(publisher.Close(), "close flushes the producer")

	record := s.consumeOne(topic)
	s.Equal("80301", string(record.Key), "records are keyed by code")

	var got Event
	s.Require().NoError(json.Unmarshal(record.Value, &got))
	s.Equal(ActionPostalLookup, got.Action)
	s.Equal("CO", got.State)
	s.Equal(OutcomeResolved, got.Outcome)
	s.Equal("billing-backend", got.Caller)
	s.Equal("v1", got.APIVersion)
	s.False(got.Timestamp.IsZero(), "emit stamps missing timestamps")
}

// TestTopicCreationIsIdempotent verifies two publishers can share a topic;
// the second constructor must tolerate the topic already existing.
func (s *KafkaPublisherSuite) TestTopicCreationIsIdempotent() {
	ctx := context.Background()
	topic := s.freshTopic()

	first, err := NewKafkaPublisher(ctx, []string{s.redpanda.Broker}, topic, s.logger)
	s.Require().NoError(err)
	defer first.Close()

	second, err := NewKafkaPublisher(ctx, []string{s.redpanda.Broker}, topic, s.logger)
	s.Require().NoError(err)
	defer second.Close()
}

func (s *KafkaPublisherSuite) TestEmitPreservesExplicitTimestamp() {
	ctx := context.Background()
	topic := s.freshTopic()

	publisher, err := NewKafkaPublisher(ctx, []string{s.redpanda.Broker}, topic, s.logger)
	s.Require().NoError(err)

	stamped := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := Event{
		Timestamp: stamped,
		Action:    ActionKeyIssued,
		Caller:    "geo-service",
	}
	s.Require().NoError(publisher.Emit(ctx, event))
	s.Require().NoError(publisher.Close())

	record := s.consumeOne(topic)

	var got Event
	s.Require().NoError(json.Unmarshal(record.Value, &got))
	s.True(stamped.Equal(got.Timestamp))
}

func (s *KafkaPublisherSuite) consumeOne(topic string) *kgo.Record {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fetches := client.PollFetches(ctx)
	s.Require().NoError(fetches.Err())

	records := fetches.Records()
	s.Require().NotEmpty(records, "expected at least one delivered record")
	return records[0]
}
