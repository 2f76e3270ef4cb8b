package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inviteform/internal/guests"
)

type recordingHandler struct {
	events   []*SubmissionEvent
	failures int
}

func (h *recordingHandler) HandleSubmissionEvent(ctx context.Context, event *SubmissionEvent) error {
	if h.failures > 0 {
		h.failures--
		return errors.New("database unavailable")
	}
	h.events = append(h.events, event)
	return nil
}

func sampleEvent() *SubmissionEvent {
	remaining := 1
	e := NewSubmissionEvent("INV-7", OutcomeAccepted, []guests.Entry{{Name: "Ali"}, {Name: "Sara"}})
	e.RemainingBefore = 3
	e.RemainingAfter = &remaining
	e.Lang = "ar"
	return e
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	event := sampleEvent()

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		decoded, err := FromJSON(val)
		if err != nil {
			return err
		}
		if decoded.RegistrationCode != "INV-7" || len(decoded.Entries) != 2 {
			return errors.New("unexpected payload")
		}
		return nil
	})

	publisher := NewKafkaPublisherWithProducer(producer, "guests-registered")
	require.NoError(t, publisher.Publish(context.Background(), event))
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaPublisherWithProducer(producer, "guests-registered")
	err := publisher.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestDirectPublisher(t *testing.T) {
	h := &recordingHandler{}
	p := NewDirectPublisher(h)

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.Len(t, h.events, 1)
	assert.Equal(t, "INV-7", h.events[0].RegistrationCode)
	assert.NoError(t, p.Close())
}

func TestProcessor_RetriesThenSucceeds(t *testing.T) {
	h := &recordingHandler{failures: 2}
	p := newProcessor(h, 3, time.Millisecond)

	data, err := sampleEvent().ToJSON()
	require.NoError(t, err)

	require.NoError(t, p.process(context.Background(), &sarama.ConsumerMessage{Value: data}))
	require.Len(t, h.events, 1)
	assert.Equal(t, OutcomeAccepted, h.events[0].Outcome)
	require.NotNil(t, h.events[0].RemainingAfter)
	assert.Equal(t, 1, *h.events[0].RemainingAfter)
}

func TestProcessor_GivesUp(t *testing.T) {
	h := &recordingHandler{failures: 10}
	p := newProcessor(h, 1, time.Millisecond)

	data, _ := sampleEvent().ToJSON()
	err := p.process(context.Background(), &sarama.ConsumerMessage{Value: data})
	assert.Error(t, err)
	assert.Empty(t, h.events)
}

func TestProcessor_SkipsPoisonMessage(t *testing.T) {
	h := &recordingHandler{}
	p := newProcessor(h, 3, time.Millisecond)

	assert.NoError(t, p.process(context.Background(), &sarama.ConsumerMessage{Value: []byte("not json")}))
	assert.Empty(t, h.events)
}

func TestOutcome(t *testing.T) {
	assert.True(t, OutcomeVerified.Succeeded())
	assert.False(t, OutcomeRejected.Succeeded())
	assert.True(t, OutcomeFailed.IsValid())
	assert.False(t, Outcome("LOST").IsValid())
}
