package notify

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/events"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
)

type fakeSender struct {
	messages  map[int64][]string
	documents map[int64][]string
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		messages:  make(map[int64][]string),
		documents: make(map[int64][]string),
	}
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	f.messages[chatID] = append(f.messages[chatID], text)
	return nil
}

func (f *fakeSender) SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error {
	f.documents[chatID] = append(f.documents[chatID], filename)
	return nil
}

func TestNotifierOnBookingCreated(t *testing.T) {
	sender := newFakeSender()
	logger := zerolog.New(io.Discard)
	notifier := NewNotifier(sender, []int64{100, 200}, &logger)

	bus := events.NewEventBus()
	notifier.SubscribeTo(bus)

	booking := &models.Booking{
		ID:          "b-1",
		ClientID:    "client-1",
		ProviderID:  "provider-1",
		ServiceName: "Haircut",
		Date:        time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Start:       600,
		End:         660,
		Status:      models.StatusConfirmed,
	}
	require.NoError(t, bus.PublishJSON(events.TypeBookingCreated, booking))

	require.Len(t, sender.messages[100], 1)
	require.Len(t, sender.messages[200], 1)
	assert.Contains(t, sender.messages[100][0], "New booking")
	assert.Contains(t, sender.messages[100][0], "Haircut")
	assert.Contains(t, sender.messages[100][0], "10:00 - 11:00")
	assert.Contains(t, sender.messages[100][0], "02.06.2025")
}

func TestNotifierOnBookingCancelled(t *testing.T) {
	sender := newFakeSender()
	logger := zerolog.New(io.Discard)
	notifier := NewNotifier(sender, []int64{100}, &logger)

	bus := events.NewEventBus()
	notifier.SubscribeTo(bus)

	booking := &models.Booking{
		ID:           "b-1",
		ServiceName:  "Manicure",
		Date:         time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Start:        600,
		End:          645,
		Status:       models.StatusCancelled,
		CancelReason: "client request",
	}
	require.NoError(t, bus.PublishJSON(events.TypeBookingCancelled, booking))

	require.Len(t, sender.messages[100], 1)
	assert.Contains(t, sender.messages[100][0], "Booking cancelled")
	assert.Contains(t, sender.messages[100][0], "client request")
}

func TestBroadcastDocument(t *testing.T) {
	sender := newFakeSender()
	logger := zerolog.New(io.Discard)
	notifier := NewNotifier(sender, []int64{100, 200}, &logger)

	notifier.BroadcastDocument("report.xlsx", []byte{1, 2, 3})
	assert.Equal(t, []string{"report.xlsx"}, sender.documents[100])
	assert.Equal(t, []string{"report.xlsx"}, sender.documents[200])
}
