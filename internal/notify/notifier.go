package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/events"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
)

// Notifier forwards booking lifecycle events to manager chats.
type Notifier struct {
	sender      MessageSender
	chatIDs     []int64
	sendTimeout time.Duration
	logger      *zerolog.Logger
}

func NewNotifier(sender MessageSender, chatIDs []int64, logger *zerolog.Logger) *Notifier {
	return &Notifier{
		sender:      sender,
		chatIDs:     chatIDs,
		sendTimeout: 10 * time.Second,
		logger:      logger,
	}
}

// SubscribeTo wires the notifier to the event bus.
func (n *Notifier) SubscribeTo(bus *events.EventBus) {
	bus.Subscribe(events.TypeBookingCreated, n.handleBooking("New booking"))
	bus.Subscribe(events.TypeBookingCancelled, n.handleBooking("Booking cancelled"))
	bus.Subscribe(events.TypeBookingCompleted, n.handleBooking("Booking completed"))
}

func (n *Notifier) handleBooking(title string) events.EventHandler {
	return func(event events.Event) error {
		var b models.Booking
		if err := json.Unmarshal(event.Payload, &b); err != nil {
			n.logger.Error().Err(err).Str("event", event.Type).Msg("bad event payload")
			return err
		}
		n.Broadcast(formatBooking(title, &b))
		return nil
	}
}

// Broadcast sends the text to every configured manager chat. Failures are
// logged per chat and do not stop delivery to the others.
func (n *Notifier) Broadcast(text string) {
	for _, chatID := range n.chatIDs {
		ctx, cancel := context.WithTimeout(context.Background(), n.sendTimeout)
		if err := n.sender.SendMessage(ctx, chatID, text); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("notification failed")
		}
		cancel()
	}
}

// BroadcastDocument sends a file to every configured manager chat.
func (n *Notifier) BroadcastDocument(filename string, data []byte) {
	for _, chatID := range n.chatIDs {
		ctx, cancel := context.WithTimeout(context.Background(), n.sendTimeout)
		if err := n.sender.SendDocument(ctx, chatID, filename, data); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("document delivery failed")
		}
		cancel()
	}
}

func formatBooking(title string, b *models.Booking) string {
	text := fmt.Sprintf("%s\n\nService: %s\nDate: %s, %s - %s\nClient: %s",
		title,
		b.ServiceName,
		b.Date.Format("02.01.2006"),
		models.FormatMinute(b.Start),
		models.FormatMinute(b.End),
		b.ClientID,
	)
	if b.Status == models.StatusCancelled && b.CancelReason != "" {
		text += fmt.Sprintf("\nReason: %s", b.CancelReason)
	}
	if b.ClientNote != "" {
		text += fmt.Sprintf("\nNote: %s", b.ClientNote)
	}
	return text
}
