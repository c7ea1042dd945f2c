package notify

import (
	"encoding/json"
	"fmt"

	"carhive/internal/domain"
	"carhive/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier pushes booking lifecycle events into the managers chat.
// It is a pure consumer: it subscribes to the event bus and never calls back
// into the booking core.
type TelegramNotifier struct {
	sender domain.TelegramSender
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(sender domain.TelegramSender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender: sender,
		chatID: chatID,
		logger: logger,
	}
}

// SubscribeAll wires the notifier to every booking lifecycle event.
func (n *TelegramNotifier) SubscribeAll(bus *events.EventBus) {
	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingConfirmed,
		events.EventBookingCancelled,
		events.EventBookingCompleted,
	} {
		bus.Subscribe(eventType, n.handleEvent)
	}
}

func (n *TelegramNotifier) handleEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("decode booking event")
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, formatMessage(event.Type, payload))
	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("send manager notification")
		return err
	}
	return nil
}

func formatMessage(eventType string, p events.BookingEventPayload) string {
	switch eventType {
	case events.EventBookingCreated:
		return fmt.Sprintf(`🆕 New booking request:

🚗 Car: %s %s
📅 Dates: %s — %s (%d days)
💰 Total: %.2f
👤 Customer: %s
📧 Email: %s
🆔 Booking: %s`,
			p.CarMake, p.CarModel,
			p.PickupDate, p.ReturnDate, p.TotalDays,
			p.TotalPrice,
			p.CustomerName,
			p.CustomerEmail,
			p.BookingID)
	case events.EventBookingConfirmed:
		return fmt.Sprintf("✅ Booking %s confirmed (%s %s, %s — %s)", p.BookingID, p.CarMake, p.CarModel, p.PickupDate, p.ReturnDate)
	case events.EventBookingCancelled:
		return fmt.Sprintf("❌ Booking %s cancelled (%s %s)", p.BookingID, p.CarMake, p.CarModel)
	case events.EventBookingCompleted:
		return fmt.Sprintf("🏁 Booking %s completed (%s %s)", p.BookingID, p.CarMake, p.CarModel)
	default:
		return fmt.Sprintf("Booking %s: %s", p.BookingID, eventType)
	}
}
