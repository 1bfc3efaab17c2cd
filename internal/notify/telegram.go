package notify

import (
	"encoding/json"
	"fmt"

	"agendalink/internal/events"
	"agendalink/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender posts a message to the operator chat.
type Sender interface {
	Send(text string) error
}

// TelegramSender delivers operator notifications through a bot.
type TelegramSender struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramSender(token string, chatID int64) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramSender{bot: bot, chatID: chatID}, nil
}

func (s *TelegramSender) Send(text string) error {
	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := s.bot.Send(msg)
	return err
}

// Notifier turns booking lifecycle events into operator messages.
type Notifier struct {
	sender Sender
	logger *zerolog.Logger
}

func NewNotifier(sender Sender, logger *zerolog.Logger) *Notifier {
	return &Notifier{sender: sender, logger: logger}
}

// Subscribe attaches the notifier to the event bus.
func (n *Notifier) Subscribe(bus *events.EventBus) {
	handler := func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			n.logger.Error().Err(err).Str("event_type", event.Type).Msg("decode notify event error")
			return err
		}

		text := n.format(event.Type, payload)
		if text == "" {
			return nil
		}
		if err := n.sender.Send(text); err != nil {
			n.logger.Error().Err(err).Str("event_type", event.Type).Msg("notify send error")
			return err
		}
		return nil
	}

	bus.Subscribe(events.EventPaymentApproved, handler)
	bus.Subscribe(events.EventBookingExpired, handler)
	bus.Subscribe(events.EventBookingRolledBack, handler)
}

func (n *Notifier) format(eventType string, p events.BookingEventPayload) string {
	when := p.StartAt.Format("02/01/2006 15:04")

	switch eventType {
	case events.EventPaymentApproved:
		return fmt.Sprintf("✅ <b>Agendamento confirmado</b>\n%s — %s\n%s (%s)\n%s\nSinal: %s",
			p.Code, p.ServiceName, p.CustomerName, p.CustomerPhone, when, models.FormatMoney(p.AmountCents))
	case events.EventBookingExpired:
		return fmt.Sprintf("⌛ <b>Reserva expirada</b>\n%s — %s\n%s\n%s",
			p.Code, p.ServiceName, p.CustomerName, when)
	case events.EventBookingRolledBack:
		return fmt.Sprintf("⚠️ <b>Reserva desfeita</b>\n%s — %s\n%s\nMotivo: %s",
			p.Code, p.ServiceName, p.CustomerName, p.Detail)
	}
	return ""
}
