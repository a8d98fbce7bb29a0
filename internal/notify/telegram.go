// Package notify posts match lifecycle events to a Telegram chat.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/types"
)

// sender is the part of *tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends a chat message for the events recruiters act on.
type TelegramNotifier struct {
	bot    sender
	chatID int64
}

// NewTelegramNotifier authenticates the bot token against the Telegram API.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// notableStatuses are the statuses worth interrupting a recruiter for
var notableStatuses = map[types.Status]bool{
	types.StatusInterview:     true,
	types.StatusOffer:         true,
	types.StatusOfferAccepted: true,
	types.StatusRejected:      true,
	types.StatusWithdrawn:     true,
}

// Publish implements matching.Publisher. Events nobody needs to see are skipped.
func (t *TelegramNotifier) Publish(_ context.Context, event matching.Event) error {
	text, ok := FormatEvent(event)
	if !ok {
		return nil
	}
	return t.SendMessage(text)
}

// SendMessage posts an HTML-formatted message.
func (t *TelegramNotifier) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// FormatEvent renders an event as an HTML chat message. It reports false for
// events that should not be sent.
func FormatEvent(event matching.Event) (string, bool) {
	var b strings.Builder

	switch event.Type {
	case matching.EventStatusChanged:
		if !notableStatuses[event.ToStatus] {
			return "", false
		}
		fmt.Fprintf(&b, "%s <b>%s</b>\n", statusIcon(event.ToStatus), html.EscapeString(matching.Label(event.ToStatus)))
		if event.FromStatus != "" && event.FromStatus != event.ToStatus {
			fmt.Fprintf(&b, "from %s\n", html.EscapeString(matching.Label(event.FromStatus)))
		}
	case matching.EventTimelineReverted:
		fmt.Fprintf(&b, "↩️ <b>Reverted</b> %s → %s\n",
			html.EscapeString(matching.Label(event.FromStatus)),
			html.EscapeString(matching.Label(event.ToStatus)))
	case matching.EventMatchDeleted:
		b.WriteString("🗑 <b>Proposal deleted</b>\n")
	default:
		return "", false
	}

	fmt.Fprintf(&b, "🧑 candidate <code>%s</code>\n", html.EscapeString(event.CandidateID))
	fmt.Fprintf(&b, "💼 job <code>%s</code> at <code>%s</code>\n", html.EscapeString(event.JobID), html.EscapeString(event.CompanyID))
	if event.EventDate != nil {
		fmt.Fprintf(&b, "📅 %s\n", event.EventDate.Format("Mon 02 Jan 2006 15:04 MST"))
	}
	if event.ActorID != "" {
		fmt.Fprintf(&b, "by %s\n", html.EscapeString(event.ActorID))
	}
	fmt.Fprintf(&b, "match <code>%s</code>", html.EscapeString(event.MatchID))
	return b.String(), true
}

func statusIcon(s types.Status) string {
	switch s {
	case types.StatusInterview:
		return "🗓"
	case types.StatusOffer:
		return "📨"
	case types.StatusOfferAccepted:
		return "🎉"
	case types.StatusRejected:
		return "❌"
	case types.StatusWithdrawn:
		return "🚪"
	}
	return "•"
}
