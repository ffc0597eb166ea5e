// Package notify delivers new-listing alerts to subscribers.
package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rentwatch/internal/filter"
	"rentwatch/internal/model"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends new-listing notifications to a fixed set of chats.
// Delivery failures are logged, never propagated: notifications must not
// disturb the crawl run.
type Telegram struct {
	api     telegramAPI
	chatIDs []int64
	rules   filter.Rules
	log     *slog.Logger
}

// NewTelegram creates a Telegram notifier with the given bot token.
func NewTelegram(token string, chatIDs []int64, rules filter.Rules, log *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Telegram{
		api:     api,
		chatIDs: chatIDs,
		rules:   rules,
		log:     log,
	}, nil
}

// ListingCreated notifies every configured chat about a newly created
// listing that passes the match rules.
func (t *Telegram) ListingCreated(listing *model.Listing, item model.ScrapedListing) {
	if !filter.Match(listing, t.rules) {
		return
	}
	text := FormatListing(listing, item)
	for _, chatID := range t.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.DisableWebPagePreview = true
		if _, err := t.api.Send(msg); err != nil {
			t.log.Error("send notification", "chat_id", chatID,
				"listing_id", listing.ID, "error", err)
		}
	}
}
