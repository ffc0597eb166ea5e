package notify

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rentwatch/internal/filter"
	"rentwatch/internal/model"
)

type mockAPI struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable type")
	}
	m.sent = append(m.sent, msg)
	return tgbotapi.Message{}, m.err
}

func newTestTelegram(api *mockAPI, chatIDs []int64, rules filter.Rules) *Telegram {
	return &Telegram{
		api:     api,
		chatIDs: chatIDs,
		rules:   rules,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestListingCreatedSendsToEveryChat(t *testing.T) {
	api := &mockAPI{}
	tg := newTestTelegram(api, []int64{100, 200}, filter.Rules{})

	listing := &model.Listing{Title: "Apartment Stratumseind", CanonicalURL: "https://example.com/1"}
	tg.ListingCreated(listing, model.ScrapedListing{})

	if len(api.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(api.sent))
	}
	if api.sent[0].ChatID != 100 || api.sent[1].ChatID != 200 {
		t.Errorf("chat IDs = %d, %d", api.sent[0].ChatID, api.sent[1].ChatID)
	}
	if api.sent[0].Text != FormatListing(listing, model.ScrapedListing{}) {
		t.Errorf("message text = %q", api.sent[0].Text)
	}
	if !api.sent[0].DisableWebPagePreview {
		t.Error("expected link previews to be disabled")
	}
}

func TestListingCreatedAppliesRules(t *testing.T) {
	api := &mockAPI{}
	tg := newTestTelegram(api, []int64{100}, filter.Rules{Exclude: []string{"shared"}})

	tg.ListingCreated(&model.Listing{Title: "Shared room"}, model.ScrapedListing{})
	if len(api.sent) != 0 {
		t.Fatalf("expected filtered listing to be dropped, got %d messages", len(api.sent))
	}

	tg.ListingCreated(&model.Listing{Title: "Private apartment"}, model.ScrapedListing{})
	if len(api.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(api.sent))
	}
}

func TestListingCreatedSwallowsSendErrors(t *testing.T) {
	api := &mockAPI{err: errors.New("telegram down")}
	tg := newTestTelegram(api, []int64{100, 200}, filter.Rules{})

	// Must not panic or stop at the first failing chat.
	tg.ListingCreated(&model.Listing{Title: "Apartment"}, model.ScrapedListing{})
	if len(api.sent) != 2 {
		t.Errorf("expected both chats attempted, got %d", len(api.sent))
	}
}
