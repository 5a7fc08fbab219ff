package telegram

import (
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the part of the Bot API the handlers use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	h   *Handlers
	log zerolog.Logger
}

// NewBot connects to Telegram and registers webhookURL for updates.
func NewBot(token, webhookURL string, opts HandlerOptions) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	webhook, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, err
	}
	if _, err := api.Request(webhook); err != nil {
		return nil, err
	}
	log := opts.Log.With().Str("component", "telegram").Logger()
	log.Info().Str("webhook", webhookURL).Msg("webhook set")

	opts.Log = log
	return &Bot{h: NewHandlers(api, opts), log: log}, nil
}

// WebhookHandler decodes an update and answers it in the background
// (registered at /telegram/webhook).
func (b *Bot) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	if update.Message == nil {
		b.log.Debug().Int("update_id", update.UpdateID).Msg("non-message update received")
		w.WriteHeader(http.StatusOK)
		return
	}
	b.log.Info().Int64("chat_id", update.Message.Chat.ID).Str("text", update.Message.Text).Msg("webhook message")
	go b.h.HandleMessage(update.Message)
	w.WriteHeader(http.StatusOK)
}
