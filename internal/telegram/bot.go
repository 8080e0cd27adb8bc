// Package telegram connects the conversation engine to the Telegram Bot API.
package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"finbot/internal/conversation"
	"finbot/internal/logger"
)

// pollTimeout is the long-polling timeout in seconds.
const pollTimeout = 60

// Handler turns one inbound message into replies.
type Handler interface {
	Handle(ctx context.Context, msg conversation.Message) ([]conversation.Reply, error)
}

// botAPI is the subset of *tgbotapi.BotAPI the transport uses.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot receives updates by long polling and sends the engine's replies back.
type Bot struct {
	api     botAPI
	handler Handler
	wg      sync.WaitGroup
}

// NewBot authenticates with token and returns a bot bound to handler.
func NewBot(token string, handler Handler) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logger.Get().Infow("telegram bot authorized", "username", api.Self.UserName)
	return newBot(api, handler), nil
}

func newBot(api botAPI, handler Handler) *Bot {
	return &Bot{api: api, handler: handler}
}

// Run polls for updates until ctx is done. Each text message is handled in
// its own goroutine; the engine serializes messages of the same user.
// In-flight messages are finished before Run returns.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(cfg)

	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			logger.Get().Info("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg := update.Message
			if msg == nil || msg.From == nil || msg.Text == "" {
				continue
			}
			logger.Get().Debugw("update received", "update_id", update.UpdateID, "user_id", msg.From.ID)
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handle(ctx, msg.Chat.ID, msg.From.ID, msg.Text)
			}()
		}
	}
}

func (b *Bot) handle(ctx context.Context, chatID, userID int64, text string) {
	replies, err := b.handler.Handle(ctx, conversation.Message{UserID: userID, Text: text})
	if err != nil {
		logger.Get().Errorw("message handling failed", "user_id", userID, "error", err)
	}
	for _, r := range replies {
		if _, err := b.api.Send(render(chatID, r)); err != nil {
			logger.Get().Warnw("sending reply failed", "chat_id", chatID, "error", err)
			return
		}
	}
}

// Notify sends a plain text message to a user's private chat.
func (b *Bot) Notify(ctx context.Context, externalID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.api.Send(tgbotapi.NewMessage(externalID, text))
	return err
}

// render converts a reply into the matching Bot API request.
func render(chatID int64, r conversation.Reply) tgbotapi.Chattable {
	markup := replyMarkup(r)

	switch {
	case r.Photo != nil:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: r.Photo.Name, Bytes: r.Photo.Data})
		photo.Caption = r.Text
		photo.ReplyMarkup = markup
		return photo
	case r.Document != nil:
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: r.Document.Name, Bytes: r.Document.Data})
		doc.Caption = r.Text
		doc.ReplyMarkup = markup
		return doc
	default:
		msg := tgbotapi.NewMessage(chatID, r.Text)
		msg.ReplyMarkup = markup
		return msg
	}
}

func replyMarkup(r conversation.Reply) interface{} {
	if r.RemoveKeyboard {
		return tgbotapi.NewRemoveKeyboard(true)
	}
	if len(r.Keyboard) == 0 {
		return nil
	}
	return keyboard(r.Keyboard)
}

func keyboard(layout [][]string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(layout))
	for _, labels := range layout {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}
