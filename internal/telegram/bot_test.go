package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"finbot/internal/conversation"
	"finbot/internal/logger"
)

func init() {
	logger.Init("test")
}

type fakeAPI struct {
	mu      sync.Mutex
	updates chan tgbotapi.Update
	sent    []tgbotapi.Chattable
	stopped bool
	sendErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type echoHandler struct {
	mu       sync.Mutex
	messages []conversation.Message
}

func (h *echoHandler) Handle(_ context.Context, msg conversation.Message) ([]conversation.Reply, error) {
	h.mu.Lock()
	h.messages = append(h.messages, msg)
	h.mu.Unlock()
	return []conversation.Reply{
		{Text: "echo: " + msg.Text, Keyboard: [][]string{{"A", "B"}, {"C"}}},
		{Text: "done", RemoveKeyboard: true},
	}, nil
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID, Type: "private"},
		Text: text,
	}}
}

func TestRender(t *testing.T) {
	t.Run("text_with_keyboard", func(t *testing.T) {
		c := render(7, conversation.Reply{Text: "hi", Keyboard: [][]string{{"A", "B"}, {"C"}}})
		msg, ok := c.(tgbotapi.MessageConfig)
		if !ok {
			t.Fatalf("expected MessageConfig, got %T", c)
		}
		if msg.ChatID != 7 || msg.Text != "hi" {
			t.Errorf("unexpected message %+v", msg)
		}
		kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
		if !ok {
			t.Fatalf("expected ReplyKeyboardMarkup, got %T", msg.ReplyMarkup)
		}
		if len(kb.Keyboard) != 2 || len(kb.Keyboard[0]) != 2 || kb.Keyboard[1][0].Text != "C" {
			t.Errorf("unexpected keyboard layout %+v", kb.Keyboard)
		}
		if !kb.ResizeKeyboard {
			t.Error("expected a resized keyboard")
		}
	})

	t.Run("remove_keyboard", func(t *testing.T) {
		msg := render(7, conversation.Reply{Text: "Введите сумму:", RemoveKeyboard: true}).(tgbotapi.MessageConfig)
		if _, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardRemove); !ok {
			t.Errorf("expected ReplyKeyboardRemove, got %T", msg.ReplyMarkup)
		}
	})

	t.Run("plain_text", func(t *testing.T) {
		msg := render(7, conversation.Reply{Text: "x"}).(tgbotapi.MessageConfig)
		if msg.ReplyMarkup != nil {
			t.Errorf("expected no markup, got %T", msg.ReplyMarkup)
		}
	})

	t.Run("photo", func(t *testing.T) {
		c := render(7, conversation.Reply{Text: "Диаграмма", Photo: &conversation.Attachment{Name: "chart.png", Data: []byte{1, 2}}})
		photo, ok := c.(tgbotapi.PhotoConfig)
		if !ok {
			t.Fatalf("expected PhotoConfig, got %T", c)
		}
		if photo.Caption != "Диаграмма" {
			t.Errorf("caption = %q", photo.Caption)
		}
		file, ok := photo.File.(tgbotapi.FileBytes)
		if !ok || file.Name != "chart.png" || len(file.Bytes) != 2 {
			t.Errorf("unexpected file %+v", photo.File)
		}
	})

	t.Run("document", func(t *testing.T) {
		c := render(7, conversation.Reply{Document: &conversation.Attachment{Name: "transactions.csv", Data: []byte("a;b")}})
		doc, ok := c.(tgbotapi.DocumentConfig)
		if !ok {
			t.Fatalf("expected DocumentConfig, got %T", c)
		}
		if file, ok := doc.File.(tgbotapi.FileBytes); !ok || file.Name != "transactions.csv" {
			t.Errorf("unexpected file %+v", doc.File)
		}
	})
}

func TestBotRun(t *testing.T) {
	api := newFakeAPI()
	handler := &echoHandler{}
	bot := newBot(api, handler)

	api.updates <- textUpdate(42, "hello")
	api.updates <- tgbotapi.Update{}
	api.updates <- textUpdate(43, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for api.sentCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("bot did not stop")
	}

	if len(handler.messages) != 1 || handler.messages[0].UserID != 42 || handler.messages[0].Text != "hello" {
		t.Errorf("unexpected handled messages %+v", handler.messages)
	}
	if len(api.sent) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(api.sent))
	}
	if msg := api.sent[0].(tgbotapi.MessageConfig); msg.Text != "echo: hello" || msg.ChatID != 42 {
		t.Errorf("unexpected first reply %+v", msg)
	}
	if !api.stopped {
		t.Error("expected polling to be stopped")
	}
}

func TestNotify(t *testing.T) {
	t.Run("sends_text", func(t *testing.T) {
		api := newFakeAPI()
		bot := newBot(api, &echoHandler{})
		if err := bot.Notify(context.Background(), 99, "📊 Ежедневная сводка: 0.00 RUB"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		msg := api.sent[0].(tgbotapi.MessageConfig)
		if msg.ChatID != 99 || msg.Text != "📊 Ежедневная сводка: 0.00 RUB" {
			t.Errorf("unexpected notification %+v", msg)
		}
	})

	t.Run("send_error", func(t *testing.T) {
		api := newFakeAPI()
		api.sendErr = errors.New("forbidden: bot was blocked by the user")
		bot := newBot(api, &echoHandler{})
		if err := bot.Notify(context.Background(), 99, "x"); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("cancelled_context", func(t *testing.T) {
		api := newFakeAPI()
		bot := newBot(api, &echoHandler{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := bot.Notify(ctx, 99, "x"); err == nil {
			t.Error("expected an error")
		}
		if api.sentCount() != 0 {
			t.Error("nothing should be sent")
		}
	})
}
