package bot

import (
	"context"
	"log"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

// Telegram feeds telebot updates into the engine over long polling.
type Telegram struct {
	bot    *tele.Bot
	engine *Engine
}

// NewTelegram connects to the Bot API and registers the single dispatch
// handler for commands, plain text, and button presses.
func NewTelegram(token string, engine *Engine) (*Telegram, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	t := &Telegram{bot: b, engine: engine}
	b.Handle("/start", t.onEvent)
	b.Handle(tele.OnText, t.onEvent)
	b.Handle(tele.OnCallback, t.onEvent)
	return t, nil
}

// Start begins long polling and blocks until Stop.
func (t *Telegram) Start() {
	t.bot.Start()
}

// Stop halts the poller.
func (t *Telegram) Stop() {
	t.bot.Stop()
}

// onEvent is the top-level dispatch boundary: every per-event failure is
// logged and swallowed so the poller keeps running.
func (t *Telegram) onEvent(c tele.Context) error {
	event := Event{ChatID: c.Chat().ID, Username: username(c.Sender())}

	if cb := c.Callback(); cb != nil {
		// Raw inline buttons deliver their payload as-is; telebot prefixes
		// registered buttons with \f, which we never use.
		event.Input = strings.TrimPrefix(strings.TrimSpace(cb.Data), "\f")
		event.Callback = true
		defer func() {
			_ = c.Respond() // stop the client-side spinner
		}()
	} else if msg := c.Message(); msg != nil {
		event.Input = strings.TrimSpace(msg.Text)
	} else {
		return nil
	}

	if err := t.engine.HandleEvent(context.Background(), event, newTelegramRenderer(c)); err != nil {
		log.Printf("❌ chat %d: payload %q: %v", event.ChatID, event.Input, err)
	}
	return nil
}

func username(sender *tele.User) string {
	if sender == nil {
		return ""
	}
	if sender.Username != "" {
		return sender.Username
	}
	return strings.TrimSpace(sender.FirstName + " " + sender.LastName)
}

// telegramRenderer renders one turn's reply. Replacement is delete-then-send:
// the message that triggered the turn is removed before the reply goes out,
// the same ordering every screen uses.
type telegramRenderer struct {
	c tele.Context
}

func newTelegramRenderer(c tele.Context) *telegramRenderer {
	return &telegramRenderer{c: c}
}

func (r *telegramRenderer) Choices(text string, rows [][]Button) error {
	return r.send(text, rows)
}

func (r *telegramRenderer) Text(text string, rows [][]Button) error {
	return r.send(text, rows)
}

func (r *telegramRenderer) Photo(url, caption string, rows [][]Button) error {
	r.replace()
	photo := &tele.Photo{File: tele.FromURL(url), Caption: caption}
	if markup := inlineMarkup(rows); markup != nil {
		return r.c.Send(photo, markup)
	}
	return r.c.Send(photo)
}

func (r *telegramRenderer) send(text string, rows [][]Button) error {
	r.replace()
	if markup := inlineMarkup(rows); markup != nil {
		return r.c.Send(text, markup)
	}
	return r.c.Send(text)
}

// replace deletes the previous message. Failures (already gone, too old to
// delete) are logged, not fatal: the reply still goes out.
func (r *telegramRenderer) replace() {
	if r.c.Message() == nil {
		return
	}
	if err := r.c.Delete(); err != nil {
		log.Printf("⚠️ chat %d: delete previous message: %v", r.c.Chat().ID, err)
	}
}

func inlineMarkup(rows [][]Button) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	keyboard := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		line := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			line = append(line, tele.InlineButton{Text: b.Label, Data: b.Payload})
		}
		keyboard = append(keyboard, line)
	}
	return &tele.ReplyMarkup{InlineKeyboard: keyboard}
}
