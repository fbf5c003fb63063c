package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go-openclaw-highlighter/internal/keywords"
	"go-openclaw-highlighter/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Updater applies a keyword update to the page being highlighted.
type Updater interface {
	HandleUpdate(ctx context.Context, req models.UpdateRequest) models.UpdateResponse
}

// Store persists the keyword set so the next session starts with it.
type Store interface {
	Save(raw []string) ([]string, error)
}

// Handler turns chat commands into keyword updates. It plays the part of
// the extension popup.
type Handler struct {
	updater Updater
	store   Store
	status  func() string
}

// NewHandler wires the commands. store and status may be nil.
func NewHandler(updater Updater, store Store, status func() string) *Handler {
	return &Handler{updater: updater, store: store, status: status}
}

const helpText = `🔑 /keywords go, kubernetes, clearance: highlight these keywords
🧹 /clear: remove every highlight
ℹ️ /status: show what is highlighted`

// Handle runs one command and returns the reply text.
func (h *Handler) Handle(ctx context.Context, command, args string) string {
	switch command {
	case "keywords":
		req := models.UpdateRequest{}
		if strings.TrimSpace(args) != "" {
			req.Keywords = keywords.Parse(args)
		}
		return h.update(ctx, req)
	case "clear":
		return h.update(ctx, models.UpdateRequest{Keywords: []string{}})
	case "status":
		if h.status == nil {
			return "ℹ️ No status available"
		}
		return "ℹ️ " + h.status()
	default:
		return helpText
	}
}

func (h *Handler) update(ctx context.Context, req models.UpdateRequest) string {
	if req.Keywords != nil && h.store != nil {
		if _, err := h.store.Save(req.Keywords); err != nil {
			log.Printf("⚠️ Failed to save keywords: %v", err)
			return fmt.Sprintf("❌ Error: %v", err)
		}
	}

	resp := h.updater.HandleUpdate(ctx, req)
	if !resp.OK() {
		return "❌ " + resp.Message
	}
	if len(resp.Keywords) == 0 {
		return "🧹 Highlights cleared"
	}
	return fmt.Sprintf("✅ Highlighting %d keywords: %s", len(resp.Keywords), strings.Join(resp.Keywords, ", "))
}

type Bot struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	handler *Handler
}

func NewBot(token string, chatID int64, handler *Handler) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//api.Debug = true

	return &Bot{
		api:     api,
		chatID:  chatID,
		handler: handler,
	}, nil
}

// Run answers commands from the configured chat until ctx is done.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	log.Printf("🤖 Telegram bot @%s listening", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			if msg == nil || !msg.IsCommand() {
				continue
			}
			//other chats must not steer the highlighter
			if msg.Chat.ID != b.chatID {
				log.Printf("⚠️ Ignoring command from chat %d", msg.Chat.ID)
				continue
			}

			reply := b.handler.Handle(ctx, msg.Command(), msg.CommandArguments())
			if err := b.SendStatus(reply); err != nil {
				log.Printf("⚠️ Failed to reply: %v", err)
			}
		}
	}
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, escapeMarkdown(message))
	msg.ParseMode = "MarkdownV2"
	_, err := b.api.Send(msg)
	return err
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}
