package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cafe-storefront/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the part of the Telegram API the bot talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type cardPointer struct {
	chatID    int64
	messageID int
}

// Bot is the customer and operator front end on Telegram.
type Bot struct {
	api          Sender
	tg           *tgbotapi.BotAPI // nil when built around a custom Sender
	cafe         *services.Cafe
	adminChatID  int64
	exportPrefix string
	log          *zap.Logger

	cardsMu sync.Mutex
	cards   map[string]cardPointer // order id -> customer card
	wg      sync.WaitGroup
}

// New connects to Telegram with token. adminChatID receives new order
// cards and is the only chat allowed to run operator commands. With zero
// no cards are sent and any chat may log in.
func New(token string, adminChatID int64, cafe *services.Cafe, exportPrefix string, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	b := NewWithSender(api, adminChatID, cafe, exportPrefix, logger)
	b.tg = api
	return b, nil
}

func NewWithSender(api Sender, adminChatID int64, cafe *services.Cafe, exportPrefix string, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bot{
		api:          api,
		cafe:         cafe,
		adminChatID:  adminChatID,
		exportPrefix: exportPrefix,
		log:          logger.Named("bot"),
		cards:        make(map[string]cardPointer),
	}
	cafe.Checkout.Observe(b)
	return b
}

func sessionFor(userID int64) string { return "tg:" + strconv.FormatInt(userID, 10) }

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Welcome"},
		tgbotapi.BotCommand{Command: "menu", Description: "Browse the menu"},
		tgbotapi.BotCommand{Command: "cart", Description: "Your order"},
		tgbotapi.BotCommand{Command: "orders", Description: "Past orders"},
		tgbotapi.BotCommand{Command: "favorites", Description: "Saved items"},
		tgbotapi.BotCommand{Command: "info", Description: "Address and hours"},
	)
	_, err := b.api.Request(cfg)
	return err
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	if b.tg == nil {
		return
	}
	if err := b.setBotCommands(); err != nil {
		b.log.Warn("set commands", zap.Error(err))
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.log.Info("bot started", zap.String("username", b.tg.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.tg.StopReceivingUpdates()
			b.wg.Wait()
			return
		case update := <-updates:
			b.HandleUpdate(ctx, update)
		}
	}
}

// Wait blocks until background checkouts and card watchers finish.
func (b *Bot) Wait() { b.wg.Wait() }

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		b.send(msg.Chat.ID, "Type /menu to see what's brewing.")
		return
	}
	cmd, args, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	args = strings.TrimSpace(args)
	chatID, userID := msg.Chat.ID, msg.From.ID

	switch cmd {
	case "/start":
		b.handleStart(ctx, chatID)
	case "/menu":
		b.sendSections(chatID)
	case "/cart":
		b.sendCart(ctx, chatID, userID)
	case "/voucher":
		b.handleVoucher(ctx, chatID, userID, args)
	case "/checkout":
		b.sendServiceMode(ctx, chatID, userID)
	case "/orders":
		b.handleOrders(ctx, chatID, userID)
	case "/favorites":
		b.handleFavorites(ctx, chatID, userID)
	case "/info":
		b.handleInfo(chatID)
	case "/login", "/logout", "/stats", "/export", "/clear_history", "/expense":
		b.handleAdminCommand(ctx, chatID, userID, cmd, args)
	default:
		b.send(chatID, "Unknown command.")
	}
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("send", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (b *Bot) sendWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// sendCard sends a card and returns the message id, or 0 on failure.
func (b *Bot) sendCard(chatID int64, c services.OrderCardContent) int {
	msg := tgbotapi.NewMessage(chatID, c.Text)
	if kb := cardMarkup(c); kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Warn("send card", zap.Int64("chat", chatID), zap.Error(err))
		return 0
	}
	return sent.MessageID
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Debug("answer callback", zap.Error(err))
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	settings := b.cafe.Catalog.Settings()
	b.send(chatID, fmt.Sprintf("✨ Welcome to %s!\n%s", settings.CafeName, settings.Tagline))
	b.sendSections(chatID)
}

func (b *Bot) handleInfo(chatID int64) {
	info := services.CafeDetails()
	var sb strings.Builder
	fmt.Fprintf(&sb, "📍 %s\n📞 %s\n✉️ %s\n\n🕰 %s", info.Address, info.Phone, info.Email, info.OperatingHours.Notice)
	b.send(chatID, sb.String())
}
