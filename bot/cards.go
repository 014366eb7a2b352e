package bot

import (
	"context"
	"fmt"
	"strings"

	"cafe-storefront/models"
	"cafe-storefront/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxCallbackData is Telegram's limit on callback data, in bytes.
const maxCallbackData = 64

// cardMarkup converts card buttons to an inline keyboard, or nil when the
// card has none. Buttons whose callback data Telegram would reject are
// left out so the rest of the card still sends.
func cardMarkup(c services.OrderCardContent) *tgbotapi.InlineKeyboardMarkup {
	if len(c.Buttons) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(c.Buttons))
	for _, row := range c.Buttons {
		var btns []tgbotapi.InlineKeyboardButton
		for _, b := range row {
			switch {
			case b.URL != "":
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			case len(b.CallbackData) <= maxCallbackData:
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.CallbackData))
			}
		}
		if len(btns) > 0 {
			rows = append(rows, btns)
		}
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

// editCard replaces the text and keyboard of an existing message.
func (b *Bot) editCard(chatID int64, messageID int, c services.OrderCardContent) error {
	var edit tgbotapi.EditMessageTextConfig
	if kb := cardMarkup(c); kb != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, c.Text, *kb)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, c.Text)
	}
	_, err := b.api.Send(edit)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

// UpsertOrderCard edits the order's customer card if one was sent,
// otherwise sends a new one to chatID and remembers it.
func (b *Bot) UpsertOrderCard(chatID int64, orderID string, c services.OrderCardContent) {
	b.cardsMu.Lock()
	ptr, ok := b.cards[orderID]
	b.cardsMu.Unlock()
	if ok {
		err := b.editCard(ptr.chatID, ptr.messageID, c)
		if err == nil {
			return
		}
		b.log.Debug("edit card failed, sending new", zap.String("order", orderID), zap.Error(err))
	}
	if id := b.sendCard(chatID, c); id != 0 {
		b.cardsMu.Lock()
		b.cards[orderID] = cardPointer{chatID: chatID, messageID: id}
		b.cardsMu.Unlock()
	}
}

// followOrder keeps the customer card in step with the tracker until the
// order is delivered or ctx ends.
func (b *Bot) followOrder(ctx context.Context, chatID int64, order models.Order) {
	updates, cancel, ok := b.cafe.Tracker.Watch(order.ID)
	if !ok {
		b.UpsertOrderCard(chatID, order.ID, services.BuildCustomerCard(order, nil, ""))
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case u, open := <-updates:
				if !open {
					return
				}
				b.UpsertOrderCard(chatID, order.ID, services.BuildCustomerCard(order, &u, ""))
				if u.Final {
					b.forgetCard(order.ID)
					return
				}
			}
		}
	}()
}

func (b *Bot) forgetCard(orderID string) {
	b.cardsMu.Lock()
	delete(b.cards, orderID)
	b.cardsMu.Unlock()
}

// OrderPlaced forwards every accepted order to the operator chat.
func (b *Bot) OrderPlaced(_ context.Context, order models.Order) {
	if b.adminChatID == 0 {
		return
	}
	b.sendCard(b.adminChatID, services.BuildAdminCard(order))
}

// userMessage is the text shown to a customer for a failed operation.
func userMessage(err error) string {
	switch services.ErrorCode(err) {
	case services.CodeInternal:
		return "Something went wrong. Please try again."
	case services.CodeNotFound:
		return "That item is no longer available."
	}
	return err.Error()
}

func sectionsKeyboard(sections []models.MenuSection) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, s := range sections {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s (%d)", s.Name, len(s.Items)), fmt.Sprintf("%s%d", cbSection, i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func itemsKeyboard(items []models.MenuItem) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range items {
		if len(cbAdd+it.ID) > maxCallbackData || len(cbFavorite+it.ID) > maxCallbackData {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("➕ %s  %s", it.Name, priceLabel(it.Price)), cbAdd+it.ID),
			tgbotapi.NewInlineKeyboardButtonData("⭐", cbFavorite+it.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Menu", cbMenu),
		tgbotapi.NewInlineKeyboardButtonData("🧺 Cart", cbCart),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func priceLabel(p models.Price) string {
	amount := decimal.NewFromFloat(p.Effective())
	if v := p.Variant(); v != nil && v.Cold != nil {
		return fmt.Sprintf("%s / %s iced", services.FormatPeso(amount), services.FormatPeso(decimal.NewFromFloat(*v.Cold)))
	}
	return services.FormatPeso(amount)
}
