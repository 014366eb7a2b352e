package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cafe-storefront/models"
	"cafe-storefront/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Callback prefixes private to the bot; cart and order buttons use the
// ones shared with services.
const (
	cbMenu     = "menu"
	cbCart     = "cart"
	cbSection  = "sec:"
	cbAdd      = "add:"
	cbFavorite = "fav:"
)

// recentOrdersLimit is how many past orders /orders shows.
const recentOrdersLimit = 5

func (b *Bot) sendSections(chatID int64) {
	sections := b.cafe.Catalog.Sections()
	if len(sections) == 0 {
		b.send(chatID, "The menu is empty right now.")
		return
	}
	b.sendWithInline(chatID, "☕ Pick a section:", sectionsKeyboard(sections))
}

func (b *Bot) sendSection(chatID int64, index int) {
	sections := b.cafe.Catalog.Sections()
	if index < 0 || index >= len(sections) {
		b.sendSections(chatID)
		return
	}
	s := sections[index]
	b.sendWithInline(chatID, "📜 "+s.Name, itemsKeyboard(s.Items))
}

func (b *Bot) sendCart(ctx context.Context, chatID, userID int64) {
	b.sendCard(chatID, services.BuildCartCard(b.cafe.Carts.Quote(ctx, sessionFor(userID))))
}

func (b *Bot) handleVoucher(ctx context.Context, chatID, userID int64, code string) {
	if code == "" {
		b.send(chatID, "Usage: /voucher CODE")
		return
	}
	q, err := b.cafe.Carts.ApplyVoucher(ctx, sessionFor(userID), code)
	if err != nil {
		b.send(chatID, "⚠️ "+err.Error())
		return
	}
	b.send(chatID, fmt.Sprintf("🎉 %s applied. You save %s.", q.VoucherCode, services.FormatPeso(q.Discount)))
	b.sendCard(chatID, services.BuildCartCard(q))
}

func (b *Bot) sendServiceMode(ctx context.Context, chatID, userID int64) {
	q := b.cafe.Carts.Quote(ctx, sessionFor(userID))
	if len(q.Lines) == 0 {
		b.send(chatID, services.ErrMsgEmptyCart)
		return
	}
	b.sendCard(chatID, services.BuildServiceModeCard(q))
}

func (b *Bot) handleOrders(ctx context.Context, chatID, userID int64) {
	orders := services.SessionHistory(b.cafe.Orders.History(ctx), sessionFor(userID))
	if len(orders) == 0 {
		b.send(chatID, "No orders yet. Type /menu to start one.")
		return
	}
	if len(orders) > recentOrdersLimit {
		orders = orders[:recentOrdersLimit]
	}
	for _, o := range orders {
		var stage *services.StageUpdate
		if u, ok := b.cafe.Tracker.Status(o.ID); ok {
			stage = &u
		}
		b.sendCard(chatID, services.BuildCustomerCard(o, stage, ""))
	}
}

func (b *Bot) handleFavorites(ctx context.Context, chatID, userID int64) {
	names := b.cafe.Favorites.List(ctx, sessionFor(userID))
	var items []models.MenuItem
	for _, n := range names {
		if it, ok := b.cafe.Catalog.FindItemByName(n); ok {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		b.send(chatID, "No favorites yet. Tap ⭐ next to an item to save it.")
		return
	}
	b.sendWithInline(chatID, "⭐ Your favorites", itemsKeyboard(items))
}

// lineName resolves an item id to the name its cart line is keyed by.
func lineName(cart services.Cart, itemID string) (string, int, bool) {
	for _, l := range cart.Lines {
		if l.Item.ID == itemID {
			return l.Item.Name, l.Quantity, true
		}
	}
	return "", 0, false
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	data := cq.Data
	chatID, userID := cq.Message.Chat.ID, cq.From.ID
	session := sessionFor(userID)

	switch {
	case data == cbMenu:
		b.answer(cq.ID, "")
		b.sendSections(chatID)
	case data == cbCart:
		b.answer(cq.ID, "")
		b.sendCart(ctx, chatID, userID)
	case strings.HasPrefix(data, cbSection):
		idx, err := strconv.Atoi(strings.TrimPrefix(data, cbSection))
		if err != nil {
			idx = -1
		}
		b.answer(cq.ID, "")
		b.sendSection(chatID, idx)
	case strings.HasPrefix(data, cbAdd):
		cart, err := b.cafe.AddToCart(ctx, session, strings.TrimPrefix(data, cbAdd), 1)
		if err != nil {
			b.answer(cq.ID, userMessage(err))
			return
		}
		b.answer(cq.ID, fmt.Sprintf("Added. %d in your order.", cart.TotalItems()))
	case strings.HasPrefix(data, cbFavorite):
		item, _, ok := b.cafe.Catalog.FindItem(strings.TrimPrefix(data, cbFavorite))
		if !ok {
			b.answer(cq.ID, userMessage(services.ErrNotFound))
			return
		}
		if b.cafe.Favorites.Toggle(ctx, session, item.Name) {
			b.answer(cq.ID, "⭐ Saved "+item.Name)
		} else {
			b.answer(cq.ID, "Removed "+item.Name)
		}
	case strings.HasPrefix(data, services.CbCartInc), strings.HasPrefix(data, services.CbCartDec), strings.HasPrefix(data, services.CbCartRemove):
		b.handleCartLine(ctx, cq, session)
	case data == services.CbCartClear:
		b.cafe.Carts.Clear(ctx, session)
		b.answer(cq.ID, "Order cleared")
		b.refreshCart(ctx, cq, session)
	case data == services.CbVoucherRemove:
		b.cafe.Carts.RemoveVoucher(ctx, session)
		b.answer(cq.ID, "Voucher removed")
		b.refreshCart(ctx, cq, session)
	case data == services.CbCheckout:
		b.answer(cq.ID, "")
		b.sendServiceMode(ctx, chatID, userID)
	case strings.HasPrefix(data, services.CbServiceMode):
		mode := models.ServiceMode(strings.TrimPrefix(data, services.CbServiceMode))
		b.answer(cq.ID, "🦉 Sending your order...")
		b.checkout(ctx, chatID, session, mode)
	case strings.HasPrefix(data, services.CbReorder):
		b.handleReorder(ctx, cq, session, strings.TrimPrefix(data, services.CbReorder))
	case strings.HasPrefix(data, services.CbTrack):
		b.handleTrack(ctx, cq, session, strings.TrimPrefix(data, services.CbTrack))
	default:
		b.answer(cq.ID, "")
	}
}

func (b *Bot) handleCartLine(ctx context.Context, cq *tgbotapi.CallbackQuery, session string) {
	prefix, id, _ := strings.Cut(cq.Data, ":")
	prefix += ":"
	name, qty, ok := lineName(b.cafe.Carts.Get(ctx, session), id)
	if !ok {
		b.answer(cq.ID, "")
		b.refreshCart(ctx, cq, session)
		return
	}
	switch prefix {
	case services.CbCartInc:
		b.cafe.Carts.UpdateQuantity(ctx, session, name, qty+1)
	case services.CbCartDec:
		b.cafe.Carts.UpdateQuantity(ctx, session, name, qty-1)
	case services.CbCartRemove:
		b.cafe.Carts.RemoveItem(ctx, session, name)
	}
	b.answer(cq.ID, "")
	b.refreshCart(ctx, cq, session)
}

// refreshCart redraws the cart card the callback came from.
func (b *Bot) refreshCart(ctx context.Context, cq *tgbotapi.CallbackQuery, session string) {
	card := services.BuildCartCard(b.cafe.Carts.Quote(ctx, session))
	if err := b.editCard(cq.Message.Chat.ID, cq.Message.MessageID, card); err != nil {
		b.log.Debug("edit cart card", zap.Error(err))
		b.sendCard(cq.Message.Chat.ID, card)
	}
}

// checkout places the order in the background, then sends the receipt
// and follows the tracker.
func (b *Bot) checkout(ctx context.Context, chatID int64, session string, mode models.ServiceMode) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		order, err := b.cafe.Checkout.PlaceOrder(ctx, services.CheckoutRequest{Session: session, ServiceMode: mode})
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				b.send(chatID, "⚠️ "+userMessage(err))
			}
			return
		}
		b.send(chatID, fmt.Sprintf("✨ Order placed! Your queue number is #%d.", order.QueueNumber))
		b.sendReceipt(chatID, order)
		b.followOrder(ctx, chatID, order)
	}()
}

func (b *Bot) sendReceipt(chatID int64, order models.Order) {
	pdf, err := services.RenderReceipt(order, b.cafe.Catalog.Settings().CafeName)
	if err != nil {
		b.log.Warn("render receipt", zap.String("order", order.ID), zap.Error(err))
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: services.ReceiptFileName(order), Bytes: pdf})
	if _, err := b.api.Send(doc); err != nil {
		b.log.Warn("send receipt", zap.String("order", order.ID), zap.Error(err))
	}
}

// ownOrder finds orderID in the session's own history.
func (b *Bot) ownOrder(ctx context.Context, session, orderID string) (models.Order, bool) {
	o, ok := b.cafe.Orders.Find(ctx, orderID)
	if !ok || o.Session != session {
		return models.Order{}, false
	}
	return o, true
}

func (b *Bot) handleReorder(ctx context.Context, cq *tgbotapi.CallbackQuery, session, orderID string) {
	if _, ok := b.ownOrder(ctx, session, orderID); !ok {
		b.answer(cq.ID, "Order not found")
		return
	}
	cart, err := b.cafe.Checkout.Reorder(ctx, session, orderID)
	if err != nil {
		b.answer(cq.ID, userMessage(err))
		return
	}
	b.answer(cq.ID, fmt.Sprintf("Added again. %d in your order.", cart.TotalItems()))
	b.sendCart(ctx, cq.Message.Chat.ID, cq.From.ID)
}

func (b *Bot) handleTrack(ctx context.Context, cq *tgbotapi.CallbackQuery, session, orderID string) {
	o, ok := b.ownOrder(ctx, session, orderID)
	if !ok {
		b.answer(cq.ID, "Order not found")
		return
	}
	var stage *services.StageUpdate
	if u, ok := b.cafe.Tracker.Status(orderID); ok {
		stage = &u
	}
	b.answer(cq.ID, "")
	if err := b.editCard(cq.Message.Chat.ID, cq.Message.MessageID, services.BuildCustomerCard(o, stage, "")); err != nil {
		b.log.Debug("edit order card", zap.Error(err))
	}
}
