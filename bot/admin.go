package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cafe-storefront/models"
	"cafe-storefront/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// isAdminChat reports whether operator commands may run from chatID.
// Without a configured admin chat any chat may try to log in.
func (b *Bot) isAdminChat(chatID int64) bool {
	return b.adminChatID == 0 || chatID == b.adminChatID
}

func (b *Bot) handleAdminCommand(ctx context.Context, chatID, userID int64, cmd, args string) {
	if !b.isAdminChat(chatID) {
		b.send(chatID, "Unknown command.")
		return
	}
	switch cmd {
	case "/login":
		if err := b.cafe.Admin.Login(ctx, args); err != nil {
			b.log.Info("bot admin login rejected", zap.Int64("user", userID))
			b.send(chatID, "❌ "+err.Error())
			return
		}
		b.send(chatID, "✅ Logged in. Commands: /stats [YYYY-MM-DD], /export, /clear_history, /expense AMOUNT CATEGORY DESCRIPTION, /logout")
		return
	case "/logout":
		b.cafe.Admin.Logout(ctx)
		b.send(chatID, "👋 Logged out.")
		return
	}

	if !b.cafe.Admin.Authenticated(ctx) {
		b.send(chatID, "🔒 Admin login required. Use /login PASSWORD")
		return
	}
	switch cmd {
	case "/stats":
		b.handleStats(ctx, chatID, args)
	case "/export":
		b.handleExport(chatID)
	case "/clear_history":
		b.cafe.Orders.ClearHistory(ctx)
		b.send(chatID, "🧹 Order history cleared. Queue numbers start again at #1.")
	case "/expense":
		b.handleExpense(ctx, chatID, args)
	}
}

func (b *Bot) handleStats(ctx context.Context, chatID int64, date string) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		b.send(chatID, "Usage: /stats YYYY-MM-DD")
		return
	}
	st := services.DailyStats(b.cafe.Orders.History(ctx), date)
	report := b.cafe.Report(ctx, services.DefaultProfitInput)
	b.send(chatID, formatStats(st, report))
}

func formatStats(st models.DailyStats, r services.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s\n", st.Date)
	fmt.Fprintf(&sb, "Orders: %d (dine-in %d, take-out %d)\n", st.OrdersCount, st.DineInCount, st.TakeOutCount)
	fmt.Fprintf(&sb, "Items sold: %d\n", st.ItemsSold)
	fmt.Fprintf(&sb, "Revenue: %s\n\n", peso(st.Revenue))
	fmt.Fprintf(&sb, "All history: %d orders, %s, avg %s\n", r.Orders.TotalOrders, peso(r.Orders.TotalRevenue), peso(r.Orders.AverageOrderValue))
	fmt.Fprintf(&sb, "Expenses: %s, net %s", peso(r.Expenses.TotalExpenses), peso(r.Expenses.NetProfitAfterExpenses))
	if len(r.TopItems) > 0 {
		sb.WriteString("\n\nTop items:")
		for i, it := range r.TopItems {
			fmt.Fprintf(&sb, "\n%d. %s x%d (%s)", i+1, it.Name, it.Quantity, peso(it.Revenue))
		}
	}
	return sb.String()
}

func (b *Bot) handleExport(chatID int64) {
	raw, err := json.MarshalIndent(b.cafe.Catalog.Export(), "", "  ")
	if err != nil {
		b.log.Error("export config", zap.Error(err))
		b.send(chatID, "⚠️ Export failed.")
		return
	}
	name := services.ExportFileName(b.exportPrefix, time.Now())
	if _, err := b.api.Send(tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: raw})); err != nil {
		b.log.Warn("send export", zap.Error(err))
	}
}

// parseExpense reads "AMOUNT CATEGORY DESCRIPTION...".
func parseExpense(args string) (services.ExpenseForm, bool) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return services.ExpenseForm{}, false
	}
	amount, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return services.ExpenseForm{}, false
	}
	return services.ExpenseForm{
		Amount:      amount,
		Category:    models.ExpenseCategory(strings.ToLower(fields[1])),
		Description: strings.Join(fields[2:], " "),
	}, true
}

func (b *Bot) handleExpense(ctx context.Context, chatID int64, args string) {
	form, ok := parseExpense(args)
	if !ok {
		b.send(chatID, "Usage: /expense AMOUNT materials|operations DESCRIPTION")
		return
	}
	entry, err := b.cafe.Expenses.Add(ctx, form)
	if err != nil {
		b.send(chatID, "⚠️ "+userMessage(err))
		return
	}
	b.send(chatID, fmt.Sprintf("🧾 Recorded %s for %s (%s).", peso(entry.Amount), entry.Description, entry.Category))
}

func peso(v float64) string { return services.FormatPeso(decimal.NewFromFloat(v)) }
