// Package bot adapts Telegram updates onto the core pipeline: query
// logging, subscription gating, the admin console and the search flow.
package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"olx-profit-bot/config"
	"olx-profit-bot/console"
	"olx-profit-bot/models"
	"olx-profit-bot/scraper/olx"
	"olx-profit-bot/services"
	"olx-profit-bot/storage"
	"olx-profit-bot/utils"
)

const unknownPriceLabel = "Цена не указана"

// Bot is the long-polling Telegram front end.
type Bot struct {
	api    *tgbotapi.BotAPI
	cfg    *config.Config
	logger *utils.Logger
	log    *storage.QueryLog
	subs   *storage.SessionStore
	nav    *console.Navigator
	olx    *olx.Client
	profit *services.ProfitService
}

// New authenticates against the Telegram API and assembles the bot.
func New(cfg *config.Config, logger *utils.Logger, log *storage.QueryLog,
	subs *storage.SessionStore, nav *console.Navigator,
	olxClient *olx.Client, profit *services.ProfitService) (*Bot, error) {

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	return &Bot{
		api:    api,
		cfg:    cfg,
		logger: logger,
		log:    log,
		subs:   subs,
		nav:    nav,
		olx:    olxClient,
		profit: profit,
	}, nil
}

// Run polls for updates until the updates channel closes. Every event is
// handled in its own goroutine; no single failing operation stops the
// service.
func (b *Bot) Run() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("[bot] @%s polling for updates", b.api.Self.UserName)

	for update := range updates {
		update := update
		switch {
		case update.CallbackQuery != nil:
			go b.handleCallback(update.CallbackQuery)
		case update.Message != nil:
			if update.Message.IsCommand() && update.Message.Command() == "start" {
				go b.handleStart(update.Message)
				continue
			}
			go b.handleMessage(update.Message)
		}
	}
	return nil
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	user := msg.From
	if user == nil {
		return
	}

	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Проверить подписку")),
	}
	if user.UserName == b.cfg.AdminUsername {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("🔐 Admin Panel")))
	}

	b.reply(msg.Chat.ID, "Привет! Я помогу тебе искать объявления на OLX и рассчитывать профит 📊",
		tgbotapi.NewReplyKeyboard(rows...))
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	user := msg.From
	if user == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID
	isAdmin := user.UserName == b.cfg.AdminUsername

	// A pending grant wizard captures the operator's input before the
	// message reaches the query log or the search pipeline.
	if reply, handled := b.nav.HandleText(user.ID, user.UserName, text); handled {
		b.reply(chatID, reply, nil)
		return
	}

	b.log.Append(models.QueryRecord{
		UserID:   user.ID,
		Username: user.UserName,
		Name:     strings.TrimSpace(user.FirstName + " " + user.LastName),
		Text:     text,
		Time:     time.Now(),
	})

	if text == "Проверить подписку" {
		b.reply(chatID, b.subscriptionStatus(user.ID, isAdmin), nil)
		return
	}

	if text == "🔐 Admin Panel" && isAdmin {
		if screen, ok := b.nav.Open(user.ID, user.UserName); ok {
			b.sendScreen(chatID, 0, screen)
		}
		return
	}

	if text == "" {
		b.reply(chatID, "Напиши, что искать на OLX 🙂", nil)
		return
	}

	if !isAdmin && !b.subs.IsActive(user.ID) {
		markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💬 Связаться с админом", "https://t.me/"+b.cfg.AdminUsername),
		))
		b.reply(chatID, "🚫 <b>Подписка неактивна</b>\n\n"+
			"💎 Для использования бота необходима активная подписка.\n"+
			"📞 Свяжитесь с администратором для её активации:", markup)
		return
	}

	b.runSearch(chatID, text)
}

// runSearch drives the whole query → listings → profit flow for one
// inbound search phrase.
func (b *Bot) runSearch(chatID int64, query string) {
	b.reply(chatID, "🔎 Ищу объявления на OLX...", nil)

	// Budget: the search request plus one enrichment fetch per listing.
	budget := time.Duration((b.cfg.SearchLimit+1)*b.cfg.HTTPTimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	items := b.olx.Search(ctx, query, b.cfg.SearchLimit)
	if len(items) == 0 {
		b.reply(chatID, "😔 Объявлений не найдено. Попробуй другой запрос.", nil)
		return
	}

	b.olx.EnrichPrices(ctx, items)

	stats := b.profit.Analyze(items)
	if !stats.Insufficient() {
		b.reply(chatID, fmt.Sprintf("📊 <b>Анализ цен по запросу:</b>\n"+
			"💰 Средняя цена: %s\n"+
			"🟢 Минимальная: %s\n"+
			"🔴 Максимальная: %s\n"+
			"📦 Найдено объявлений: %d",
			services.FormatAmount(stats.Mean, services.DefaultCurrency),
			services.FormatAmount(stats.Min, services.DefaultCurrency),
			services.FormatAmount(stats.Max, services.DefaultCurrency),
			len(items)), nil)
	}

	for _, item := range items {
		var markup any
		if item.URL != "" {
			markup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("🔗 Открыть объявление", item.URL),
			))
		}
		b.reply(chatID, b.listingCard(item, stats), markup)
	}
}

func (b *Bot) listingCard(item models.Listing, stats models.PriceStats) string {
	profitLine := "—"
	if item.PriceValue > 0 && !stats.Insufficient() {
		amount, percent := b.profit.Score(stats, item.PriceValue)
		formatted := services.FormatAmount(amount, services.DefaultCurrency)
		switch services.ClassifyProfit(amount) {
		case services.TierFavorable:
			profitLine = fmt.Sprintf("🟢 +%s (+%.1f%%)", formatted, percent)
		case services.TierExpensive:
			profitLine = fmt.Sprintf("🔴 %s (%.1f%%)", formatted, percent)
		default:
			profitLine = fmt.Sprintf("🟡 %s (%.1f%%)", formatted, percent)
		}
	}

	price := item.Price
	if price == "" {
		price = unknownPriceLabel
	}

	return fmt.Sprintf("📌 <b>%s</b>\n"+
		"💰 Цена: <b>%s</b>\n"+
		"💎 Профит: %s\n"+
		"📍 Город: %s\n"+
		"🗓 Дата: %s\n"+
		"📝 %s",
		html.EscapeString(item.Title),
		html.EscapeString(price),
		profitLine,
		html.EscapeString(item.City),
		html.EscapeString(item.Date),
		html.EscapeString(item.Description))
}

func (b *Bot) subscriptionStatus(userID int64, isAdmin bool) string {
	if isAdmin {
		return "✅ Подписка админа всегда активна"
	}
	if b.subs.IsActive(userID) {
		sub, _ := b.subs.Get(userID)
		return fmt.Sprintf("✅ Подписка активна до %s", sub.Until.Format("2006-01-02 15:04"))
	}
	return "❌ Подписка неактивна"
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.From == nil || cb.Message == nil {
		return
	}

	screen, ok := b.nav.HandleCallback(cb.From.ID, cb.From.UserName, cb.Data)
	if !ok {
		b.answerCallback(cb.ID, "🚫 Нет доступа")
		return
	}
	b.answerCallback(cb.ID, "")

	chatID := cb.Message.Chat.ID
	if screen.Delete {
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, cb.Message.MessageID)); err != nil {
			b.logger.Error("[bot] delete console message: %v", err)
		}
		return
	}
	b.sendScreen(chatID, cb.Message.MessageID, screen)
}

// sendScreen delivers a console screen, either as a new message or as an
// in-place redraw of the existing console message.
func (b *Bot) sendScreen(chatID int64, editMessageID int, screen console.Screen) {
	markup := inlineMarkup(screen.Keyboard)

	if screen.Edit && editMessageID != 0 {
		var edit tgbotapi.EditMessageTextConfig
		if markup != nil {
			edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, editMessageID, screen.Text, *markup)
		} else {
			edit = tgbotapi.NewEditMessageText(chatID, editMessageID, screen.Text)
		}
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(edit); err != nil {
			b.logger.Error("[bot] edit console message: %v", err)
		}
		return
	}

	msg := tgbotapi.NewMessage(chatID, screen.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("[bot] send console message: %v", err)
	}
}

func (b *Bot) reply(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("[bot] send: %v", err)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Error("[bot] answer callback: %v", err)
	}
}

func inlineMarkup(keyboard [][]console.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(keyboard) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			if btn.URL != "" {
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonURL(btn.Label, btn.URL))
			} else {
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
			}
		}
		rows = append(rows, btns)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}
