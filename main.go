package main

import (
	"olx-profit-bot/bot"
	"olx-profit-bot/config"
	"olx-profit-bot/console"
	"olx-profit-bot/scraper/olx"
	"olx-profit-bot/services"
	"olx-profit-bot/storage"
	"olx-profit-bot/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== OLX Profit Bot starting ===")
	logger.Info("Config — search limit: %d | page size: %d | query log cap: %d | concurrency: %d | rate: %dms",
		cfg.SearchLimit, cfg.AdminPageSize, cfg.MaxSavedQueries, cfg.MaxConcurrency, cfg.RateLimitMs)

	if cfg.TelegramToken == "" {
		logger.Fatal("TELEGRAM_TOKEN is not set")
	}

	queryLog := storage.NewQueryLog(cfg.MaxSavedQueries)
	sessions := storage.NewSessionStore()

	olxClient := olx.New(cfg, logger)
	profit := services.NewProfitService(logger)
	nav := console.New(cfg.AdminUsername, cfg.AdminPageSize, queryLog, sessions, logger)

	b, err := bot.New(cfg, logger, queryLog, sessions, nav, olxClient, profit)
	if err != nil {
		logger.Fatal("Failed to start Telegram bot: %v", err)
	}

	if err := b.Run(); err != nil {
		logger.Fatal("Bot stopped: %v", err)
	}
}
