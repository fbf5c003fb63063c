package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-openclaw-highlighter/internal/config"
	"go-openclaw-highlighter/internal/engine"
	"go-openclaw-highlighter/internal/keywords"
	"go-openclaw-highlighter/internal/page"
	"go-openclaw-highlighter/internal/telegram"
)

func main() {
	cfgPath := os.Getenv("JOBHL_CONFIG")
	if cfgPath == "" {
		cfgPath = config.DefaultPath
	}

	//load config
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	ecfg, err := cfg.Engine()
	if err != nil {
		log.Fatalf("❌ Invalid locators: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := keywords.OpenFile(cfg.KeywordsPath)
	if err != nil {
		log.Fatalf("❌ Failed to open keyword file: %v", err)
	}
	if err := store.Watch(ctx); err != nil {
		log.Printf("⚠️ Keyword file will not be watched: %v", err)
	}
	defer store.Close()

	//session page, filled through PUT /page
	doc, err := page.ParseString("<html><head></head><body></body></html>")
	if err != nil {
		log.Fatalf("❌ Failed to create session page: %v", err)
	}
	hl := engine.New(doc, store, ecfg)
	hl.Start(ctx)
	defer hl.Stop()

	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID, telegram.NewHandler(hl, store, nil))
		if err != nil {
			log.Printf("⚠️ Telegram bot disabled: %v", err)
		} else {
			go bot.Run(ctx)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(&server{hl: hl, doc: doc, store: store, cfg: ecfg}),
	}
	go func() {
		log.Printf("🚀 Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}
}
