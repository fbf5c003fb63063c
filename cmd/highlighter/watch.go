package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go-openclaw-highlighter/internal/browser"
	"go-openclaw-highlighter/internal/config"
	"go-openclaw-highlighter/internal/engine"
	"go-openclaw-highlighter/internal/keywords"
	"go-openclaw-highlighter/internal/telegram"

	"github.com/playwright-community/playwright-go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [url]",
	Short: "Keep a live job search page highlighted",
	Long: `Opens the page in Chromium, mirrors its DOM and keeps cards and the job
description highlighted while the page changes. Edits to the keyword file and
/keywords commands sent to the Telegram bot are applied right away.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Int("scroll", 0, "scroll the card list this many times to load more cards")
	watchCmd.Flags().Bool("screenshot", false, "save a screenshot when stopping")
	watchCmd.Flags().Duration("duration", 0, "stop after this long (default: until interrupted)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	url := cfg.Browser.URL
	if len(args) == 1 {
		url = args[0]
	}
	if url == "" {
		return fmt.Errorf("no url given and browser.url is empty")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if d, _ := cmd.Flags().GetDuration("duration"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	//keyword file, reloaded on external edits
	store, err := keywords.OpenFile(cfg.KeywordsPath)
	if err != nil {
		return err
	}
	if err := store.Watch(ctx); err != nil {
		return err
	}
	defer store.Close()

	//init playwright manager
	pwManager, err := browser.NewPlaywright(cfg.Browser.Headless)
	if err != nil {
		return err
	}
	defer pwManager.Close()

	var cookies []playwright.OptionalCookie
	if cfg.Browser.CookiesPath != "" {
		cookies, err = browser.LoadCookies(cfg.Browser.CookiesPath)
		if err != nil {
			log.Printf("⚠️ Could not load cookies: %v. Continuing.", err)
		} else {
			log.Printf("🍪 Loaded %d cookies", len(cookies))
		}
	}

	browserCtx, err := pwManager.NewContext(cookies)
	if err != nil {
		return err
	}
	defer browserCtx.Close()

	pg, err := browserCtx.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create new page: %w", err)
	}

	ecfg, err := cfg.Engine()
	if err != nil {
		return err
	}
	mirror, err := browser.NewMirror(pg, browser.MirrorOptions{
		Description:  ecfg.Locators.Description,
		Card:         ecfg.Locators.Card,
		SnapshotPath: cfg.Browser.SnapshotPath,
	})
	if err != nil {
		return err
	}
	if err := mirror.Attach(); err != nil {
		return err
	}
	ecfg.AfterPass = mirror.PassDone

	log.Printf("🌐 Opening %s", url)
	if _, err := pg.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	if err := mirror.Sync(); err != nil {
		return err
	}

	hl := engine.New(mirror.Document(), store, ecfg)
	hl.Start(ctx)
	defer hl.Stop()

	mirrorDone := make(chan struct{})
	go func() {
		defer close(mirrorDone)
		if err := mirror.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("⚠️ Mirror stopped: %v", err)
		}
	}()

	if cfg.TelegramEnabled() {
		startBot(ctx, cfg, hl, store)
	}

	if steps, _ := cmd.Flags().GetInt("scroll"); steps > 0 {
		n, err := browser.ScrollCards(ctx, pg, ecfg.Locators.Card, steps)
		if err != nil && ctx.Err() == nil {
			log.Printf("⚠️ Scrolling stopped: %v", err)
		}
		log.Printf("📜 %d cards loaded", n)
	}

	log.Println("✅ Watching. Press Ctrl+C to stop.")
	<-ctx.Done()
	<-mirrorDone

	if shot, _ := cmd.Flags().GetBool("screenshot"); shot {
		//one last publish so the screenshot shows the current state
		if err := mirror.Publish(); err != nil {
			log.Printf("⚠️ %v", err)
		}
		shooter, err := browser.NewScreenshotter(cfg.Browser.ScreenshotDir)
		if err != nil {
			return err
		}
		if _, err := shooter.Capture(pg, "highlighted", "Capturing highlighted page"); err != nil {
			log.Printf("⚠️ %v", err)
		}
	}
	return nil
}

func startBot(ctx context.Context, cfg *config.Config, hl *engine.Engine, store *keywords.File) {
	handler := telegram.NewHandler(hl, store, func() string {
		return statusLine(hl)
	})
	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID, handler)
	if err != nil {
		log.Printf("⚠️ Telegram bot disabled: %v", err)
		return
	}
	go bot.Run(ctx)
}

func statusLine(hl *engine.Engine) string {
	set := hl.Keywords()
	var parts []string
	for _, target := range []string{engine.TargetCards, engine.TargetDescription} {
		if m := hl.Monitor(target); m != nil {
			parts = append(parts, fmt.Sprintf("%s %s (%d passes)", target, m.State(), m.Passes()))
		}
	}
	return fmt.Sprintf("%d keywords [%s] at %s; %s",
		len(set), strings.Join(set, ", "), time.Now().Format("15:04:05"), strings.Join(parts, ", "))
}
