package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"file-appender/internal/app"
	"file-appender/internal/config"
	"file-appender/internal/scheduler"
	"file-appender/internal/server"
	"file-appender/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ failed to start: %v", err)
	}
	defer a.Close()

	sched := scheduler.New(a.Runner, cfg.HealthCheckSchedule)
	if err := sched.Start(); err != nil {
		log.Fatalf("❌ failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	srv := server.New(cfg.HTTPAddr, a.Runner)
	srv.Start()

	if cfg.TelegramBotToken != "" {
		if cfg.TelegramAgentID == "" {
			log.Printf("⚠️ TELEGRAM_AGENT_ID is empty, Telegram source disabled")
		} else {
			bot, err := telegram.New(cfg.TelegramBotToken, a.Runner, cfg.TelegramAgentID, cfg.AllowedUsers)
			if err != nil {
				log.Fatalf("failed to create bot: %v", err)
			}
			go bot.Start(ctx)
		}
	}

	<-ctx.Done()
	log.Println("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ HTTP shutdown: %v", err)
	}
}
