package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sossh/Work-Alone/internal/config"
	"github.com/sossh/Work-Alone/internal/database"
	"github.com/sossh/Work-Alone/internal/logging"
	"github.com/sossh/Work-Alone/internal/monitor"
	"github.com/sossh/Work-Alone/internal/server"
	"github.com/sossh/Work-Alone/internal/sms"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var notifier monitor.Notifier
	if cfg.TwilioConfigured() {
		notifier = sms.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber,
			logger.With("component", "twilio"))
	} else {
		logger.Warn("twilio credentials not set, using console notifier")
		notifier = sms.NewConsole(logger.With("component", "console"))
	}

	srv := server.New(db, notifier, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.Scheduler().Start(ctx)
	srv.BackupManager().Start(ctx)

	// Pending timers do not survive a restart; re-derive the chain from
	// the sessions that are still active.
	if err := srv.Monitor().Rearm(); err != nil {
		log.Fatalf("failed to re-arm active sessions: %v", err)
	}

	// Background cleanup goroutine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Work-Alone running at http://localhost:%s\n", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}

	srv.BackupManager().Stop()
	srv.Scheduler().Stop()
}
