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

	"github.com/go-co-op/gocron/v2"

	"github.com/rgalloway/tally/internal/config"
	"github.com/rgalloway/tally/internal/database"
	"github.com/rgalloway/tally/internal/email"
	"github.com/rgalloway/tally/internal/logging"
	"github.com/rgalloway/tally/internal/push"
	"github.com/rgalloway/tally/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	emailClient := email.NewClient(cfg.EmailToken, cfg.EmailFrom)
	if !emailClient.Configured() {
		logger.Warn("email delivery not configured, reminders will not send")
	}

	var pushSvc *push.Service
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)
	}

	srv := server.New(db, cfg, emailClient, pushSvc, logger)

	// Hourly reminder batch plus housekeeping for expired sessions and
	// stale rate-limit entries.
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	_, err = sched.NewJob(
		gocron.CronJob("0 * * * *", false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if _, err := srv.Runner().Run(ctx); err != nil {
				logger.Error("reminder batch", "error", err)
			}
		}),
	)
	if err != nil {
		log.Fatalf("schedule reminder job: %v", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() {
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("session cleanup", "error", err)
			} else if n > 0 {
				logger.Info("session cleanup", "deleted", n)
			}
			srv.RateLimiter().Cleanup()
		}),
	)
	if err != nil {
		log.Fatalf("schedule cleanup job: %v", err)
	}
	sched.Start()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Tally running at http://localhost:%s\n", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	if err := sched.Shutdown(); err != nil {
		logger.Error("scheduler shutdown", "error", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
