package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lofarb/fund-monitor/internal/api"
	"github.com/lofarb/fund-monitor/internal/calendar"
	"github.com/lofarb/fund-monitor/internal/config"
	"github.com/lofarb/fund-monitor/internal/database"
	"github.com/lofarb/fund-monitor/internal/kafka"
	"github.com/lofarb/fund-monitor/internal/market"
	"github.com/lofarb/fund-monitor/internal/monitor"
	"github.com/lofarb/fund-monitor/internal/notify"
	"github.com/lofarb/fund-monitor/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("fund-monitor starting...")

	cfg := config.Load()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(cfg.Monitor.MigrationsPath); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	holidays, err := calendar.LoadHolidayFile(cfg.Monitor.HolidayFile)
	if err != nil {
		log.Fatalf("load holiday calendar: %v", err)
	}
	cal, err := calendar.New(holidays)
	if err != nil {
		log.Fatalf("init trading calendar: %v", err)
	}

	client := market.NewClient(cfg.Market.BaseURL)
	notifier := notify.NewPushPlusNotifier(cfg.Notify.BaseURL, cfg.Notify.Token)

	orch := monitor.NewOrchestrator(cal, client, db, notifier, cfg.Monitor.HoldingSet(), cal.Location())

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		orch.Lock = monitor.NewRedisRunLock(rdb, "fund-monitor:run-lock", 10*time.Minute)
		log.Printf("run lock enabled via redis at %s", cfg.Redis.Addr)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		orch.Publisher = producer
		log.Printf("audit events enabled on topic %s", cfg.Kafka.Topic)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Monitor.SchedulerEnabled {
		sched := scheduler.New(ctx, orch)
		if err := sched.Register(cfg.Monitor.Interval); err != nil {
			log.Fatalf("register scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	} else {
		log.Println("scheduler disabled, manual trigger only")
	}

	handler := api.NewHandler(db, orch, cal.Location())
	srv := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: api.SetupRoutes(handler),
	}

	go func() {
		log.Printf("http server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}

	log.Println("fund-monitor stopped")
}
