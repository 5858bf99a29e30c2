// jobdash-alerts-service
//
// Job-feed aggregation and alert matching for the dashboard:
//   - pulls postings from the external providers (concurrent, failure-isolated)
//   - normalizes, freshness-filters, caps per source and deduplicates
//   - scores them against each user's alert keywords
//   - persists new listings and matches exactly once (natural-key upserts)
//
// Runs are triggered by POST /alerts/run or by the optional cron sweep.
// Publishes EVENT_NEW_MATCHES to Redis for the Gateway to forward.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jobdash/alerts-service/internal/aggregate"
	"jobdash/alerts-service/internal/config"
	"jobdash/alerts-service/internal/db"
	"jobdash/alerts-service/internal/httpapi"
	"jobdash/alerts-service/internal/runner"
	"jobdash/alerts-service/internal/scheduler"
	"jobdash/alerts-service/internal/search"
	"jobdash/alerts-service/internal/source"
	"jobdash/alerts-service/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[alerts-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[alerts-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[alerts-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[alerts-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[alerts-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[alerts-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[alerts-service] Redis connected ✓")

	// ── Pipeline wiring ──────────────────────────────────────────────────────
	adapters := []source.Adapter{
		source.NewRemotiveAdapter(),
		source.NewRemoteOKAdapter(),
		source.NewAdzunaAdapter(cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.AdzunaCountry),
		source.NewHackerNewsAdapter(),
		source.NewRedditAdapter(),
	}
	aggregator := aggregate.New(adapters)
	st := store.NewPostgres(pool)
	rn := runner.New(aggregator, st, rdb)
	sv := search.NewService(aggregator, search.NewCache(search.DefaultTTL))

	// ── Optional cron sweep ──────────────────────────────────────────────────
	if cfg.FetchIntervalHours > 0 {
		sched := scheduler.New(st, rn, cfg.FetchIntervalHours)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("[alerts-service] Scheduler: %v", err)
		}
		defer sched.Stop()
	} else {
		log.Println("[alerts-service] FETCH_INTERVAL_HOURS not set — cron sweep disabled")
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := httpapi.NewHandler(st, rn, sv)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // a run waits on provider fan-out
	}

	go func() {
		log.Printf("[alerts-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[alerts-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[alerts-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[alerts-service] Shutdown error: %v", err)
	}
	log.Println("[alerts-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "alerts-service",
		"version": version,
	})
}
