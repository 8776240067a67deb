// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/lucasbarros/cardclash/internal/auth"
	"github.com/lucasbarros/cardclash/internal/cache"
	"github.com/lucasbarros/cardclash/internal/config"
	"github.com/lucasbarros/cardclash/internal/database"
	"github.com/lucasbarros/cardclash/internal/engine"
	"github.com/lucasbarros/cardclash/internal/handlers"
	"github.com/lucasbarros/cardclash/internal/middleware"
	"github.com/lucasbarros/cardclash/internal/models"
	"github.com/lucasbarros/cardclash/internal/monitor"
	"github.com/lucasbarros/cardclash/internal/notifier"
)

func main() {
	resetCards := flag.Bool("reset-cards", false, "drop and reseed the card catalog on startup")
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Load()
	auth.Init()

	if err := database.ConnectDB(); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer database.DB.Close()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}
	if err := database.SeedCards(ctx, *resetCards); err != nil {
		log.Fatalf("card seed failed: %v", err)
	}

	if cfg.Redis.Addr != "" {
		if err := cache.ConnectRedis(cfg.Redis); err != nil {
			// Move records are best effort; the game runs without them.
			logger.Warnf("redis unavailable, move records disabled: %v", err)
		}
	}

	store := database.NewMatchStore(database.DB)
	ledger := notifier.New(cfg.Ledger)
	e := engine.New(store, ledger, cfg.Game.HandSize, cfg.Game.MaxRounds)

	hub := handlers.NewMatchEventHub()
	e.OnRoundResolved = func(matchID uuid.UUID, res engine.MoveResult) {
		hub.Publish(matchID, handlers.RoundResolvedEvent(res))
	}
	e.OnMatchFinished = func(m models.Match) {
		hub.Publish(m.ID, handlers.MatchFinishedEvent(m))
	}

	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	mux.HandleFunc("/health", handlers.HealthHandler)

	// Metrics go on the main mux unless METRICS_ADDR asks for a separate
	// listener.
	if cfg.MetricsAddr != "" {
		go func() {
			mm := http.NewServeMux()
			mm.Handle("/metrics", monitor.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mm); err != nil {
				logger.Errorf("metrics server exited: %v", err)
			}
		}()
	} else {
		mux.Handle("/metrics", monitor.Handler())
	}

	mux.Handle("/cards", logged(http.HandlerFunc(handlers.ListCardsHandler)))
	mux.Handle("/cards/", logged(http.HandlerFunc(handlers.CardDetailHandler)))

	mux.Handle("/matches", logged(handlers.MatchesHandler(e)))
	mux.Handle("/matches/ws/", http.HandlerFunc(handlers.MatchWSHandler(logger, hub, e)))
	mux.Handle("/matches/", logged(handlers.MatchItemHandler(e)))

	addr := ":" + cfg.Port
	logger.Infof("match engine listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
