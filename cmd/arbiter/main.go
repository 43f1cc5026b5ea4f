// Package main provides the arbiter binary: the GM-authoritative
// resolution server that applies battle wear, tracks quarrel sessions,
// and fans events out to connected clients over websockets.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rkellett/quarrel/internal/arbiter"
	"github.com/rkellett/quarrel/internal/config"
	"github.com/rkellett/quarrel/internal/game/actor"
	"github.com/rkellett/quarrel/internal/game/check"
	"github.com/rkellett/quarrel/internal/game/conditions"
	"github.com/rkellett/quarrel/internal/game/dice"
	"github.com/rkellett/quarrel/internal/game/quarrel"
	"github.com/rkellett/quarrel/internal/host"
	"github.com/rkellett/quarrel/internal/observability"
	"github.com/rkellett/quarrel/internal/server"
	"github.com/rkellett/quarrel/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)

	logger.Info("starting arbiter",
		zap.String("addr", cfg.Arbiter.Addr()),
		zap.Duration("wear_timeout", cfg.Quarrel.WearTimeout),
	)

	// Condition definitions: embedded defaults, optionally overlaid from
	// a directory of YAML files.
	registry := conditions.DefaultRegistry()
	if cfg.Quarrel.ConditionsDir != "" {
		registry, err = conditions.LoadDirectory(cfg.Quarrel.ConditionsDir)
		if err != nil {
			logger.Fatal("loading condition definitions", zap.Error(err))
		}
	}
	logger.Info("condition definitions loaded", zap.Int("count", len(registry.All())))

	// Connect to PostgreSQL for actor persistence.
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	actors := postgres.NewActorRepository(pool.DB())

	hub := arbiter.NewHub(logger)
	arbiter.NewWearHandler(actors, hub, logger).Start()

	sessions := quarrel.NewManager(cfg.Quarrel.SessionGrace, logger)
	poster := arbiter.NewCardPoster(host.NewMemoryChat(), host.PassthroughRenderer{}, cfg.Arbiter.GMUsers, logger)

	// Threshold crossings open a single-sided quarrel for the actor and
	// inflict the granted item on failure.
	tracker := conditions.NewTracker(registry, logger, func(ev conditions.ThresholdEvent) {
		doc, err := actors.Get(ctx, ev.ActorID)
		if err != nil {
			logger.Error("loading actor for threshold quarrel", zap.Error(err))
			return
		}
		a := actor.FromDocument(ev.ActorID, doc)
		party := quarrel.Party{Actor: a}

		target := a.AttributeValue("willpower")
		if sk, ok := a.Skills["resistance"][ev.Skill]; ok && sk != nil {
			target = sk.Value
		}

		q := quarrel.FromThreshold(ev, party, target)
		res := q.Resolve(check.Options{}, roller)
		if res.Grants != "" {
			if _, err := actors.CreateEmbedded(ctx, ev.ActorID, res.Grants, []map[string]any{
				{"source": ev.Condition, "rating": ev.NewValue},
			}); err != nil {
				logger.Error("granting threshold item", zap.Error(err))
			}
		}
		if _, err := poster.Post(ctx, arbiter.ConditionCard(res, party.DisplayName("Attacker"), host.RollPublic, "")); err != nil {
			logger.Error("posting condition card", zap.Error(err))
		}
	})

	svc := arbiter.NewService(sessions, actors, registry, tracker, poster, roller, logger)
	arbiter.Bind(hub, svc, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Health(r.Context(), 2*time.Second); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	httpSrv := &http.Server{
		Addr:    cfg.Arbiter.Addr(),
		Handler: mux,
	}

	reapCtx, stopReaper := context.WithCancel(ctx)

	lc := server.NewLifecycle(logger)
	lc.Add("session-reaper", &server.FuncService{
		StartFn: func() error {
			sessions.Run(reapCtx, cfg.Quarrel.ReapInterval)
			return nil
		},
		StopFn: stopReaper,
	})
	lc.Add("http", &server.FuncService{
		StartFn: func() error {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		StopFn: func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
			hub.Close()
		},
	})
	lc.Add("database", &server.FuncService{
		StartFn: func() error { return nil },
		StopFn:  pool.Close,
	})

	logger.Info("arbiter ready", zap.Duration("startup", time.Since(start)))
	if err := lc.Run(ctx); err != nil {
		logger.Fatal("arbiter terminated", zap.Error(err))
	}
}
