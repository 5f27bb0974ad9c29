package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kira8ke/GloHub/internal/config"
	"github.com/kira8ke/GloHub/internal/db"
	"github.com/kira8ke/GloHub/internal/game"
	"github.com/kira8ke/GloHub/internal/hub"
	"github.com/kira8ke/GloHub/internal/logging"
	"github.com/kira8ke/GloHub/internal/server"
)

func serve(ctx context.Context, opts *flags, cfg config.Config) error {
	level := cfg.LogLevel
	if opts.verbose {
		level = "debug"
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	logging.Setup(level, cfg.LogFormat)

	var (
		store  game.Gateway    = game.NewMemoryStore()
		words  game.WordSource = game.DefaultWords()
		pinger server.Pinger
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg)
		if err != nil {
			return err
		}
		if opts.autoMigrate {
			if err := db.Migrate(conn); err != nil {
				return err
			}
		}
		repo := db.NewRepository(conn)
		store, words, pinger = repo, repo, repo
		log.Info().Msg("using postgres store")
	} else {
		log.Warn().Msg("DATABASE_URL is not set; games are kept in memory only")
	}

	h := hub.New(cfg.BroadcastWriteTimeout)
	coord := game.NewCoordinator(store, h, game.Options{
		PlayDuration:      cfg.PlayDuration,
		ActionCooldown:    cfg.ActionCooldown,
		TimerTick:         cfg.TimerTick,
		FinishAfterTurns:  cfg.FinishAfterTurns,
		CorrectPoints:     cfg.CorrectPoints,
		WrongPoints:       cfg.WrongPoints,
		JoinCodeAttempts:  cfg.JoinCodeAttempts,
		FinishedRetention: cfg.FinishedRetention,
		Words:             words,
	})
	defer coord.Close()

	go server.RunReconciler(ctx, coord, cfg.ReconcileInterval)

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(opts.bind, strconv.Itoa(opts.port)),
		Handler:           server.New(coord, h, pinger, cfg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("charades server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
