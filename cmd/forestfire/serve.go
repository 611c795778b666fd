package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"forest-ca/internal/core"
	"forest-ca/internal/sims/forestfire"
	"forest-ca/internal/transport/websocket"
	pcore "forest-ca/pkg/core"
)

func serveCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{Name: "addr", Usage: "HTTP listen address"},
		&cli.IntFlag{Name: "runs", Usage: "stop after this many runs, 0 = forever"},
	)
	return &cli.Command{
		Name:   "serve",
		Usage:  "stream simulations to websocket viewers on /ws",
		Flags:  flags,
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("addr") {
		cfg.Server.BindAddress = cmd.String("addr")
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/config", configHandler(cfg.Simulation, log))

	srv := &http.Server{
		Addr:              cfg.Server.BindAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	log.Info("streaming", zap.String("addr", "ws://"+cfg.Server.BindAddress+"/ws"))

	runErr := streamRuns(ctx, cfg.Simulation, cfg.Server.TPS, cmd.Int("runs"), hub, log)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// configHandler serves the simulation parameters of the stream as JSON.
func configHandler(sim forestfire.Config, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(sim); err != nil {
			log.Warn("encode config", zap.Error(err))
		}
	}
}

// streamRuns plays back-to-back runs with consecutive seeds, publishing every
// frame and a summary when each run finishes.
func streamRuns(ctx context.Context, base forestfire.Config, tps, runs int, hub *websocket.Hub, log *zap.Logger) error {
	pacer := core.NewFixedStep(tps)
	pace := func(forestfire.Frame) error { return pacer.Wait(ctx) }

	for n := 0; runs == 0 || n < runs; n++ {
		sim := base
		sim.Seed = base.Seed + int64(n)
		d, err := forestfire.NewDriver(sim, pcore.NewRNG(sim.Seed), log)
		if err != nil {
			return err
		}
		log.Info("run started", zap.Int("run", n), zap.Int64("seed", sim.Seed), zap.Int("viewers", hub.Clients()))
		if err := d.Run(ctx, hub.Observer(), pace); err != nil {
			return err
		}
		series := d.Series()
		hub.Publish(websocket.FinishedMessage(series))
		peak, at := series.Peak()
		log.Info("run finished", zap.Int("run", n), zap.Int("peak_burning", peak), zap.Int("peak_step", at))
	}
	return nil
}
