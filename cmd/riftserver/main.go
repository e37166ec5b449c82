// Command riftserver is the RiftForged authoritative game-server core's
// entrypoint. It wires configuration, logging, metrics, the reliable UDP
// transport, the session registry, the dispatcher, and the simulation loop
// together and runs until an interrupt or terminate signal arrives.
// Grounded on the teacher's core/main.go (banner, config, component
// construction, signal-driven graceful shutdown) rewritten around a
// cobra root command per the retrieval pack's CLI idiom instead of a bare
// main with a hardcoded config literal.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riftforged/gameserver/internal/config"
	"github.com/riftforged/gameserver/internal/dispatch"
	"github.com/riftforged/gameserver/internal/metrics"
	"github.com/riftforged/gameserver/internal/physics"
	"github.com/riftforged/gameserver/internal/session"
	"github.com/riftforged/gameserver/internal/sim"
	"github.com/riftforged/gameserver/internal/transport"
	"github.com/riftforged/gameserver/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "0.1.0"

func main() {
	cfg := config.Default()

	root := &cobra.Command{
		Use:   "riftserver",
		Short: "RiftForged authoritative realtime game server core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}
	config.BindFlags(root, &cfg)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	logger.Banner("RiftForged Game Server", version)

	log, err := logger.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("riftserver: build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	mx := metrics.New()
	go serveMetrics(cfg.MetricsAddr, mx, log)

	registry := session.NewRegistry()
	commands := sim.NewCommandQueue()
	engine := physics.NewReferenceEngine()

	var th *transport.Handler
	d := dispatch.New(registry, commands, nil, log, mx) // transport wired in below

	th, err = transport.New(
		cfg.BindAddr, log, mx,
		d.Handle, d.HandlePeerLost,
		transport.WithStaleTimeout(cfg.StaleTimeout),
		transport.WithReliabilityInterval(cfg.ReliabilityInterval),
		transport.WithMaxPacketRetries(cfg.MaxPacketRetries),
	)
	if err != nil {
		return fmt.Errorf("riftserver: build transport: %w", err)
	}
	d.SetTransport(th)

	loop := sim.NewLoop(sim.Config{
		TickInterval: cfg.TickRate,
		TickRateHz:   cfg.TickRateHz(),
		WelcomeText:  cfg.WelcomeText,
	}, registry, engine, commands, th, log, mx, cfg.CombatRNGSeed)

	log.Info("riftserver: starting",
		zap.String("bind_addr", cfg.BindAddr),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.Duration("tick_rate", cfg.TickRate),
		zap.Int("max_packet_retries", cfg.MaxPacketRetries),
	)

	th.Start()
	loop.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Warn("riftserver: received shutdown signal", zap.String("signal", sig.String()))

	loop.Stop()
	if err := th.Stop(); err != nil {
		log.Error("riftserver: error closing transport", zap.Error(err))
	}
	log.Info("riftserver: stopped")
	return nil
}

func serveMetrics(addr string, mx *metrics.Collector, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", mx.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("riftserver: metrics server exited", zap.Error(err))
	}
}
