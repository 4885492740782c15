package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/statslite/go-statslite/internal/config"
	"github.com/statslite/go-statslite/internal/health"
	"github.com/statslite/go-statslite/internal/host"
	"github.com/statslite/go-statslite/internal/identity"
	"github.com/statslite/go-statslite/internal/logger"
	"github.com/statslite/go-statslite/internal/reporter"
	"github.com/statslite/go-statslite/internal/scheduler"
	"github.com/statslite/go-statslite/internal/submitter"

	"github.com/rs/zerolog/log"
)

// healthSubmitter feeds submission results into the health endpoint.
type healthSubmitter struct {
	inner  reporter.Submitter
	health *health.Server
}

func (h *healthSubmitter) Submit(guid string, ping bool) error {
	err := h.inner.Submit(guid, ping)
	h.health.SetSubmitHealthy(err == nil)
	return err
}

func main() {

	// Load config
	path := "config.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Init logger
	logger.Init(cfg.Logging)
	log.Info().Str("agent", cfg.Agent.Name).Msg("starting statslite agent")

	// OS Signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	//------------------------------------------
	// START HEALTH SERVER
	//------------------------------------------
	healthSrv := health.New(cfg.Agent.HealthPort)

	go func() {
		if err := healthSrv.Serve(); err != nil {
			log.Error().Err(err).Msg("health server stopped")
		}
	}()
	log.Info().Msg("health endpoint running on 127.0.0.1:" + cfg.Agent.HealthPort + "/health")

	//------------------------------------------
	// START REPORTER
	//------------------------------------------
	adapter := &host.Static{
		Name:     cfg.Agent.Name,
		Version:  cfg.Agent.Version,
		Host:     cfg.Agent.HostVersion,
		AuthMode: cfg.Agent.AuthMode,
	}

	store := identity.NewStore(cfg.Agent.SettingsFile)
	sub := submitter.New(cfg.Agent.ReportURL, adapter, log.Logger)
	rep := reporter.New(
		store,
		&healthSubmitter{inner: sub, health: healthSrv},
		&scheduler.Ticker{},
		cfg.Agent.Interval(),
		log.Logger,
	)

	if rep.Start() {
		healthSrv.SetRunning(true)
	} else {
		log.Info().Msg("telemetry reporting not started (opted out or settings unreadable)")
	}

	//------------------------------------------
	// WAIT FOR SHUTDOWN SIGNAL
	//------------------------------------------
	sig := <-sigChan
	log.Warn().Str("signal", sig.String()).Msg("shutdown signal received")

	//------------------------------------------
	// SHUTDOWN SEQUENCE
	//------------------------------------------
	if rep.Stop() {
		log.Info().Msg("reporter stopped")
	}
	healthSrv.SetRunning(false)

	log.Info().Msg("agent stopped cleanly")
}
