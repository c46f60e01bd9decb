package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-pushbridge/internal/app"
	"github.com/coreman2200/funtimes-pushbridge/internal/config"
	"github.com/coreman2200/funtimes-pushbridge/internal/diagnostics"
	"github.com/coreman2200/funtimes-pushbridge/internal/push2"
	"github.com/coreman2200/funtimes-pushbridge/internal/style"
	"github.com/coreman2200/funtimes-pushbridge/internal/ws"
)

func main() {
	// ---- Flags (config.yaml overrides unless the flag is given) ----
	var (
		configPath = flag.String("config", "pushbridge.yaml", "path to the YAML config")
		port       = flag.Int("port", 7000, "UDP port for display messages")
		addr       = flag.String("addr", "", "HTTP preview address, e.g. :8080 (empty uses config)")
		refresh    = flag.Int("refresh", 60, "display refresh rate in Hz")
		noUSB      = flag.Bool("no-usb", false, "render without a Push 2 attached")
		logLevel   = flag.String("log-level", "", "zerolog level (debug, info, warn, error)")
	)
	flag.Parse()
	given := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { given[f.Name] = true })

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info().Str("path", *configPath).Msg("no config file; using defaults")
	case err != nil:
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}

	// ---- Effective params ----
	if given["port"] {
		cfg.Port = *port
	}
	if given["refresh"] {
		cfg.RefreshHz = *refresh
	}
	if given["log-level"] {
		cfg.LogLevel = *logLevel
	}
	if *noUSB {
		cfg.USB.Disabled = true
	}
	if *addr != "" {
		cfg.Preview.Enabled = true
		cfg.Preview.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid settings")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}
	st, err := cfg.ResolvedStyle()
	if err != nil {
		log.Warn().Err(err).Msg("bad style; using defaults")
		st = style.Default()
	}

	// ---- Pipeline ----
	journal := diagnostics.NewJournal(log.Logger, 256)
	opts := app.Options{
		Refresh:   physic.Frequency(cfg.RefreshHz) * physic.Hertz,
		Reconnect: time.Duration(cfg.USB.ReconnectS) * time.Second,
		Style:     st,
	}
	if !cfg.USB.Disabled {
		opts.Opener = push2.NewUSBOpener(time.Duration(cfg.USB.TimeoutMs) * time.Millisecond)
	}
	core := app.NewCore(opts, journal)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := core.Start(ctx, cfg.Port); err != nil {
		log.Error().Err(err).Int("port", cfg.Port).Msg("UDP listener failed; change the port over /control")
	}

	// ---- HTTP preview ----
	var srv *http.Server
	if cfg.Preview.Enabled {
		state := ws.NewState(core, journal, cfg.Preview.FPS, cfg.Preview.Scale)
		state.ConfigPath = *configPath
		state.Config = cfg
		srv = &http.Server{
			Addr:         cfg.Preview.Addr,
			Handler:      ws.WithCORS(state.Routes()),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go state.RunPreviewLoop(ctx)
		go func() {
			log.Info().Str("addr", cfg.Preview.Addr).Msg("HTTP server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("http server stopped")
			}
		}()
	}

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	if srv != nil {
		_ = srv.Close()
	}
	_ = core.Close()
	cancel()
}
