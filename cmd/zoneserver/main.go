// Command zoneserver wires the config store, logger, metrics, persistence
// adapter, admin hub and freq-manager advisor into one running zone
// process, the way the teacher's root main.go wired server.NewServer into
// an http.Server. It has its own tick loop (zoneengine.Zone.Tick)
// instead of the teacher's physics gameLoop, because this engine's "game
// loop" is a bookkeeping sweep, not a physics step.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gigamon-dev/subspace-go/adminhub"
	"github.com/gigamon-dev/subspace-go/advisor"
	"github.com/gigamon-dev/subspace-go/authgate"
	"github.com/gigamon-dev/subspace-go/chatcore"
	"github.com/gigamon-dev/subspace-go/config"
	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/dispatch"
	"github.com/gigamon-dev/subspace-go/logging"
	"github.com/gigamon-dev/subspace-go/metrics"
	"github.com/gigamon-dev/subspace-go/persist"
	"github.com/gigamon-dev/subspace-go/region"
	"github.com/gigamon-dev/subspace-go/shipfreq"
	"github.com/gigamon-dev/subspace-go/watchdamage"
	"github.com/gigamon-dev/subspace-go/zoneengine"
)

func main() {
	addr := flag.String("addr", ":8080", "address to serve /metrics and /healthz on")
	confPath := flag.String("config", "zone.conf", "path to the global TOML config file")
	arenaDir := flag.String("arena-dir", "arenas", "directory holding per-arena .conf override files")
	logLevel := flag.String("log-level", "info", "zap log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "console", "log output format (console, json)")
	dsn := flag.String("dsn", "", "postgres DSN for the persistence adapter; empty disables persistence")
	freqScript := flag.String("freq-script", "", "path to a Lua freq-manager script; empty disables the advisor")
	obsceneFile := flag.String("obscene-file", "", "path to the obscenity word list; empty disables filtering")
	regionFile := flag.String("region-file", "", "path to a region-list file; empty disables region tracking")
	flag.Parse()

	logger, err := logging.New(logging.Config{Level: *logLevel, Format: *logFormat})
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*confPath, *arenaDir)
	if err != nil {
		logger.ConfigError("failed to load config", "path", *confPath, "error", err.Error())
		os.Exit(1)
	}

	m := metrics.New()

	admin := adminhub.NewHub()
	go admin.Run()

	registry := core.NewRegistry()
	rng := zoneengine.NewSystemRNG(time.Now().UnixNano())
	caps := zoneengine.NewStaticCapabilities()
	transport := &zoneengine.LoggingTransport{Logger: logger}

	var store *persist.Store
	if *dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err = persist.Open(ctx, *dsn, 10, 1, time.Hour)
		cancel()
		if err != nil {
			logger.Resource("persistence adapter unavailable, continuing without it", "error", err.Error())
		} else {
			migCtx, migCancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := persist.RunMigrations(migCtx, store.Pool); err != nil {
				logger.ConfigError("persistence migrations failed", "error", err.Error())
			}
			migCancel()
			defer store.Close()
		}
	}

	chain := advisor.NewDefaultChain()
	if *freqScript != "" {
		script, readErr := os.ReadFile(*freqScript)
		if readErr != nil {
			logger.ConfigError("failed to read freq-manager script, falling back to no-op", "path", *freqScript, "error", readErr.Error())
		} else {
			lfm, lfmErr := advisor.NewLuaFreqManager(string(script), logger.Base())
			if lfmErr != nil {
				logger.ConfigError("freq-manager script failed to load, falling back to no-op", "path", *freqScript, "error", lfmErr.Error())
			} else {
				chain.FreqMgr = lfm
			}
		}
	}

	obscene := chatcore.NewObsceneFilter()
	if *obsceneFile != "" {
		f, openErr := os.Open(*obsceneFile)
		if openErr != nil {
			logger.ConfigError("failed to open obscenity word list", "path", *obsceneFile, "error", openErr.Error())
		} else {
			if _, loadErr := obscene.Load(f); loadErr != nil {
				logger.ConfigError("failed to parse obscenity word list", "path", *obsceneFile, "error", loadErr.Error())
			}
			f.Close()
		}
	}

	callbacks := core.Callbacks{
		OnKill: func(k core.KillEvent) { m.Kills.Inc() },
	}

	rt := &region.Tracker{}
	if *regionFile != "" {
		f, openErr := os.Open(*regionFile)
		if openErr != nil {
			logger.ConfigError("failed to open region list, region tracking disabled", "path", *regionFile, "error", openErr.Error())
		} else {
			cat, loadErr := region.LoadCatalog(f)
			f.Close()
			if loadErr != nil {
				logger.ConfigError("failed to parse region list, region tracking disabled", "path", *regionFile, "error", loadErr.Error())
			} else {
				rt.MapData = cat
				rt.Lookup = cat.RegionsAt
			}
		}
	}

	dispatcher := &dispatch.Dispatcher{
		RNG:          rng,
		Callbacks:    callbacks,
		Transport:    transport,
		Logger:       logger,
		RegionUpdate: func(p *core.Player, tileX, tileY int) (bool, bool) {
			return rt.Update(p, p.Arena, tileX, tileY)
		},
		PositionAdvisor: chain.RunPosition,
		ObservePosition: chain.ObservePosition,
	}

	chat := &chatcore.Core{
		Registry:   registry,
		Transport:  transport,
		Obscene:    obscene,
		Caps:       caps,
		Logger:     logger,
		CmdRewrite: chain.RewriteCommand,
	}

	sf := &shipfreq.Machine{
		Registry:          registry,
		Transport:         transport,
		RNG:               rng,
		Callbacks:         callbacks,
		Logger:            logger,
		FreqManager:       chain.FreqMgr,
		KillAdvisors:      chain.Kill,
		KillGreenAdvisors: chain.KillGreen,
	}

	wd := watchdamage.NewRelay(transport)

	auth := &authgate.Gate{
		Config: cfg,
		Logger: logger,
		Next:   func(ctx context.Context, playerID int) {},
	}

	zone := zoneengine.New(registry, logger, m, admin, dispatcher, chat, sf, rt, wd, auth)

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("/admin/ws", admin.ServeHTTP)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// group supervises the tick loop and the HTTP server as two
	// independent goroutines that must both wind down cleanly on
	// shutdown; runCtx cancels both when a signal arrives.
	runCtx, stop := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		ticker := time.NewTicker(zoneengine.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				zone.Tick(groupCtx, now)
			case <-groupCtx.Done():
				return nil
			}
		}
	})

	group.Go(func() error {
		logger.Resource("zone server listening", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Resource("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Resource("server shutdown error", "error", err.Error())
	}
	stop()

	if err := group.Wait(); err != nil {
		logger.Resource("zone server exited with error", "error", err.Error())
		os.Exit(1)
	}
}
