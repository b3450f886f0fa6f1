// Command server is the sampcore game server entrypoint: it loads
// configuration (native defaults, optionally overlaid from a legacy
// server.cfg), starts the network transport, builds a *core.Core, loads
// the fixed component manifest against it, and drives the authoritative
// tick loop until interrupted.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/sampcore/pkg/artwork"
	"github.com/opd-ai/sampcore/pkg/bans"
	"github.com/opd-ai/sampcore/pkg/component"
	"github.com/opd-ai/sampcore/pkg/config"
	"github.com/opd-ai/sampcore/pkg/console"
	"github.com/opd-ai/sampcore/pkg/core"
	"github.com/opd-ai/sampcore/pkg/hostplay"
	"github.com/opd-ai/sampcore/pkg/logging"
	"github.com/opd-ai/sampcore/pkg/network"
)

var (
	bind           = flag.String("bind", "", "Listen address (overrides config)")
	port           = flag.Int("port", 0, "Listen port (overrides config)")
	maxPlayers     = flag.Int("max-players", 0, "Maximum concurrent players (overrides config)")
	tickRate       = flag.Int("tick-rate", 20, "Server tick rate (updates per second)")
	streamDistance = flag.Float64("stream-distance", 0, "Entity streaming distance (overrides config)")
	configFile     = flag.String("config", "", "Path to a legacy server.cfg to overlay on the defaults")
	bansFile       = flag.String("bans", "samp.ban", "Path to the ban list file")
	artworkAddr    = flag.String("artwork-addr", ":7778", "Listen address for the custom-model artwork HTTP server")
	logLevel       = flag.String("log-level", "info", "Log level (debug, info, warn, error, fatal)")
	logFormat      = flag.String("log-format", "text", "Log format (text, json)")
)

func main() {
	flag.Parse()

	logger := logging.NewLogger(logging.Config{
		Level:     logging.LogLevel(*logLevel),
		Format:    logging.LogFormat(*logFormat),
		AddCaller: true,
	})
	entry := logging.SystemLogger(logger, "server")

	cfg := config.Default()
	if *configFile != "" {
		f, err := os.Open(*configFile)
		if err != nil {
			entry.WithError(err).Fatal("failed to open config file")
		}
		if err := config.LoadLegacy(f, &cfg, entry); err != nil {
			f.Close()
			entry.WithError(err).Fatal("failed to load legacy config")
		}
		f.Close()
	}
	if *bind != "" {
		cfg.Bind = *bind
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *maxPlayers != 0 {
		cfg.MaxPlayers = *maxPlayers
	}
	if *streamDistance != 0 {
		cfg.StreamDistance = *streamDistance
	}
	cfg.ApplyDefaults()

	banList, err := bans.Load(*bansFile, entry)
	if err != nil {
		entry.WithError(err).Fatal("failed to load ban list")
	}
	entry.WithField("count", banList.Count()).Info("ban list loaded")

	lifecycle := hostplay.New(hostplay.Config{
		StartPort:       cfg.Port,
		PortRange:       10,
		BindAll:         cfg.Bind == "0.0.0.0" || cfg.Bind == "",
		ShutdownTimeout: 5 * time.Second,
	})
	boundPort, bindAddr, err := lifecycle.FindAvailablePort()
	if err != nil {
		entry.WithError(err).Fatal("failed to find an available port")
	}
	lifecycle.SetPort(boundPort, bindAddr)
	cfg.Port = boundPort
	cfg.Bind = bindAddr

	transport := network.NewServer(network.ServerConfig{
		Address:      fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port),
		MaxPlayers:   cfg.MaxPlayers,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
		UpdateRate:   *tickRate,
		BufferSize:   256,
	})
	if err := transport.Start(); err != nil {
		entry.WithError(err).Fatal("failed to start network transport")
	}
	entry.WithField("address", lifecycle.Address()).Info("network transport listening")

	c := core.New(cfg, transport, entry)

	manifest := component.NewManifest(entry)
	vehiclesAdapter := &vehiclesComponent{logger: logging.ComponentLogger(logger, "vehicles")}
	manifest.Load(c,
		&actorsComponent{logger: logging.ComponentLogger(logger, "actors")},
		vehiclesAdapter,
		&pickupsComponent{logger: logging.ComponentLogger(logger, "pickups")},
		&textlabelsComponent{logger: logging.ComponentLogger(logger, "textlabels")},
		&gangzonesComponent{logger: logging.ComponentLogger(logger, "gangzones")},
		&objectsComponent{logger: logging.ComponentLogger(logger, "objects")},
		&checkpointsComponent{},
		&classesComponent{logger: logging.ComponentLogger(logger, "classes")},
		&dialogsComponent{logger: logging.ComponentLogger(logger, "dialogs")},
	)

	consoleBus := console.New(&cfg, entry)
	consoleBus.SetPlayerMessenger(func(playerID uint64, message string) {
		entry.WithFields(map[string]interface{}{"player": playerID, "message": message}).
			Warn("console: no in-game delivery channel wired for player replies")
	})

	var artworkHTTP *http.Server
	if cfg.ArtworkEnabled {
		artworkSrv := artwork.NewServer(cfg.ArtworkModelsPath, logging.ComponentLogger(logger, "artwork"))
		httpSrv := artworkSrv.NewHTTPServer(*artworkAddr)
		artworkHTTP = httpSrv
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				entry.WithError(err).Error("artwork HTTP server stopped")
			}
		}()
		entry.WithField("address", *artworkAddr).Info("artwork HTTP server listening")
	}

	ctx := lifecycle.Context()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		entry.Info("shutdown signal received")
		if err := lifecycle.Shutdown(); err != nil {
			entry.WithError(err).Warn("shutdown did not complete within its timeout")
		}
	}()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			consoleBus.Send(scanner.Text(), console.Sender{Kind: console.SenderConsole})
		}
	}()

	start := time.Now()
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				vehiclesAdapter.I.RunRespawnSweep(time.Since(start).Milliseconds())
			}
		}
	}()

	entry.WithFields(map[string]interface{}{
		"bind":        cfg.Bind,
		"port":        cfg.Port,
		"max_players": cfg.MaxPlayers,
		"tick_rate":   *tickRate,
	}).Info("sampcore server starting")

	c.Run(ctx, time.Second/time.Duration(*tickRate))

	entry.Info("shutting down")
	manifest.Free()
	if artworkHTTP != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = artworkHTTP.Shutdown(shutdownCtx)
		shutdownCancel()
	}
	if err := transport.Stop(); err != nil {
		entry.WithError(err).Warn("error stopping network transport")
	}
}
