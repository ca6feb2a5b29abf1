// Command hermes starts the Hermes XMPP-over-WebSocket gateway.
//
// The process runs two listeners: the WebSocket endpoint game clients speak
// XMPP over, and a small administrative HTTP API for operators. Flags cover
// the config file location, debug logging and version output; everything
// else comes from the config file and HERMES_-prefixed environment
// variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Solaris-FN/Hermes/api"
	"github.com/Solaris-FN/Hermes/config"
	"github.com/Solaris-FN/Hermes/gateway"
	"github.com/Solaris-FN/Hermes/identity"
	"github.com/Solaris-FN/Hermes/party"
	ws "github.com/Solaris-FN/Hermes/transport/websocket"
)

const (
	Version = "1.0.0"
	AppName = "Hermes XMPP Gateway"
)

var (
	configFile = flag.String("config", "", "Path to config file (default: ./config.{yaml,json})")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		return
	}

	log, err := buildLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	loader := config.NewLoader(log)
	cfg, err := loader.Load(*configFile)
	if err != nil {
		log.Fatal("configuration error", zap.Error(err))
	}
	loader.Watch(func(next *config.Config) {
		log.Info("configuration reloaded",
			zap.String("backend_url", next.BackendURL),
			zap.String("domain", next.Domain))
	})

	registry := gateway.NewRegistry()
	bus := gateway.NewEventBus()
	subscribeObservers(bus, log)

	gw := gateway.New(gateway.Config{
		Domain:   cfg.Domain,
		Identity: identity.NewClient(cfg.BackendURL, cfg.BackendToken, log.Named("identity")),
		Registry: registry,
		Bus:      bus,
		Logger:   log.Named("gateway"),
	})

	wsServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: ws.NewServer(gw, log.Named("transport")),
	}
	adminServer := &http.Server{
		Addr: cfg.AdminAddr,
		Handler: api.NewServer(api.Config{
			Registry:   registry,
			Parties:    party.NewStore(),
			Domain:     cfg.Domain,
			ServerName: cfg.ServerName,
			Env:        cfg.Environment,
			Logger:     log.Named("api"),
		}),
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("gateway listening", zap.String("addr", wsServer.Addr), zap.String("domain", cfg.Domain))
		errCh <- wsServer.ListenAndServe()
	}()
	go func() {
		log.Info("admin api listening", zap.String("addr", adminServer.Addr))
		errCh <- adminServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("listener failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close client transports first so readers drain before the listeners go.
	for _, sess := range registry.List() {
		sess.Close()
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("gateway shutdown", zap.Error(err))
	}
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("admin shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// subscribeObservers attaches the out-of-core logging observers to the
// lifecycle bus. Metrics or external reapers for evicted connections would
// hook in the same way.
func subscribeObservers(bus *gateway.EventBus, log *zap.Logger) {
	obs := log.Named("events")
	bus.Subscribe(gateway.EventClientConnected, func(e gateway.Event) {
		obs.Debug("client connected", zap.String("connection_id", e.Session.ConnectionID.String()))
	})
	bus.Subscribe(gateway.EventClientDisconnected, func(e gateway.Event) {
		obs.Debug("client disconnected",
			zap.String("connection_id", e.Session.ConnectionID.String()),
			zap.String("reason", e.Message))
	})
	bus.Subscribe(gateway.EventClientLogin, func(e gateway.Event) {
		obs.Info("login",
			zap.String("account_id", e.Session.AccountID()),
			zap.String("jid", e.Session.JID()))
	})
	bus.Subscribe(gateway.EventErrorOccurred, func(e gateway.Event) {
		obs.Warn("error event", zap.String("source", e.Source), zap.Error(e.Err))
	})
}
