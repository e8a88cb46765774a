package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/nstehr/deadeye/agent"
	"github.com/nstehr/deadeye/config"
	"github.com/nstehr/deadeye/ipc"
)

const banner = `
     _                _
  __| | ___  __ _  __| | ___ _   _  ___
 / _' |/ _ \/ _' |/ _' |/ _ \ | | |/ _ \
| (_| |  __/ (_| | (_| |  __/ |_| |  __/
 \__,_|\___|\__,_|\__,_|\___|\__, |\___|
                             |___/
Lockstep RTS opponent`

// settings are the sidecar's own options, distinct from bot tuning.
// Environment variables set the defaults; flags override them.
type settings struct {
	Socket   string `env:"SOCKET" envDefault:"/tmp/deadeye.sock"`
	WSAddr   string `env:"WS_ADDR"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Tuning   string `env:"TUNING"`
}

func main() {
	var s settings
	if err := env.ParseWithOptions(&s, env.Options{Prefix: config.EnvPrefix}); err != nil {
		fmt.Fprintln(os.Stderr, "parse environment:", err)
		os.Exit(2)
	}
	flag.StringVar(&s.Socket, "socket", s.Socket, "unix domain socket path (empty disables)")
	flag.StringVar(&s.WSAddr, "ws", s.WSAddr, "websocket listen address, e.g. :7480 (empty disables)")
	flag.StringVar(&s.LogLevel, "log-level", s.LogLevel, "debug, info, warn or error")
	flag.StringVar(&s.Tuning, "tuning", s.Tuning, "YAML tuning file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(s.LogLevel),
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	cfg, err := config.Load(s.Tuning)
	if err != nil {
		slog.Error("failed to load tuning", "path", s.Tuning, "error", err)
		os.Exit(1)
	}
	if s.Socket == "" && s.WSAddr == "" {
		slog.Error("nothing to listen on: set -socket or -ws")
		os.Exit(2)
	}

	slog.Info("starting deadeye", "socket", s.Socket, "ws", s.WSAddr, "tuning", s.Tuning)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serve := func(t ipc.Transport) { agent.Serve(t, cfg) }

	if s.Socket != "" {
		listener, err := listenUnix(s.Socket)
		if err != nil {
			slog.Error("failed to listen on socket", "path", s.Socket, "error", err)
			os.Exit(1)
		}
		defer listener.Close()
		defer os.Remove(s.Socket)
		slog.Info("listening on domain socket", "path", s.Socket)
		go acceptLoop(ctx, listener, serve)
	}

	if s.WSAddr != "" {
		srv := &http.Server{
			Addr:              s.WSAddr,
			Handler:           ipc.WebsocketHandler(serve),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("listening for websocket peers", "addr", s.WSAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("websocket server failed", "error", err)
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down")
}

// listenUnix binds the socket, removing a stale file left by an unclean shutdown.
func listenUnix(path string) (net.Listener, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("clean up socket: %w", err)
	}
	return net.Listen("unix", path)
}

func acceptLoop(ctx context.Context, listener net.Listener, serve func(ipc.Transport)) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("failed to accept connection", "error", err)
			continue
		}
		slog.Info("new connection accepted")
		go serve(ipc.NewStreamTransport(conn))
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
