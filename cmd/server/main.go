package main

import (
	"bufio"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voltsparx/V-CHAT/internal/chat"
)

func main() {
	cfg, err := chat.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.Addr, "chat listen address")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "metrics listen address")
	flag.Parse()
	cfg.Addr = *addr
	cfg.MetricsAddr = *metricsAddr

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	srv := chat.NewServer(cfg, nil, logger)
	if err := srv.Start(); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	go serveMetrics(cfg.MetricsAddr, logger)
	go serveConsole(srv, cfg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	srv.Stop()
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics listener failed", "error", err)
	}
}

// serveConsole broadcasts operator stdin lines to every session, as the
// server itself rather than through a fake client connection.
func serveConsole(srv *chat.Server, cfg chat.Config) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		line := chat.Colorize(cfg.ServerColor, "["+cfg.ServerName+"]") + " " + text
		srv.Router().Broadcast(line, chat.OriginServer())
	}
}
