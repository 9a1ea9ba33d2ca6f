package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/npezzotti/go-chat-relay/internal/api"
	"github.com/npezzotti/go-chat-relay/internal/config"
	"github.com/npezzotti/go-chat-relay/internal/database"
	"github.com/npezzotti/go-chat-relay/internal/relay"
	"github.com/npezzotti/go-chat-relay/internal/stats"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	uploadDir      string
	storeTimeout   time.Duration
	historyLimit   int
	allowedOrigins stringSliceFlag
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8000", "server address")
	flag.StringVar(&dsn, "dsn", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable", "database connection string")
	flag.StringVar(&uploadDir, "upload-dir", "uploads", "directory for uploaded images")
	flag.DurationVar(&storeTimeout, "store-timeout", 5*time.Second, "timeout for message store calls")
	flag.IntVar(&historyLimit, "history-limit", 0, "max messages replayed on join, 0 for unlimited")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[chat-relay] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, uploadDir, allowedOrigins, storeTimeout, historyLimit)
	if err != nil {
		logger.Fatal("config:", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Fatal("upload dir:", err)
	}

	dbConn, err := database.NewPgMessageRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	if err := dbConn.Migrate(); err != nil {
		logger.Fatal("db migrate:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	relayServer, err := relay.NewRelayServer(logger, dbConn, statsUpdater, cfg.StoreTimeout, cfg.HistoryLimit)
	if err != nil {
		logger.Fatal("new relay server:", err)
	}

	srv := api.NewRelayApp(mux, logger, relayServer, dbConn, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down relay server...")
	if err := relayServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("relay server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
