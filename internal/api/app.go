package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/npezzotti/go-chat-relay/internal/config"
	"github.com/npezzotti/go-chat-relay/internal/database"
	"github.com/npezzotti/go-chat-relay/internal/relay"
)

type RelayApp struct {
	log            *log.Logger
	db             database.MessageRepository
	mux            *http.Server
	rs             *relay.RelayServer
	uploadDir      string
	allowedOrigins []string
	historyLimit   int
}

func NewRelayApp(mux *http.ServeMux, logger *log.Logger, rs *relay.RelayServer, db database.MessageRepository, cfg *config.Config) *RelayApp {
	s := &RelayApp{
		log:            logger,
		db:             db,
		rs:             rs,
		uploadDir:      cfg.UploadDir,
		allowedOrigins: cfg.AllowedOrigins,
		historyLimit:   cfg.HistoryLimit,
	}

	mux.HandleFunc("GET /ws", s.serveWs)
	mux.HandleFunc("POST /api/upload", s.uploadImage)
	mux.HandleFunc("GET /api/messages", s.getMessages)
	mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.UploadDir))))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *RelayApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *RelayApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
