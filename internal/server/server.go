package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/internal/handlers"
	"github.com/avikal/ragchat/internal/middleware"
	"github.com/avikal/ragchat/pkg/logging"
)

var _logger *logging.Logger

type ShutdownParams struct {
	Server           *http.Server
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	CloseServices    context.CancelFunc
	ShutdownTimeout  config.ServerConfig
}

func New(cfg *config.Config, chatAPI *handlers.ChatAPI) *http.Server {
	_logger = logging.NewLogger("Server")

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: cfg.CORS.AllowCredentials,
	}))

	chain := middleware.NewChain(cfg.Server)
	r.Get("/", chain.Wrap(chatAPI.HealthHandler))
	r.Post("/chat", chain.Wrap(chatAPI.ChatHandler))
	r.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  cfg.Server.IdleTimeout(),
	}
}

func Run(server *http.Server) {
	_logger.Info("Server is listening", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err, "addr", server.Addr)
	}
}

func ShutDownHandler(params ShutdownParams) {
	state := <-params.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), params.ShutdownTimeout.ShutdownTimeout())
	defer cancel()

	done := make(chan struct{})

	go func() {
		params.Server.SetKeepAlivesEnabled(false)
		if err := params.Server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully", "error", err)
		}
		params.CloseServices()
		close(params.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Graceful shutdown complete")
	case <-ctx.Done():
		_logger.Info("Force shut down")
		os.Exit(1)
	}
}
