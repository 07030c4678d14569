package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prior-it/directory/config"
	"github.com/prior-it/directory/core"
	"github.com/prior-it/directory/directory"
)

type Server struct {
	mux     *chi.Mux
	api     huma.API
	service *directory.Service
	logger  *slog.Logger
	metrics *metrics.Set
	cfg     *config.Config
	closers []func(ctx context.Context)
}

// New creates a new server for the specified directory service and configuration.
func New(service *directory.Service, cfg *config.Config) *Server {
	server := &Server{
		mux:     chi.NewMux(),
		service: service,
		logger:  slog.Default(),
		metrics: metrics.NewSet(),
		cfg:     cfg,
	}

	server.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		render.PlainText(w, r, fmt.Sprintf("Page %q not found", r.URL.Path))
	})

	return server
}

func (server *Server) WithLogger(logger *slog.Logger) *Server {
	server.logger = logger
	return server
}

// OnShutdown registers a function that releases a resource when the server shuts down.
// Functions run in reverse registration order.
func (server *Server) OnShutdown(closer func(ctx context.Context)) *Server {
	server.closers = append(server.closers, closer)
	return server
}

// API returns the huma API, which only exists after RegisterRoutes was called.
func (server *Server) API() huma.API {
	return server.api
}

func (server *Server) AttachDefaultMiddleware() {
	server.UseStd(
		middleware.RedirectSlashes,
		middleware.Recoverer,
		middleware.RealIP,
		middleware.RequestID,
		HTTPLogger(server.cfg),
		middleware.Timeout(
			time.Duration(server.cfg.App.RequestTimeout)*time.Second,
		),
	)
}

// UseStd appends a stdlib middleware handler to the middleware stack.
//
// Middleware must be added before RegisterRoutes, chi panics otherwise.
func (server *Server) UseStd(middlewares ...func(http.Handler) http.Handler) *Server {
	server.mux.Use(middlewares...)
	return server
}

// RegisterRoutes attaches the operational endpoints and the contact API.
func (server *Server) RegisterRoutes() *Server {
	server.mux.Get("/ping", server.ping)
	server.mux.Get("/readiness", server.readiness)
	server.mux.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		server.metrics.WritePrometheus(w)
		metrics.WriteProcessMetrics(w)
	})

	humaConfig := huma.DefaultConfig(server.cfg.App.Name, server.cfg.App.Version)
	humaConfig.Info.Description = "Personal contact directory"
	server.api = humachi.New(server.mux, humaConfig)
	server.api.UseMiddleware(meterRequests(server.metrics))

	(&contacts{
		service: server.service,
		prefix:  server.cfg.App.APIPrefix + "/contacts",
		onError: server.logError,
	}).register(server.api)

	return server
}

func (server *Server) ping(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "pong")
}

// readiness reports whether the contact store can serve requests.
func (server *Server) readiness(w http.ResponseWriter, r *http.Request) {
	pinger, ok := server.service.Store().(core.Pinger)
	if ok {
		if err := pinger.Ping(r.Context()); err != nil {
			server.logger.Warn("Contact store is not ready", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			render.PlainText(w, r, "store unavailable")
			return
		}
	}
	render.PlainText(w, r, "ready")
}

// Start runs the server until ctx is cancelled or an interrupt signal is received.
// If no listener is provided, a new TCP listener will be created on the configured host and port.
func (server *Server) Start(ctx context.Context, listener net.Listener) error {
	// Handle OS signals to cancel the context
	ctxServer, stopSignal := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignal()

	httpServer := &http.Server{
		Addr:              server.cfg.Addr(),
		Handler:           server,
		ReadHeaderTimeout: 15 * time.Second, //nolint:mnd
		ErrorLog:          slog.NewLogLogger(server.logger.Handler(), slog.LevelError),
	}

	errorCh := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			server.logger.Info("Starting server", "host", listener.Addr().String())
			err = httpServer.Serve(listener)
		} else {
			server.logger.Info("Starting server", "host", httpServer.Addr)
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorCh <- err
		}
		close(errorCh)
	}()

	var errServer error
	select {
	case errServer = <-errorCh:
	case <-ctxServer.Done():
		server.logger.Info("Server interrupt received")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(
		context.WithoutCancel(ctx),
		time.Duration(server.cfg.App.ShutdownTimeout)*time.Second,
	)
	defer cancelShutdown()

	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		server.logger.Warn("Could not shut down the server gracefully", "error", err)
	}
	<-errorCh
	server.Shutdown(ctxShutdown)

	return errServer
}

// Shutdown will release all server resources. You generally don't need to call this manually.
func (server *Server) Shutdown(ctx context.Context) {
	sentryTimeout := max(0, time.Duration(server.cfg.App.ShutdownTimeout-1))
	sentry.Flush(sentryTimeout * time.Second)
	for i := len(server.closers) - 1; i >= 0; i-- {
		server.closers[i](ctx)
	}
	server.closers = nil
}

// ServeHTTP implements [net/http.Handler].
func (server *Server) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	server.mux.ServeHTTP(writer, request)
}
