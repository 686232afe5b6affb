package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Pending-Status/CalendarMeet/internal/config"
	"github.com/Pending-Status/CalendarMeet/internal/database"
	"github.com/Pending-Status/CalendarMeet/internal/rest"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg config.Application
	db  *pgxpool.Pool
	srv *http.Server
}

// NewApplication connects to the database, applies migrations and builds the
// HTTP server, ready to Run().
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(cfg.Database); err != nil {
		db.Close()
		return nil, err
	}

	deps, err := BuildDependencies(ctx, db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	srv := &http.Server{
		Handler:      NewHandler(deps, cfg),
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, db: db, srv: srv}, nil
}

// NewHandler builds the router with middlewares, API routes and, when
// enabled, the frontend, wrapped in CORS.
func NewHandler(deps *Dependencies, cfg config.Application) http.Handler {
	r := mux.NewRouter()

	SetupMiddleware(r, deps)
	RegisterRoutes(r, deps)

	if cfg.Frontend.Enabled {
		frontend := rest.NewFrontendHandler(cfg.Frontend.Dir, "index.html")
		r.PathPrefix("/").Handler(frontend)
	}

	return CORS(cfg.Cors.AllowedOrigins, r)
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// the server down and closes the database pool.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return <-errCh
}
