package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"route-assignment-service/internal/adapters/pdftext"
	"route-assignment-service/internal/adapters/repositories"
	"route-assignment-service/internal/adapters/sheets"
	"route-assignment-service/internal/api"
	"route-assignment-service/internal/config"
	"route-assignment-service/internal/platform/db"
	"route-assignment-service/internal/platform/obs"
	"route-assignment-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (spreadsheets, PDFs, SQL history) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	log, err := obs.Init(config.Get("LOG_LEVEL", "info"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Info("no .env file found (using environment variables)")
	}

	if err := run(log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules, err := config.LoadRules(config.Get("RULES_PATH", "rules.yaml"))
	if err != nil {
		return err
	}
	deps, err := rules.CycleDeps()
	if err != nil {
		return err
	}

	conn, dialect, err := db.OpenFromEnv(config.Get("DATABASE_URL", ""), config.Get("DB_PATH", "data/app.db"))
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}

	affinity := repositories.NewSQLAffinityRepository(conn, dialect)
	history := repositories.NewSQLAssignmentRepository(conn, dialect)

	// Keep affinity history bounded on startup.
	if n, err := affinity.Prune(ctx, time.Now().Add(-rules.Retention())); err != nil {
		log.Warn("prune affinity failed", zap.Error(err))
	} else if n > 0 {
		log.Info("pruned affinity history", zap.Int64("rows", n))
	}

	deps.Sheets = sheets.NewReader()
	deps.Text = pdftext.NewExtractor()
	deps.Affinity = affinity
	deps.History = history

	router := api.NewRouter(api.Deps{
		Registry:   services.NewCycleRegistry(deps),
		Affinity:   affinity,
		History:    history,
		Ping:       conn.PingContext,
		AllowReset: config.GetBool("ALLOW_RESET", false),
	})

	port := config.Get("PORT", "8080")
	// Uploads of large workbooks and PDFs dominate request time.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("db", string(dialect)))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
