package main

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"BookStack/internal/app"
	"BookStack/internal/catalog"
	"BookStack/internal/identity"
	"BookStack/pkg/kit"
)

func main() {
	_ = godotenv.Load()

	service := "api"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8080")
	jwtSecret := getenv("JWT_SECRET", "dev-secret")
	tokenTTL := time.Duration(getenvInt("TOKEN_TTL_MINUTES", 60)) * time.Minute
	dsn := os.Getenv("DB_DSN")

	users, books := buildStores(log, dsn)

	deps := app.Deps{
		Log:      log,
		Users:    users,
		Books:    books,
		JWT:      identity.NewTokenMaker(jwtSecret),
		TokenTTL: tokenTTL,
	}

	h := app.NewHandler(deps, app.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: getenv("METRICS_ENABLED", "") == "1",
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// buildStores picks the backends: in-memory by default, Postgres when a
// DSN is configured.
func buildStores(log *zap.Logger, dsn string) (identity.Registry, catalog.Store) {
	if dsn == "" {
		log.Info("using in-memory stores")
		return identity.NewMemRegistry(), catalog.NewMemStore()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("ping database", zap.Error(err))
	}

	log.Info("using postgres stores")
	return identity.NewPostgresRegistry(db), catalog.NewPostgresStore(db)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
