package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	apihttp "energiebuch/internal/api/http"
	"energiebuch/internal/audit"
	"energiebuch/internal/auth"
	"energiebuch/internal/hasync"
	application "energiebuch/internal/ingest/application"
	ingestpostgres "energiebuch/internal/ingest/infrastructure/postgres"
	ingesthttp "energiebuch/internal/ingest/interfaces/http"
	masterdatarepo "energiebuch/internal/masterdata/infrastructure/postgres"
	"energiebuch/internal/observability/metrics"
	"energiebuch/internal/periods"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	installationChecker := auth.NewInstallationChecker(masterdatarepo.NewInstallationRepository(db))
	auditRepo := audit.NewRepository(db)

	deviceRepo := masterdatarepo.NewDeviceRepository(db)
	valueStore := ingestpostgres.NewValueStore(db)
	periodRepo := periods.NewRepository(db)

	importCfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("import config error: %v", err)
	}

	sessionService, err := application.NewSessionService(deviceRepo, valueStore, logger)
	if err != nil {
		logger.Fatalf("session service error: %v", err)
	}

	var publisher ingesthttp.SummaryPublisher
	if importCfg.MQTT.BrokerURL != "" {
		mqttPublisher, err := hasync.NewPublisher(importCfg.MQTT)
		if err != nil {
			logger.Fatalf("mqtt publisher error: %v", err)
		}
		defer mqttPublisher.Close()
		publisher = mqttPublisher
	}

	resultCache := ingesthttp.NewResultCache()
	uploadHandler, err := ingesthttp.NewUploadHandler(
		sessionService, periodRepo, publisher, installationChecker, auditRepo,
		importCfg, logger, ingesthttp.WithResultCache(resultCache),
	)
	if err != nil {
		logger.Fatalf("upload handler error: %v", err)
	}
	reportHandler := ingesthttp.NewReportHandler(resultCache)

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/imports", uploadHandler)
	mux.Handle("/api/v1/imports/report", reportHandler)
	mux.Handle("/api/v1/devices", apihttp.NewDevicesHandler(deviceRepo, installationChecker))
	mux.Handle("/api/v1/periods", apihttp.NewPeriodsHandler(periodRepo, installationChecker))
	mux.Handle("/api/v1/exports/periods.csv", apihttp.NewExportPeriodsCSVHandler(periodRepo, installationChecker))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
