// Package main initializes and starts the GophReport API server, setting up
// configuration, logging, database connections, repositories, the bearer
// token authenticator, services, handlers and the optional TLS listener.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/atinyakov/GophReport/internal/auth"
	"github.com/atinyakov/GophReport/internal/config"
	"github.com/atinyakov/GophReport/internal/db"
	"github.com/atinyakov/GophReport/internal/logger"
	"github.com/atinyakov/GophReport/internal/middleware"
	"github.com/atinyakov/GophReport/internal/repository"
	"github.com/atinyakov/GophReport/internal/server/handler/http"
	"github.com/atinyakov/GophReport/internal/service"
	"github.com/atinyakov/GophReport/internal/token"
)

const loginAttemptsPerMinute = 10

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// The codec refuses weak secrets and negative lifetimes, so a bad
	// configuration stops the server here.
	codec, err := token.NewCodec([]byte(options.JWTSecret), options.TokenLifetime())
	if err != nil {
		zapLogger.Fatal("invalid token configuration", zap.Error(err))
	}

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Purge soft-deleted complaints once they are past retention.
	db.StartSoftDeleteCleaner(ctx, postgresDB, time.Hour, options.PurgeRetention(), zapLogger)

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	complaintRepo := repository.NewPostgresComplaintRepository(postgresDB)

	// Trust layer: token verification, principal lookup and ownership policy.
	metrics := middleware.NewMetrics(prometheus.DefaultRegisterer)
	principals := auth.NewPrincipalStore(userRepo)
	policy := auth.NewPolicy(complaintRepo, zapLogger)
	authenticator := middleware.NewAuthenticator(codec, principals, zapLogger, metrics)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, codec)
	userService := service.NewUserService(userRepo)
	complaintService := service.NewComplaintService(complaintRepo)

	// Build the router with middleware and routes.
	router := http.NewRouter(http.RouterDeps{
		Auth:           &http.AuthHandler{AuthService: authService, TokenLifetime: codec.Lifetime()},
		Users:          &http.UserHandler{UserService: userService},
		Complaints:     &http.ComplaintHandler{ComplaintService: complaintService, Policy: policy},
		Authenticator:  authenticator,
		Metrics:        metrics,
		Gatherer:       prometheus.DefaultGatherer,
		Logger:         zapLogger,
		LoginRateLimit: loginAttemptsPerMinute,
	})

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSEnabled() {
		// Load server TLS certificate and key.
		cert, err := tls.LoadX509KeyPair(options.TLSCert, options.TLSKey)
		if err != nil {
			zapLogger.Fatal("failed to load server TLS cert/key", zap.Error(err))
		}
		server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS("", "")
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("failed to start HTTPS server", zap.Error(err))
		}
		return
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
