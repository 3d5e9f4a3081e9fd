// Copyright 2026 The Mizan Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mizanhq/mizan/internal/audit"
	"github.com/mizanhq/mizan/internal/authz"
	"github.com/mizanhq/mizan/internal/config"
	"github.com/mizanhq/mizan/internal/invoice"
	"github.com/mizanhq/mizan/internal/membership"
	"github.com/mizanhq/mizan/internal/observability/logger"
	"github.com/mizanhq/mizan/internal/observability/metrics"
	"github.com/mizanhq/mizan/internal/observability/tracing"
	"github.com/mizanhq/mizan/internal/quota"
	"github.com/mizanhq/mizan/internal/rbac"
	"github.com/mizanhq/mizan/internal/store/postgres"
	"github.com/mizanhq/mizan/internal/tenant"
	transportHTTP "github.com/mizanhq/mizan/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting mizan authorization service")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}
	var authzMetrics *metrics.AuthzMetrics
	if meter != nil {
		if authzMetrics, err = meter.NewAuthzMetrics(); err != nil {
			slog.Error("failed to create authz metrics", logger.Error(err))
		}
	}

	// Initialize database
	db, err := postgres.New(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Initialize repositories
	tenantRepo := postgres.NewTenantRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	inviteRepo := postgres.NewInviteRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	quotaRepo := postgres.NewQuotaRepository(db)

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()
	tokenHasher := membership.NewTokenHasher(
		cfg.Invites.Argon2Memory,
		cfg.Invites.Argon2Iterations,
		cfg.Invites.Argon2Parallelism,
		cfg.Invites.Argon2SaltLength,
		cfg.Invites.Argon2KeyLength,
	)

	// Initialize services
	memberService := membership.NewService(membershipRepo, inviteRepo, tokenHasher, auditLogger)
	tenantService := tenant.NewService(tenantRepo, memberService, auditLogger)
	invoiceService := invoice.NewService(invoiceRepo)

	// The authorization core: an immutable catalog, the membership
	// resolver and the gate that evaluates requirement chains.
	catalog, err := rbac.NewCatalog()
	if err != nil {
		slog.Error("invalid permission catalog", logger.Error(err))
		os.Exit(1)
	}
	resolver := authz.NewResolver(memberService, auditLogger)
	gate := authz.NewGate(catalog)
	quotaGate := quota.NewGate(quotaRepo, auditLogger, authzMetrics)

	// Rate Limiter
	rateLimiter, err := transportHTTP.NewRateLimiter(
		cfg.RateLimit.RequestsPerSecond,
		cfg.RateLimit.Burst,
		cfg.RateLimit.MaxTrackedIPs,
	)
	if err != nil {
		slog.Error("failed to create rate limiter", logger.Error(err))
		os.Exit(1)
	}

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		tenantService,
		memberService,
		invoiceService,
		resolver,
		gate,
		quotaGate,
		quotaRepo,
		auditLogger,
		authzMetrics,
		transportHTTP.HandlerConfig{
			TokenSecret: cfg.Auth.TokenSecret,
			TokenIssuer: cfg.Auth.Issuer,
		},
	)

	// Create router
	router := transportHTTP.NewRouter(handler, rateLimiter)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying initial schema...")
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}
