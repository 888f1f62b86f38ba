package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinic-server/internal/config"
	"github.com/clinicdesk/clinic-server/internal/domain/admin"
	"github.com/clinicdesk/clinic-server/internal/domain/directory"
	"github.com/clinicdesk/clinic-server/internal/domain/identity"
	"github.com/clinicdesk/clinic-server/internal/domain/scheduling"
	"github.com/clinicdesk/clinic-server/internal/platform/auth"
	"github.com/clinicdesk/clinic-server/internal/platform/db"
	"github.com/clinicdesk/clinic-server/internal/platform/middleware"
	"github.com/clinicdesk/clinic-server/internal/platform/realtime"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic operations API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// contactSourceAdapter bridges the realtime layer's string-typed roles to
// the directory resolver, avoiding an import cycle between platform and
// domain packages.
type contactSourceAdapter struct {
	resolver *directory.Resolver
}

func (a *contactSourceAdapter) ContactsFor(ctx context.Context, username, role string) ([]string, error) {
	r, ok := identity.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return a.resolver.ContactsFor(ctx, username, r)
}

// staffDirectoryAdapter lets the scheduling layer enumerate doctors and
// nurses through the identity repository.
type staffDirectoryAdapter struct {
	users identity.UserRepository
}

func (d *staffDirectoryAdapter) DoctorUsernames(ctx context.Context) ([]string, error) {
	return d.users.UsernamesByRole(ctx, identity.RoleDoctor)
}

func (d *staffDirectoryAdapter) NurseUsernames(ctx context.Context) ([]string, error) {
	return d.users.UsernamesByRole(ctx, identity.RoleNurse)
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-User", "X-Role"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.HeaderAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddlewareWithSkipper([]byte(cfg.JWTSecret), "/health", "/api/v1/auth/"))
	}

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// -- Repositories and services --

	userRepo := identity.NewUserRepoPG(pool)
	identitySvc := identity.NewService(userRepo)
	identityHandler := identity.NewHandler(identitySvc, []byte(cfg.JWTSecret))
	identityHandler.RegisterRoutes(apiV1)

	apptRepo := scheduling.NewAppointmentRepoPG(pool)
	settingsRepo := scheduling.NewSettingsRepoPG(pool)
	staffDir := &staffDirectoryAdapter{users: userRepo}
	checker := scheduling.NewConflictChecker(apptRepo, settingsRepo, staffDir, logger)

	resolver := directory.NewResolver(userRepo, apptRepo)
	registry := realtime.NewRegistry()
	router := realtime.NewRouter(registry, &contactSourceAdapter{resolver: resolver}, logger)

	schedSvc := scheduling.NewService(apptRepo, settingsRepo, checker, router, staffDir, logger)
	schedHandler := scheduling.NewHandler(schedSvc)
	schedHandler.RegisterRoutes(apiV1)

	adminHandler := admin.NewHandler(registry, pool)
	adminHandler.RegisterRoutes(apiV1)

	wsHandler := realtime.NewHandler(router)
	wsHandler.RegisterRoutes(e.Group(""))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
