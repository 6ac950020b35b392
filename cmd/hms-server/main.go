package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hospitalos/hms/internal/config"
	"github.com/hospitalos/hms/internal/domain/appointment"
	"github.com/hospitalos/hms/internal/domain/billing"
	"github.com/hospitalos/hms/internal/domain/insurance"
	"github.com/hospitalos/hms/internal/domain/metrics"
	"github.com/hospitalos/hms/internal/domain/patient"
	"github.com/hospitalos/hms/internal/domain/staff"
	"github.com/hospitalos/hms/internal/domain/treatment"
	"github.com/hospitalos/hms/internal/platform/audit"
	"github.com/hospitalos/hms/internal/platform/auth"
	"github.com/hospitalos/hms/internal/platform/db"
	"github.com/hospitalos/hms/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital Management API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
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

	createCmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new empty migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			migrator := db.NewMigrator(nil, dir)
			existing, err := migrator.LoadMigrations()
			if err != nil {
				return err
			}
			next := 1
			if len(existing) > 0 {
				next = existing[len(existing)-1].Version + 1
			}

			name := fmt.Sprintf("%03d_%s.sql", next, args[0])
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte("-- "+args[0]+"\n"), 0o644); err != nil {
				return fmt.Errorf("write migration file: %w", err)
			}
			fmt.Println("Created", path)
			return nil
		},
	}
	createCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(createCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default branch and staff accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

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

			return staff.EnsureDefaults(ctx, staff.NewBranchRepoPG(pool), staff.NewRepoPG(pool), logger)
		},
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	migrator := db.NewMigrator(pool, cfg.MigrationsDir)
	applied, err := migrator.Up(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	if applied > 0 {
		logger.Info().Int("count", applied).Msg("applied migrations")
	}

	staffRepo := staff.NewRepoPG(pool)
	branchRepo := staff.NewBranchRepoPG(pool)
	accessRepo := staff.NewBranchAccessRepoPG(pool)

	if cfg.SeedOnStart {
		if err := staff.EnsureDefaults(ctx, branchRepo, staffRepo, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed default accounts")
		}
	}

	txRunner := db.NewPoolTxRunner(pool)
	auditor := audit.NewBestEffort(audit.NewPGRecorder(pool), logger)

	sessions := auth.NewPGSessionStore(pool)
	accounts := staff.NewCredentialAdapter(staffRepo)

	patientSvc := patient.NewService(patient.NewRepoPG(pool), auditor)
	staffSvc := staff.NewService(staffRepo, branchRepo, accessRepo, auditor)
	apptSvc := appointment.NewService(
		appointment.NewRepoPG(pool), appointment.NewHistoryRepoPG(pool), txRunner, auditor)
	insuranceRepo := insurance.NewRepoPG(pool)
	insuranceSvc := insurance.NewService(insuranceRepo, auditor)
	treatmentRepo := treatment.NewRepoPG(pool)
	treatmentSvc := treatment.NewService(treatment.NewCatalogueRepoPG(pool), treatmentRepo, auditor)
	billingSvc := billing.NewService(
		billing.NewInvoiceRepoPG(pool), billing.NewPaymentRepoPG(pool), billing.NewClaimRepoPG(pool),
		insuranceRepo, treatmentRepo, txRunner, auditor)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", db.NewHealthHandler(pool).Health)

	auth.NewHandler(sessions, accounts, auth.HandlerConfig{
		Mode:       cfg.AuthMode,
		JWTSecret:  []byte(cfg.JWTSecret),
		SessionTTL: time.Duration(cfg.SessionTTL) * time.Hour,
	}, logger).RegisterRoutes(e.Group("/api/v1"))

	api := e.Group("/api/v1")
	api.Use(auth.Authenticate(auth.MiddlewareConfig{
		Mode:      cfg.AuthMode,
		Required:  cfg.RequireAuth,
		JWTSecret: []byte(cfg.JWTSecret),
		Sessions:  sessions,
		Accounts:  accounts,
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	patient.NewHandler(patientSvc).RegisterRoutes(api)
	staff.NewHandler(staffSvc).RegisterRoutes(api, auth.RoleGuard(cfg.RequireAuth))
	appointment.NewHandler(apptSvc).RegisterRoutes(api)
	insurance.NewHandler(insuranceSvc).RegisterRoutes(api)
	treatment.NewHandler(treatmentSvc).RegisterRoutes(api)
	billing.NewHandler(billingSvc).RegisterRoutes(api)
	metrics.NewHandler(metrics.NewRepoPG(pool)).RegisterRoutes(api)
	audit.NewHandler(audit.NewPGRecorder(pool)).RegisterRoutes(api)

	// Sweep expired sessions in the background.
	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n, err := sessions.PurgeExpired(sweepCtx, time.Now()); err != nil {
					logger.Warn().Err(err).Msg("session sweep failed")
				} else if n > 0 {
					logger.Info().Int64("purged", n).Msg("removed expired sessions")
				}
			}
		}
	}()

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	return nil
}
