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

	"github.com/Markolissimo/treatment-summary/internal/config"
	"github.com/Markolissimo/treatment-summary/internal/domain/audit"
	"github.com/Markolissimo/treatment-summary/internal/domain/confirmation"
	"github.com/Markolissimo/treatment-summary/internal/domain/generation"
	"github.com/Markolissimo/treatment-summary/internal/domain/procedurecode"
	"github.com/Markolissimo/treatment-summary/internal/domain/selectionrule"
	"github.com/Markolissimo/treatment-summary/internal/domain/selector"
	"github.com/Markolissimo/treatment-summary/internal/platform/auth"
	"github.com/Markolissimo/treatment-summary/internal/platform/db"
	"github.com/Markolissimo/treatment-summary/internal/platform/llm"
	"github.com/Markolissimo/treatment-summary/internal/platform/middleware"
	"github.com/Markolissimo/treatment-summary/internal/platform/redact"
	"github.com/Markolissimo/treatment-summary/internal/platform/telemetry"
	"github.com/Markolissimo/treatment-summary/pkg/pagination"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docgen-server",
		Short: "BiteSoft document generation gateway",
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
		Short: "Start the document generation HTTP server",
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
			if err := migrator.EnsureMigrationsTable(ctx); err != nil {
				return err
			}

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
			if err := migrator.EnsureMigrationsTable(ctx); err != nil {
				return err
			}

			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
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

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the canonical CDT procedure codes and selection rules",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			codeRepo := procedurecode.NewRepoPG(pool)
			codeSvc := procedurecode.NewService(codeRepo)
			if err := codeSvc.Seed(ctx, canonicalProcedureCodes()); err != nil {
				return err
			}
			fmt.Println("Seeded procedure codes.")

			ruleRepo := selectionrule.NewRepoPG(pool)
			ruleSvc := selectionrule.NewService(ruleRepo, codeRepo)
			for _, r := range canonicalSelectionRules() {
				if err := ruleSvc.Upsert(ctx, r); err != nil {
					return fmt.Errorf("upsert rule %s/%s: %w", r.Tier, r.AgeGroup, err)
				}
			}
			fmt.Println("Seeded selection rules.")
			return nil
		},
	}
}

// canonicalProcedureCodes is the fixed CDT code set every deployment
// starts from: the clear-aligner tiers, the two comprehensive braces
// codes, the diagnostic imaging codes, and the bundled retainer code.
func canonicalProcedureCodes() []*procedurecode.ProcedureCode {
	return []*procedurecode.ProcedureCode{
		{Code: "D8010", Description: "Limited orthodontic treatment of the primary dentition", Category: "orthodontic", IsPrimary: true, IsActive: true},
		{Code: "D8080", Description: "Comprehensive orthodontic treatment of the adolescent dentition", Category: "orthodontic", IsPrimary: true, IsActive: true},
		{Code: "D8090", Description: "Comprehensive orthodontic treatment of the adult dentition", Category: "orthodontic", IsPrimary: true, IsActive: true},
		{Code: "D0330", Description: "Panoramic radiographic image", Category: "diagnostic", IsActive: true},
		{Code: "D0210", Description: "Intraoral, complete series of radiographic images", Category: "diagnostic", IsActive: true},
		{Code: "D0350", Description: "2D oral/facial photographic image", Category: "diagnostic", IsActive: true},
		{Code: "D0470", Description: "Diagnostic casts", Category: "diagnostic", IsActive: true},
		{Code: "D8680", Description: "Orthodontic retention, removal of appliances, construction and placement of retainer(s)", Category: "orthodontic", IsActive: true},
	}
}

// canonicalSelectionRules is the fixed tier x age_group mapping every
// deployment starts from. Retainers are bundled into the comprehensive
// and limited codes and are never added as a separate add-on.
func canonicalSelectionRules() []*selectionrule.SelectionRule {
	return []*selectionrule.SelectionRule{
		{Tier: "express", AgeGroup: "adolescent", Code: "D8010", Priority: 100, IsActive: true},
		{Tier: "express", AgeGroup: "adult", Code: "D8010", Priority: 100, IsActive: true},
		{Tier: "mild", AgeGroup: "adolescent", Code: "D8010", Priority: 100, IsActive: true},
		{Tier: "mild", AgeGroup: "adult", Code: "D8010", Priority: 100, IsActive: true},
		{Tier: "moderate", AgeGroup: "adolescent", Code: "D8080", Priority: 90, IsActive: true},
		{Tier: "moderate", AgeGroup: "adult", Code: "D8090", Priority: 90, IsActive: true},
		{Tier: "complex", AgeGroup: "adolescent", Code: "D8080", Priority: 80, IsActive: true},
		{Tier: "complex", AgeGroup: "adult", Code: "D8090", Priority: 80, IsActive: true},
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	tp := telemetry.NewTelemetryProvider(telemetry.TelemetryConfig{
		ServiceName:    "docgen-server",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Env,
	})
	defer tp.Shutdown(ctx)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.SanitizeWithLogger(logger))
	e.Use(middleware.BodyLimit("2M"))
	e.Use(tp.TracingMiddleware())
	e.Use(tp.MetricsMiddleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.EnableAuthBypass {
		logger.Warn().Msg("ENABLE_AUTH_BYPASS is true; bearer tokens are not validated")
		e.Use(auth.DevAuthMiddleware())
	} else {
		jwtCfg := auth.JWTConfig{Issuer: cfg.JWTIssuer, Audience: cfg.JWTAudience}
		if cfg.JWTPublicKey != "" {
			pub, err := auth.ParseRSAPublicKeyPEM([]byte(cfg.JWTPublicKey))
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to parse JWT_PUBLIC_KEY")
			}
			jwtCfg.PublicKey = pub
		} else {
			jwtCfg.SharedSecret = []byte(cfg.SecretKey)
		}
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			protected := auth.JWTMiddleware(jwtCfg)(next)
			return func(c echo.Context) error {
				if auth.IsPublicPath(c.Path()) {
					return next(c)
				}
				return protected(c)
			}
		})
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", tp.PrometheusHandler())

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.RequestTimeout(time.Duration(cfg.LLMTimeoutSeconds+10) * time.Second))

	codeRepo := procedurecode.NewRepoPG(pool)
	ruleRepo := selectionrule.NewRepoPG(pool)
	sel := selector.New(ruleRepo, codeRepo)

	llmClient := llm.New(llm.Config{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		Timeout: time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
	})

	redactPolicy := redact.Policy{
		StoreFullAuditData: cfg.StoreFullAuditData,
		RedactPHIFields:    cfg.RedactPHIFields,
		PHIFieldsToRedact:  cfg.PHIFieldsToRedact,
	}

	auditRepo := audit.NewRepoPG(pool)
	auditSvc := audit.NewService(auditRepo, redactPolicy)

	confirmRepo := confirmation.NewRepoPG(pool)
	confirmSvc := confirmation.NewService(confirmRepo, auditSvc, redactPolicy)

	genSvc := generation.NewService(sel, llmClient, auditSvc, confirmSvc, cfg.OpenAIModel, generation.Seeds{
		TreatmentSummary: cfg.TreatmentSummarySeed,
		InsuranceSummary: cfg.InsuranceSummarySeed,
		ProgressNotes:    cfg.ProgressNotesSeed,
	})
	genHandler := generation.NewHandler(genSvc)
	genHandler.RegisterRoutes(apiV1)

	apiV1.GET("/audit-records", func(c echo.Context) error {
		userID := auth.UserIDFromContext(c.Request().Context())
		p := pagination.FromContext(c)
		records, total, err := auditSvc.ListByUser(c.Request().Context(), userID, p.Limit, p.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(records, total, p.Limit, p.Offset))
	})

	if total, err := codeRepo.Count(ctx); err == nil {
		tp.HealthMetrics().SetProcedureCodesTotal(int64(total))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.StartServer(srv); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
