package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/caresync/hms/internal/config"
	"github.com/caresync/hms/internal/domain/appointment"
	"github.com/caresync/hms/internal/domain/labtest"
	"github.com/caresync/hms/internal/domain/prescription"
	"github.com/caresync/hms/internal/domain/report"
	"github.com/caresync/hms/internal/domain/user"
	"github.com/caresync/hms/internal/platform/auth"
	"github.com/caresync/hms/internal/platform/blobstore"
	"github.com/caresync/hms/internal/platform/db"
	"github.com/caresync/hms/internal/platform/extract"
	"github.com/caresync/hms/internal/platform/jobs"
	"github.com/caresync/hms/internal/platform/middleware"
	"github.com/caresync/hms/internal/platform/notify"
	"github.com/caresync/hms/internal/platform/ws"
	"github.com/caresync/hms/pkg/response"
)

// The person-directory adapters bridge the user repository to the lookup
// interfaces each domain declares for itself, avoiding circular imports
// between the user package and its consumers.

type apptPeopleAdapter struct{ users user.Repository }

func (a *apptPeopleAdapter) Lookup(ctx context.Context, id uuid.UUID) (*appointment.Person, error) {
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &appointment.Person{ID: u.ID, Name: u.Name, Role: u.Role}, nil
}

type rxPeopleAdapter struct{ users user.Repository }

func (a *rxPeopleAdapter) Lookup(ctx context.Context, id uuid.UUID) (*prescription.Person, error) {
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &prescription.Person{ID: u.ID, Name: u.Name, Role: u.Role}, nil
}

type labPeopleAdapter struct{ users user.Repository }

func (a *labPeopleAdapter) Lookup(ctx context.Context, id uuid.UUID) (*labtest.Person, error) {
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &labtest.Person{ID: u.ID, Name: u.Name, Role: u.Role}, nil
}

type reportPeopleAdapter struct{ users user.Repository }

func (a *reportPeopleAdapter) Lookup(ctx context.Context, id uuid.UUID) (*report.Person, error) {
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &report.Person{ID: u.ID, Name: u.Name, Role: u.Role}, nil
}

// visitAdapter lets the prescription health summary read appointment history
// without importing the appointment handler stack.
type visitAdapter struct{ appts *appointment.Service }

func (a *visitAdapter) Recent(ctx context.Context, patientID uuid.UUID, limit int) ([]prescription.Visit, error) {
	items, _, err := a.appts.ListByPatient(ctx, patientID, limit, 0)
	if err != nil {
		return nil, err
	}
	visits := make([]prescription.Visit, 0, len(items))
	for _, appt := range items {
		visits = append(visits, prescription.Visit{
			ID:         appt.ID,
			DoctorName: appt.DoctorName,
			Date:       appt.AppointmentDate,
			TimeSlot:   appt.TimeSlot,
			Reason:     appt.Reason,
			Status:     appt.Status,
		})
	}
	return visits, nil
}

func (a *visitAdapter) Counts(ctx context.Context, patientID uuid.UUID) (int, int, error) {
	return a.appts.Stats(ctx, patientID)
}

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
		Short: "Start the HMS API server",
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
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a development admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

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

			users := user.NewService(user.NewRepoPG(pool),
				auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenExpiry()))
			u, err := users.Register(ctx, user.RegisterInput{
				Name:     "Administrator",
				Email:    email,
				Password: password,
				Role:     user.RoleAdmin,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created admin %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "admin@localhost", "Admin email")
	cmd.Flags().String("password", "admin123", "Admin password")
	return cmd
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
	e.HTTPErrorHandler = response.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// WebSocket directory and notification fan-out
	directory := ws.NewDirectory()
	wsHandler := ws.NewHandler(directory, logger)
	wsHandler.RegisterRoutes(e)

	local := notify.NewLocalNotifier(directory, logger)
	var notifier notify.Notifier = local
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		client := redis.NewClient(opts)
		redisNotifier := notify.NewRedisNotifier(client, local, logger)
		go redisNotifier.Listen(ctx)
		notifier = redisNotifier
		logger.Info().Msg("redis notification backplane enabled")
	}

	// Storage and extraction
	store, err := blobstore.NewDiskStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("failed to prepare upload dir")
	}
	var extractor extract.Extractor = extract.Disabled{}
	if cfg.ExtractAPIURL != "" {
		extractor = extract.NewClient(cfg.ExtractAPIURL, cfg.ExtractAPIKey,
			cfg.ExtractCallTimeout(), logger)
	}

	// Repositories and services
	userRepo := user.NewRepoPG(pool)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenExpiry())
	userSvc := user.NewService(userRepo, tokens)

	apptSvc := appointment.NewService(appointment.NewRepoPG(pool),
		&apptPeopleAdapter{users: userRepo}, notifier)
	rxSvc := prescription.NewService(prescription.NewRepoPG(pool),
		&rxPeopleAdapter{users: userRepo}, &visitAdapter{appts: apptSvc}, notifier)
	labSvc := labtest.NewService(labtest.NewRepoPG(pool),
		&labPeopleAdapter{users: userRepo})
	reportSvc := report.NewService(report.NewRepoPG(pool),
		&reportPeopleAdapter{users: userRepo}, store, extractor, logger)

	// Routes
	public := e.Group("/api/v1")
	api := e.Group("/api/v1", auth.Middleware(cfg.JWTSecret))

	user.NewHandler(userSvc).RegisterRoutes(public, api)
	appointment.NewHandler(apptSvc).RegisterRoutes(api)
	prescription.NewHandler(rxSvc).RegisterRoutes(api)
	labtest.NewHandler(labSvc).RegisterRoutes(api)
	report.NewHandler(reportSvc).RegisterRoutes(api)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Background jobs
	scheduler := jobs.NewScheduler(apptSvc, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start scheduler")
	}

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	scheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	return nil
}
