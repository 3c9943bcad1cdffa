package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/enrollhub/onboarding-api/internal/domain/attendance"
	attendancehandler "github.com/enrollhub/onboarding-api/internal/domain/attendance/handler"
	importhandler "github.com/enrollhub/onboarding-api/internal/domain/importer/handler"
	"github.com/enrollhub/onboarding-api/internal/domain/registry"
	"github.com/enrollhub/onboarding-api/internal/domain/wizard"
	wizardhandler "github.com/enrollhub/onboarding-api/internal/domain/wizard/handler"
	"github.com/enrollhub/onboarding-api/pkg/config"
	"github.com/enrollhub/onboarding-api/pkg/cron"
	"github.com/enrollhub/onboarding-api/pkg/db"
	"github.com/enrollhub/onboarding-api/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	RegistryRepo registry.Repository

	// Services
	SessionStore       *importhandler.SessionStore
	AttendanceImporter *attendance.Importer
	Coordinator        *wizard.Coordinator
	FileArchive        storage.Archive
	Scheduler          *cron.Scheduler

	// Handlers
	ImportHandler     *importhandler.ImportHandler
	AttendanceHandler *attendancehandler.AttendanceHandler
	WizardHandler     *wizardhandler.WizardHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	// Run migrations
	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initServices initializes the repository and service layer
func (d *Dependencies) initServices() error {
	d.RegistryRepo = registry.NewPostgresRepository(d.DB.Pool)
	d.SessionStore = importhandler.NewSessionStore()
	d.Coordinator = wizard.NewCoordinator(d.RegistryRepo, d.Logger)
	d.AttendanceImporter = attendance.NewImporter(d.RegistryRepo, d.Logger)
	d.Scheduler = cron.NewScheduler(d.SessionStore, d.Logger)

	archive, err := storage.New(&storage.Config{LocalPath: d.Config.Import.ArchivePath})
	if err != nil {
		return fmt.Errorf("failed to init upload archive: %w", err)
	}
	d.FileArchive = archive

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.ImportHandler = importhandler.NewImportHandler(d.SessionStore, d.Coordinator, d.Logger).
		WithArchive(d.FileArchive)
	d.AttendanceHandler = attendancehandler.NewAttendanceHandler(d.AttendanceImporter, d.Coordinator, d.Logger).
		WithArchive(d.FileArchive)
	d.WizardHandler = wizardhandler.NewWizardHandler(d.Coordinator, d.Logger)

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
