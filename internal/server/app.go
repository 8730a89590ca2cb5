// Package server wires the printfleet services together and runs the REST
// and gRPC endpoints until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/printfleet/internal/logging"
	"github.com/dmitrijs2005/printfleet/internal/server/auth"
	"github.com/dmitrijs2005/printfleet/internal/server/config"
	"github.com/dmitrijs2005/printfleet/internal/server/deployment"
	"github.com/dmitrijs2005/printfleet/internal/server/httpapi"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/firmware"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/history"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/printers"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/printfleet/internal/server/services"
	"github.com/dmitrijs2005/printfleet/internal/server/storage"
	"golang.org/x/crypto/bcrypt"

	gs "github.com/dmitrijs2005/printfleet/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	auth    *auth.Service
	storage *storage.Adapter
	drive   httpapi.DriveAuthorizer

	printerService  *services.PrinterService
	firmwareService *services.FirmwareService
	historyService  *services.HistoryService
	engine          *deployment.Engine
}

// openPostgres is a seam for tests.
var openPostgres = repomanager.OpenPostgres

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	app := &App{config: c, logger: logger}

	if err := app.initStorage(ctx); err != nil {
		return nil, err
	}

	dir, err := auth.NewDirectory(bcrypt.DefaultCost, auth.DefaultCredentials...)
	if err != nil {
		return nil, fmt.Errorf("user directory: %w", err)
	}
	app.auth = auth.NewService(dir, c.SecretKey, c.AccessTokenValidityDuration)

	pr := printers.NewMemoryRepository()
	fr := firmware.NewMemoryRepository()
	hr := history.NewMemoryRepository()
	if c.SeedDemoData {
		if err := services.Seed(ctx, pr, fr, hr, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	app.printerService = services.NewPrinterService(pr, logger)
	app.historyService = services.NewHistoryService(hr, logger)
	app.firmwareService = services.NewFirmwareService(fr, app.storage, app.printerService,
		c.MaxFileSize, c.AllowedFileTypes, logger)
	app.engine = deployment.NewEngine(fr, app.printerService, app.historyService, deployment.NewRandomProgress(),
		deployment.Options{
			TickInterval:       c.DeployTickInterval,
			FailureCheckDelay:  c.FailureCheckDelay,
			FailureProbability: c.FailureProbability,
		}, logger)

	return app, nil
}

// initStorage builds the storage adapter. In-memory mode needs neither the
// database nor cloud credentials.
func (app *App) initStorage(ctx context.Context) error {
	c := app.config

	if c.StorageInMemory {
		app.logger.Warn(ctx, "firmware bytes are kept in memory")
		app.storage = storage.NewAdapter(
			storage.NewMemoryBackend(config.ProviderS3),
			storage.NewMemoryBackend(config.ProviderDrive),
			c.StorageProvider, app.logger)
		return nil
	}

	db, err := openPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrations: %w", err)
	}
	app.db = db

	s3, err := storage.NewS3Backend(ctx, c, db, repos, app.logger)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("s3 init error: %w", err)
	}
	drive := storage.NewDriveBackend(c, app.logger)
	if c.DriveClientID != "" {
		app.drive = drive
	}

	app.storage = storage.NewAdapter(s3, drive, c.StorageProvider, app.logger)
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.auth,
		app.printerService, app.firmwareService, app.historyService, app.engine)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) httpServer() *httpapi.Server {
	opts := httpapi.DefaultOptions()
	opts.CORSOrigin = app.config.CORSOrigin
	// room for the multipart envelope around the largest allowed image
	opts.MaxBodyBytes = app.config.MaxFileSize + 1<<20

	return httpapi.NewServer(httpapi.Deps{
		Auth:     app.auth,
		Printers: app.printerService,
		Firmware: app.firmwareService,
		History:  app.historyService,
		Engine:   app.engine,
		Storage:  app.storage,
		Drive:    app.drive,
	}, opts, app.logger)
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer().Run(ctx, app.config.EndpointAddrHTTP); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.engine.Shutdown()
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close", "error", err)
		}
	}
	app.logger.Info(ctx, "Stopped")
}
