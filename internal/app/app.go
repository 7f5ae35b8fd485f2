package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"galaxy-datagen/internal/auditlogs"
	"galaxy-datagen/internal/datasets"
	"galaxy-datagen/internal/dispatchers"
	internalhttp "galaxy-datagen/internal/http"
	"galaxy-datagen/internal/launchers"
	"galaxy-datagen/internal/shared/configs"
	"galaxy-datagen/internal/shared/filestorages"
	"galaxy-datagen/internal/shared/loggers"

	"github.com/pires/go-proxyproto"
)

const appName = "galaxy-datagen"

// App holds all application dependencies and manages lifecycle.
type App struct {
	config    *configs.Config
	appLogger loggers.Logger
	server    *http.Server
	launcher  *launchers.ExecLauncher
}

// New creates and initializes a new App instance.
func New(config *configs.Config) (*App, error) {
	appLogger, err := loggers.New(config.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger = appLogger.With().
		Str(loggers.FieldApp, appName).
		Logger()

	dispatchService, launcher, err := NewDispatchService(config, appLogger)
	if err != nil {
		return nil, err
	}

	// Initialize data set downloads
	fileStorage, err := filestorages.NewFileStorage(config.Generator.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	datasetService := datasets.NewDatasetService(fileStorage)

	// Initialize http router
	httpLogger := appLogger.With().Str(loggers.FieldComponent, "http").Logger()
	router := internalhttp.NewRouter(dispatchService, datasetService, internalhttp.RouterOptions{
		UserHeader: config.Identity.UserHeader,
	}, httpLogger)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: time.Duration(config.Server.ReadHeaderTimeout) * time.Second,
		ReadTimeout:       time.Duration(config.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(config.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(config.Server.IdleTimeout) * time.Second,
	}

	return &App{
		config:    config,
		appLogger: appLogger,
		server:    server,
		launcher:  launcher,
	}, nil
}

// NewDispatchService wires the audit log and generator launcher from config.
// It is shared by the HTTP server and the one-shot dispatch command.
func NewDispatchService(config *configs.Config, logger loggers.Logger) (dispatchers.DispatchService, *launchers.ExecLauncher, error) {
	location, err := auditLocation(config.Audit.TimeZone)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load audit time zone: %w", err)
	}

	auditLog, err := auditlogs.NewFileAuditLog(config.Audit.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize audit log: %w", err)
	}

	launcherLogger := logger.With().Str(loggers.FieldComponent, "launcher").Logger()
	// stdout belongs to the web server in CGI mode; tracebacks go to stderr
	launcher, err := launchers.NewExecLauncher(launchers.Options{
		Command:  config.Generator.Command,
		BaseArgs: config.Generator.Args,
		WorkDir:  config.Generator.WorkDir,
		Stderr:   os.Stderr,
	}, launcherLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize generator launcher: %w", err)
	}

	now := func() time.Time { return time.Now().In(location) }
	return dispatchers.NewDispatchService(auditLog, launcher, now), launcher, nil
}

// auditLocation resolves the audit time zone; empty means server local time.
func auditLocation(timeZone string) (*time.Location, error) {
	if timeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(timeZone)
}

// Start starts the HTTP server in a blocking manner.
func (app *App) Start() error {
	app.appLogger.Info().
		Msgf("Starting %s service on port %d (log_level=%s, audit_path=%s, generator=%s, proxy_protocol=%t)",
			appName,
			app.config.Server.Port,
			app.config.Log.Level,
			app.config.Audit.Path,
			app.config.Generator.Command,
			app.config.Server.ProxyProtocol)

	listener, err := net.Listen("tcp", app.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.server.Addr, err)
	}
	if app.config.Server.ProxyProtocol {
		// RemoteAddr becomes the client announced by the load balancer
		listener = &proxyproto.Listener{Listener: listener}
	}

	return app.server.Serve(listener)
}

// Shutdown gracefully shuts down the application.
func (app *App) Shutdown(ctx context.Context) error {
	// 1) Shutdown server
	app.appLogger.Info().Msg("Shutting down server...")
	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	app.appLogger.Info().Msg("Server stopped")

	// 2) Wait for running generators to be reaped
	if err := app.launcher.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for generators failed: %w", err)
	}
	app.appLogger.Info().Msg("Generator processes reaped")

	return nil
}
