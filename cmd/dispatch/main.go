// Command dispatch handles a single generate request passed the way a web
// server hands requests to CGI scripts, then exits: 0 once the generator has
// been started, 1 when the request was rejected or could not be served.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"

	"galaxy-datagen/internal/app"
	"galaxy-datagen/internal/models"
	"galaxy-datagen/internal/shared/configs"
	"galaxy-datagen/internal/shared/loggers"
	"galaxy-datagen/internal/shared/svcerrors"
)

const queryNumParticles = "num_particles"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("dispatch", flag.ContinueOnError)
	configPath := flags.String("config", "./configs/configs.yml", "path to the YAML config file")
	numParticles := flags.String("num-particles", "", "requested particle count, overrides QUERY_STRING")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	if err := configs.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		return 1
	}

	cfg, err := configs.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// stdout belongs to the web server in CGI mode
	logger, err := loggers.NewWithWriter(cfg.Log.Level, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	logger = logger.With().
		Str(loggers.FieldApp, "galaxy-datagen").
		Str(loggers.FieldComponent, "dispatcher").
		Logger()

	dispatchService, _, err := app.NewDispatchService(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize dispatcher")
		return 1
	}

	req, err := requestFromEnv(os.Getenv)
	if err != nil {
		logger.Warn().Err(err).Msg("malformed query string")
	}
	if *numParticles != "" {
		req.RawNumParticles = *numParticles
	}

	ctx := logger.WithContext(context.Background())
	result, err := dispatchService.Dispatch(ctx, req)
	if err != nil {
		event := logger.Error()
		if svcErr, ok := svcerrors.AsServiceError(err); ok {
			if svcErr.IsInvalidArgument() {
				event = logger.Info()
			}
			event = event.Str(loggers.FieldErrorCode, svcErr.Code)
		}
		event.Err(err).Msg("request not dispatched")
		return 1
	}

	logger.Info().
		Int(loggers.FieldNumParticles, result.NumParticles).
		Int(loggers.FieldPID, result.PID).
		Msgf("generating %s", result.OutputFile)
	return 0
}

// requestFromEnv reads a dispatch request from CGI meta-variables. A query
// string that fails to parse still yields every pair that did parse.
func requestFromEnv(getenv func(string) string) (*models.DispatchRequest, error) {
	query, err := url.ParseQuery(getenv("QUERY_STRING"))

	authUser := getenv("REMOTE_USER")
	if authUser == "" {
		authUser = getenv("PHP_AUTH_USER")
	}

	return &models.DispatchRequest{
		RawNumParticles: query.Get(queryNumParticles),
		AuthUser:        authUser,
		ForwardedFor:    getenv("HTTP_X_FORWARDED_FOR"),
		RemoteAddr:      getenv("REMOTE_ADDR"),
	}, err
}
