package http

import (
	"net/http"

	"galaxy-datagen/internal/datasets"
	"galaxy-datagen/internal/dispatchers"
	"galaxy-datagen/internal/shared/loggers"
	"galaxy-datagen/internal/shared/metrics"

	"github.com/go-chi/chi/v5"
)

// RouterOptions holds request-handling settings taken from configuration.
type RouterOptions struct {
	// UserHeader names the header carrying the user authenticated by the
	// front-end server; basic-auth credentials take precedence.
	UserHeader string
}

// NewRouter creates and configures the HTTP router.
func NewRouter(dispatchService dispatchers.DispatchService, datasetService datasets.DatasetService, opts RouterOptions, httpLogger loggers.Logger) http.Handler {
	router := chi.NewRouter()
	setupMiddleware(router, httpLogger)

	generate := errorHandlingAdapter(NewGenerateHandler(dispatchService, opts.UserHeader))
	dataset := errorHandlingAdapter(NewDatasetHandler(datasetService))

	router.Get("/generate", generate)
	router.Get("/generate.php", generate)
	router.Get("/datasets/{"+routeParamDatasetName+"}", dataset)
	router.Get("/metrics", metrics.PromHTTP.Handler().ServeHTTP)

	return router
}
