package http

import (
	"io"
	"net/http"
	"strconv"

	"galaxy-datagen/internal/datasets"

	"github.com/go-chi/chi/v5"
)

const routeParamDatasetName = "name"

type datasetHandler struct {
	datasetService datasets.DatasetService
}

func NewDatasetHandler(datasetService datasets.DatasetService) AppHttpHandler {
	return &datasetHandler{datasetService: datasetService}
}

// Handle processes GET /datasets/{name} requests.
func (h *datasetHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	name := chi.URLParam(r, routeParamDatasetName)

	obj, err := h.datasetService.Open(r.Context(), name)
	if err != nil {
		return err
	}
	defer func() { _ = obj.Close() }()

	w.Header().Set(headerContentType, "text/csv; charset=utf-8")

	// files support ranges and conditional requests
	if rs, ok := obj.ReadCloser.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, obj.ModTime, rs)
		return nil
	}

	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, obj)
	return nil
}
