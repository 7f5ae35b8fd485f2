package http

import (
	"net/http"

	"galaxy-datagen/internal/dispatchers"
	"galaxy-datagen/internal/models"
)

// GenerateResponse is returned once the generator has been started.
type GenerateResponse struct {
	RequestID     string `json:"requestId"`
	NumParticles  int    `json:"numParticles"`
	OutputFile    string `json:"outputFile"`
	ClientAddress string `json:"clientAddress"`
}

type generateHandler struct {
	dispatchService dispatchers.DispatchService
	userHeader      string
}

func NewGenerateHandler(dispatchService dispatchers.DispatchService, userHeader string) AppHttpHandler {
	return &generateHandler{
		dispatchService: dispatchService,
		userHeader:      userHeader,
	}
}

// Handle processes GET /generate?num_particles=N requests.
func (h *generateHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	result, err := h.dispatchService.Dispatch(r.Context(), &models.DispatchRequest{
		RawNumParticles: r.URL.Query().Get(queryNumParticles),
		AuthUser:        authUser(r, h.userHeader),
		ForwardedFor:    forwardedFor(r),
		RemoteAddr:      remoteIP(r),
	})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusAccepted, GenerateResponse{
		RequestID:     requestID(r),
		NumParticles:  result.NumParticles,
		OutputFile:    result.OutputFile,
		ClientAddress: result.ClientAddress,
	})
	return nil
}
