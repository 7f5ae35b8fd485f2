package models

// DispatchRequest is one inbound generate request as seen by the dispatcher.
// It lives for a single request and is never stored.
type DispatchRequest struct {
	RawNumParticles string // num_particles exactly as received, "" when absent
	AuthUser        string // authenticated user supplied by the hosting environment
	ForwardedFor    string // X-Forwarded-For, possibly a comma-separated list
	RemoteAddr      string // direct-connection address without port
}

// DispatchResult describes a request that reached the Dispatched state.
type DispatchResult struct {
	NumParticles  int
	OutputFile    string
	ClientAddress string
	PID           int
}
