package http

import (
	"net"
	"net/http"
	"strings"
)

const (
	headerRequestID    = "x-request-id"
	headerForwardedFor = "x-forwarded-for"
	headerContentType  = "content-type"
)

const queryNumParticles = "num_particles"

func requestID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(headerRequestID))
}

func setRequestID(r *http.Request, requestID string) {
	r.Header.Set(headerRequestID, requestID)
}

// forwardedFor joins repeated X-Forwarded-For headers into one list, the way
// front-end servers hand them to CGI scripts.
func forwardedFor(r *http.Request) string {
	return strings.Join(r.Header.Values(headerForwardedFor), ", ")
}

// remoteIP is the direct-connection address without its port.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// authUser is the user authenticated by the front-end server: the basic-auth
// user name, else the trusted user header. Credentials are not verified here.
func authUser(r *http.Request, userHeader string) string {
	if user, _, ok := r.BasicAuth(); ok {
		return user
	}
	if userHeader == "" {
		return ""
	}
	return strings.TrimSpace(r.Header.Get(userHeader))
}
