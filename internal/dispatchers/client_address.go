package dispatchers

import "strings"

// ResolveClientAddress picks the address recorded for a request. A non-empty
// forwarding header wins over the direct-connection address: with a comma its
// first entry is returned trimmed, without one it is returned as is.
func ResolveClientAddress(forwardedFor, remoteAddr string) string {
	if forwardedFor == "" {
		return remoteAddr
	}
	if first, _, found := strings.Cut(forwardedFor, ","); found {
		return strings.TrimSpace(first)
	}
	return forwardedFor
}
