package ulid

import (
	"github.com/oklog/ulid/v2"
)

// NewRequestID returns a lexically sortable request id for requests that
// arrive without an x-request-id header. Ids from one process are strictly
// increasing, even within the same millisecond.
var NewRequestID = func() string {
	return ulid.Make().String()
}
