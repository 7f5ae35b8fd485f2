//go:build !unix

package auditlogs

import "os"

// Without flock only the in-process mutex serializes appends.
func lockExclusive(*os.File) error { return nil }

func unlock(*os.File) error { return nil }
