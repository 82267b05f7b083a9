package capn

import (
	"errors"
	"syscall"
)

// isEPIPE reports whether err ultimately wraps a broken-pipe error, which
// is classified as NETWORK_UNREACHABLE.
func isEPIPE(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}
