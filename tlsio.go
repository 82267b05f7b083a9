package capn

import (
	"io"
	"net"
	"time"
)

// tlsWrite writes data in full before the caller's deadline, mapping
// failures (including a deadline timeout) to the local error taxonomy. Non-fatal, transient conditions ("want read",
// "want write", EINTR) don't appear as distinct states in Go's net.Conn —
// Write either blocks until progress, returns a partial write, or fails —
// so the retry loop here only needs to handle the partial-write case.
func tlsWrite(conn net.Conn, deadline time.Time, data []byte) error {
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return newError(ErrSSLWriteFailed, err)
	}
	for len(data) > 0 {
		n, err := conn.Write(data)
		if err != nil {
			return newError(classifyIOError(err, ErrSSLWriteFailed), err)
		}
		data = data[n:]
	}
	return nil
}

// tlsRead performs one read into buf, returning the number of bytes read.
// A short read (n < len(buf)) is not itself an error; send.go treats a
// short read of the 6-byte error frame as SSL_READ_FAILED, since Apple
// sends the frame atomically.
func tlsRead(conn net.Conn, deadline time.Time, buf []byte) (int, error) {
	if err := conn.SetReadDeadline(deadline); err != nil {
		return 0, newError(ErrSSLReadFailed, err)
	}
	n, err := conn.Read(buf)
	if err != nil {
		return n, newError(classifyIOError(err, ErrSSLReadFailed), err)
	}
	return n, nil
}

// classifyIOError maps a net.Conn error to the local taxonomy. fallback
// is the generic SSL_WRITE_FAILED/SSL_READ_FAILED code for the direction
// that called in.
func classifyIOError(err error, fallback ErrorCode) ErrorCode {
	if err == nil {
		return ErrNone
	}
	if err == io.EOF {
		return ErrConnectionClosed
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return ErrConnectionTimedOut
	}
	if isEPIPE(err) {
		return ErrNetworkUnreachable
	}
	return fallback
}
