package capn

import (
	"io"
	"os"
	"sync"

	uniqushlog "github.com/uniqush/log"
)

// defaultLog is the log sink used when a Client has no custom
// SetLogCallback installed. It adapts the bitset log level into
// github.com/uniqush/log's ordinal severity levels, so the fallback path
// still exercises a real structured logger rather than a bare
// fmt.Println.
//
// The public callback type stays a plain function value, so this sink
// lives behind that function rather than being exposed directly.
func defaultLog(c *Client, level LogLevel, message string) {
	logger := sinkFor(c.options&OptLogToStderr != 0)
	switch {
	case level&LogDebug != 0:
		logger.Debug(message)
	case level&LogError != 0:
		logger.Error(message)
	default:
		logger.Info(message)
	}
}

var (
	sinkMu      sync.Mutex
	stderrSink  uniqushlog.Logger
	discardSink uniqushlog.Logger
)

// sinkFor lazily builds (and caches) the stderr or discard sink. Built at
// LOGLEVEL_DEBUG so every bit the Client's own AND-test already filtered
// reaches the logger.
func sinkFor(toStderr bool) uniqushlog.Logger {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if toStderr {
		if stderrSink == nil {
			stderrSink = uniqushlog.NewLogger(os.Stderr, "capn ", uniqushlog.LOGLEVEL_DEBUG)
		}
		return stderrSink
	}
	if discardSink == nil {
		discardSink = uniqushlog.NewLogger(io.Discard, "capn ", uniqushlog.LOGLEVEL_DEBUG)
	}
	return discardSink
}
