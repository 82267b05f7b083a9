package capn

import (
	"crypto/tls"
	"fmt"
	"sync"
)

// Mode selects which of Apple's two independently certified environments
// a Client talks to.
type Mode int

const (
	ModeProduction Mode = iota
	ModeSandbox
)

// Options is the behavior bitset controlling how Send reacts to errors and
// how the default log sink is routed.
type Options uint8

const (
	// OptReconnectOnError makes Send automatically reconnect and resume
	// after a recoverable error (CONNECTION_CLOSED, SERVICE_SHUTDOWN,
	// TOKEN_INVALID). Without it, any error terminates Send.
	OptReconnectOnError Options = 1 << iota
	// OptLogToStderr routes the default log sink (see logsink.go) to
	// stderr when no custom log callback has been set.
	OptLogToStderr
)

// LogLevel is a bitset: bits are AND-tested, not compared as a severity
// threshold, so a caller can ask for just ERROR+DEBUG without INFO.
type LogLevel uint8

const (
	LogInfo LogLevel = 1 << iota
	LogError
	LogDebug
)

// LogFunc is the log callback: side-effect-free with respect to Client
// state, invoked with the already-rendered message.
type LogFunc func(level LogLevel, message string)

// InvalidTokenFunc is invoked exactly once per token Send rejects during
// a batch.
type InvalidTokenFunc func(token string, index int)

// libraryInit guards process-wide, idempotent setup. There is presently
// nothing to initialize beyond making the idempotence itself observable,
// but the hook exists so a future platform dependency (e.g. a global
// crypto/tls session cache) has one place to live.
var libraryInit sync.Once

// LibraryInit performs idempotent, process-wide setup. Calling it
// multiple times, concurrently or not, has the same effect as calling it
// once.
func LibraryInit() { libraryInit.Do(func() {}) }

// Client is the process-local handle for one gateway connection. It holds
// credentials, mode, options, callbacks, and (when open) a single TLS
// connection. A Client is not safe for concurrent use.
type Client struct {
	creds    Credentials
	mode     Mode
	options  Options
	logLevel LogLevel

	logFunc          LogFunc
	invalidTokenFunc InvalidTokenFunc

	conn         *tls.Conn
	feedbackFlag bool

	// Test-only dial seam: when testDialAddr is set, dial connects there
	// instead of the real gateway host and skips server certificate
	// verification, since tests run against an in-process mock gateway
	// with a self-signed certificate. Neither field is reachable from
	// outside the package.
	testDialAddr           string
	testInsecureSkipVerify bool
}

// NewClient returns a Client with safe defaults: production mode,
// log_level=ERROR, no credentials.
func NewClient() *Client {
	LibraryInit()
	return &Client{
		mode:     ModeProduction,
		logLevel: LogError,
	}
}

// SetCertificate configures PEM credentials. keyPassword may be empty.
// Returns an error if credentials are immutable because a transport is
// currently open.
func (c *Client) SetCertificate(certFile, keyFile, keyPassword string) error {
	if c.conn != nil {
		return newError(ErrFailedInit, fmt.Errorf("credentials are immutable while connected"))
	}
	c.creds = Credentials{CertFile: certFile, KeyFile: keyFile, KeyPassword: keyPassword}
	return nil
}

// SetPKCS12 configures PKCS#12 credentials. password is required.
func (c *Client) SetPKCS12(path, password string) error {
	if c.conn != nil {
		return newError(ErrFailedInit, fmt.Errorf("credentials are immutable while connected"))
	}
	c.creds = Credentials{P12File: path, P12Password: password}
	return nil
}

// SetMode selects the sandbox or production gateway for subsequent
// Connect/FeedbackConnect calls.
func (c *Client) SetMode(m Mode) { c.mode = m }

// SetBehavior replaces the behavior options bitset.
func (c *Client) SetBehavior(o Options) { c.options = o }

// SetLogLevel replaces the log_level bitset tested by log.
func (c *Client) SetLogLevel(l LogLevel) { c.logLevel = l }

// SetLogCallback installs a custom log sink. Passing nil restores the
// default sink (see logsink.go).
func (c *Client) SetLogCallback(fn LogFunc) { c.logFunc = fn }

// SetInvalidTokenCallback installs the callback Send invokes once per
// rejected token.
func (c *Client) SetInvalidTokenCallback(fn InvalidTokenFunc) { c.invalidTokenFunc = fn }

// log dispatches to the custom callback if set, else the default sink,
// but only when the requested level bit is set in logLevel.
func (c *Client) log(level LogLevel, message string) {
	if c.logLevel&level == 0 {
		return
	}
	if c.logFunc != nil {
		c.logFunc(level, message)
		return
	}
	defaultLog(c, level, message)
}

func (c *Client) logf(level LogLevel, format string, args ...interface{}) {
	if c.logLevel&level == 0 {
		return
	}
	c.log(level, fmt.Sprintf(format, args...))
}

// Free closes the transport, if any, and releases credentials. The
// Client must not be used afterward.
func (c *Client) Free() {
	c.Close()
	c.creds = Credentials{}
	c.logFunc = nil
	c.invalidTokenFunc = nil
}
