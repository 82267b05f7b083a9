package capn

import (
	"crypto/tls"
	"net"
)

func (c *Client) pushHost() string {
	if c.mode == ModeSandbox {
		return serverPushSandbox
	}
	return serverPush
}

func (c *Client) feedbackHost() string {
	if c.mode == ModeSandbox {
		return serverFeedbackSandbox
	}
	return serverFeedback
}

// Connect opens a TLS connection to the delivery gateway selected by the
// Client's mode. It is idempotent when a connection is already
// established.
func (c *Client) Connect() error {
	if c.conn != nil && !c.feedbackFlag {
		return nil
	}
	conn, err := c.dial(c.pushHost())
	if err != nil {
		return err
	}
	c.conn = conn
	c.feedbackFlag = false
	return nil
}

// FeedbackConnect opens a TLS connection to the feedback gateway selected
// by the Client's mode.
func (c *Client) FeedbackConnect() error {
	conn, err := c.dial(c.feedbackHost())
	if err != nil {
		return err
	}
	c.conn = conn
	c.feedbackFlag = true
	return nil
}

// dial resolves and connects the TCP socket, builds the TLS context from
// credentials, and performs the handshake. Address resolution and
// connection are combined into one net.Dialer.Dial call, which already
// tries resolved addresses in order internally.
func (c *Client) dial(addr string) (*tls.Conn, error) {
	cert, certErr := c.creds.load()
	if certErr != nil {
		return nil, certErr
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, newError(ErrCouldNotInitializeConnection, err)
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	tlsConfig := &tls.Config{
		Certificates:       []tls.Certificate{cert},
		ServerName:         host,
		InsecureSkipVerify: c.testInsecureSkipVerify,
	}

	dialAddr := addr
	if c.testDialAddr != "" {
		dialAddr = c.testDialAddr
	}
	rawConn, err := dialer.Dial("tcp", dialAddr)
	if err != nil {
		return nil, newError(ErrCouldNotInitializeConnection, err)
	}

	conn := tls.Client(rawConn, tlsConfig)
	if err := conn.Handshake(); err != nil {
		rawConn.Close()
		return nil, newError(ErrCouldNotInitializeSSLConnection, err)
	}

	c.logHandshake(conn)
	if info := certificateInfo(cert); info != nil {
		c.logf(LogInfo, "certificate subject=%q issuer-is-apple=%t bundle=%q",
			info.CName, info.IsApple, info.BundleID)
	}
	return conn, nil
}

// logHandshake forwards the TLS handshake state, and the peer
// certificate's subject and issuer, to the log sink at INFO.
func (c *Client) logHandshake(conn *tls.Conn) {
	state := conn.ConnectionState()
	c.logf(LogInfo, "tls handshake complete remote=%s version=%#x resumed=%t cipher=%#x",
		conn.RemoteAddr(), state.Version, state.DidResume, state.CipherSuite)
	if len(state.PeerCertificates) > 0 {
		peer := state.PeerCertificates[0]
		c.logf(LogInfo, "peer certificate subject=%q issuer=%q",
			peer.Subject.String(), peer.Issuer.String())
	}
}
