package capn

import (
	"time"

	"github.com/bryant1410/libcapn/apnsmsg"
	"github.com/bryant1410/libcapn/apnstoken"
)

// frameResult is what the background error-frame reader delivers: either
// a parsed 6-byte APNs error frame, or a local transport error that
// happened while trying to read one.
type frameResult struct {
	frame apnsErrorFrame
	err   error
}

// startErrorReader spawns the persistent, whole-pass background reader
// for the send loop's read+write multiplex. Apple sends at most one error
// frame per connection and closes immediately after, so one blocking read
// (no deadline — it waits for data, EOF, or Close) is all this pass will
// ever need; the channel is buffered so the single send never blocks.
//
// Since net.Conn exposes no level-triggered readiness API, the read half
// runs in its own goroutine and the send loop races it against each
// outgoing write via Go's select over channels. The returned stop
// function cancels the pending read (by pushing the read deadline into
// the past, the standard way to interrupt a blocked net.Conn.Read from
// another goroutine) and waits for the goroutine to exit, so callers can
// guarantee no reader is left running on the connection before reusing
// it for another pass.
func (c *Client) startErrorReader() (<-chan frameResult, func()) {
	ch := make(chan frameResult, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, errorFrameSize)
		n, err := tlsRead(c.conn, time.Time{}, buf)
		if err != nil {
			ch <- frameResult{err: err}
			return
		}
		if n < errorFrameSize {
			// Apple sends the frame atomically; a short read here means
			// something went wrong in transit.
			ch <- frameResult{err: newError(ErrSSLReadFailed, nil)}
			return
		}
		ch <- frameResult{frame: parseAPNSErrorFrame(buf)}
	}()
	stop := func() {
		c.conn.SetReadDeadline(time.Now())
		<-done
	}
	return ch, stop
}

// sendToken writes one frame, racing the write against errCh. A bare
// multiplex timeout (no write completion and no frame yet) only re-arms
// the wait, but the write itself carries a sendSelectTimeout deadline, so
// a write that cannot complete within that window fails with
// CONNECTION_TIMEDOUT.
func (c *Client) sendToken(data []byte, errCh <-chan frameResult) (frame *apnsErrorFrame, err error) {
	writeCh := make(chan error, 1)
	go func() {
		writeCh <- tlsWrite(c.conn, time.Now().Add(sendSelectTimeout), data)
	}()
	for {
		select {
		case res := <-errCh:
			if res.err != nil {
				return nil, res.err
			}
			f := res.frame
			return &f, nil
		case werr := <-writeCh:
			return nil, werr
		case <-time.After(sendSelectTimeout):
			continue
		}
	}
}

// sendPass writes every token from start to the end of the list,
// watching errCh throughout, then performs the post-batch drain wait.
// index is only meaningful when frame is nil (a local transport error)
// and names the token index being sent when it happened; when frame is
// non-nil, the frame's own ID field is the authoritative failed index.
func (c *Client) sendPass(msg *apnsmsg.Message, tokens []string, start int) (success bool, frame *apnsErrorFrame, localErr error, index int) {
	errCh, stopReader := c.startErrorReader()
	defer stopReader()

	for i := start; i < len(tokens); i++ {
		// Non-blocking check: if the error frame already arrived, stop
		// issuing further notifications instead of racing into another
		// write.
		select {
		case res := <-errCh:
			if res.err != nil {
				return false, nil, res.err, i
			}
			f := res.frame
			return false, &f, nil, i
		default:
		}

		bin, tokErr := apnstoken.ToBinary(tokens[i])
		if tokErr != nil {
			return false, nil, newError(ErrUnknown, tokErr), i
		}
		msg.SetID(uint32(i))
		msg.SetToken(bin)

		f, err := c.sendToken(msg.Bytes(), errCh)
		if f != nil {
			return false, f, nil, i
		}
		if err != nil {
			return false, nil, err, i
		}
	}

	// Drain wait: Apple may emit the error frame only after the last
	// write of the batch.
	select {
	case res := <-errCh:
		if res.err != nil {
			return false, nil, res.err, len(tokens) - 1
		}
		f := res.frame
		return false, &f, nil, len(tokens) - 1
	case <-time.After(drainTimeout):
		return true, nil, nil, -1
	}
}

// Send frames payload once, then streams it to every token in the batch,
// reconnecting and resuming after recoverable errors when
// OptReconnectOnError is set. tokens must be non-empty; Send requires the
// transport to be open and not currently the feedback connection.
func (c *Client) Send(payload []byte, tokens []string) ([]string, error) {
	if c.conn == nil || c.feedbackFlag {
		return nil, newError(ErrNotConnected, nil)
	}
	if len(tokens) == 0 {
		return nil, newError(ErrNoTokensProvided, nil)
	}

	msg, err := apnsmsg.Encode(payload, 0, 0)
	if err != nil {
		return nil, newError(ErrInvalidPayloadSize, err)
	}

	var invalidTokens []string
	startIndex := 0
	autoReconnect := false

	for {
		if autoReconnect {
			c.Close()
			time.Sleep(reconnectBackoff)
			if err := c.Connect(); err != nil {
				return invalidTokens, err
			}
			autoReconnect = false
		}

		success, frame, localErr, idx := c.sendPass(msg, tokens, startIndex)
		if success {
			return invalidTokens, nil
		}

		var code ErrorCode
		var invalidIndex int
		if frame != nil {
			code = frame.classify()
			invalidIndex = int(frame.ID)
		} else {
			code = codeOf(localErr)
			invalidIndex = idx
		}

		if code == ErrTokenInvalid && invalidIndex >= 0 && invalidIndex < len(tokens) {
			tok := tokens[invalidIndex]
			invalidTokens = append(invalidTokens, tok)
			if c.invalidTokenFunc != nil {
				c.invalidTokenFunc(tok, invalidIndex)
			}
			c.logf(LogError, "token rejected index=%d token=%s", invalidIndex, tok)
		}

		var nextStart int
		if code == ErrTokenInvalid {
			nextStart = invalidIndex + 1
		} else {
			nextStart = invalidIndex
		}

		reconnectable := code == ErrConnectionClosed || code == ErrServiceShutdown || code == ErrTokenInvalid
		if nextStart < len(tokens) && c.options&OptReconnectOnError != 0 && reconnectable {
			startIndex = invalidIndex + 1
			autoReconnect = true
			continue
		}
		if nextStart >= len(tokens) && code == ErrTokenInvalid {
			return invalidTokens, nil
		}
		if localErr != nil {
			return invalidTokens, localErr
		}
		return invalidTokens, newError(code, nil)
	}
}
