package capn

import "time"

// Gateway addresses for the four legacy APNs services.
const (
	serverPush            = "gateway.push.apple.com:2195"
	serverPushSandbox     = "gateway.sandbox.push.apple.com:2195"
	serverFeedback        = "feedback.push.apple.com:2196"
	serverFeedbackSandbox = "feedback.sandbox.push.apple.com:2196"
)

// Fixed timeouts from the delivery and feedback algorithms. These are not
// meant to be tuned by callers; they come straight from the protocol
// design, not from load testing, so they stay unexported constants.
const (
	// sendSelectTimeout bounds each iteration of the inner send pass's
	// read+write multiplex.
	sendSelectTimeout = 10 * time.Second
	// drainTimeout bounds the post-batch wait for a trailing error frame.
	drainTimeout = 1 * time.Second
	// feedbackIdleTimeout is how long Feedback waits for a record before
	// concluding the stream is empty.
	feedbackIdleTimeout = 3 * time.Second
	// reconnectBackoff is the fixed delay before an auto-reconnect.
	reconnectBackoff = 1 * time.Second
	// dialTimeout bounds the initial TCP connect.
	dialTimeout = 30 * time.Second
)

// errorFrameSize is the size of an APNs error frame: cmd(1) status(1) id(4).
const errorFrameSize = 6

// feedbackRecordSize is the size of a feedback record: ts(4) len(2) token(32).
const feedbackRecordSize = 38

// tokenSize is the length, in bytes, of a decoded device token.
const tokenSize = 32
