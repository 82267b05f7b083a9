// Package capn implements a client for Apple's legacy binary Push
// Notification service and its companion Feedback service.
//
// The protocol predates HTTP/2 APNs: a persistent TLS connection streams
// framed notifications to the gateway, and the gateway reports a rejected
// notification asynchronously, by sending a 6-byte error frame and closing
// the connection. This package frames notifications, multiplexes the read
// of that error frame with the write of outgoing notifications, and
// reconnects to resume delivery at the right offset.
//
// A Client is not safe for concurrent use. Exactly one of Send, Feedback,
// Connect or Close should be in flight at a time.
package capn
