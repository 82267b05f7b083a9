package capn

import "encoding/binary"

// apnsErrorCommand is the single command byte Apple ever sends back: an
// error-response frame.
const apnsErrorCommand = 8

// Apple's wire-level status codes, as sent in byte 1 of the error frame.
const (
	appleStatusNoErrors         = 0
	appleStatusProcessingError  = 1
	appleStatusMissingToken     = 2
	appleStatusMissingTopic     = 3
	appleStatusMissingPayload   = 4
	appleStatusInvalidTokenSize = 5
	appleStatusInvalidTopicSize = 6
	appleStatusInvalidPayload   = 7
	appleStatusInvalidToken     = 8
	appleStatusServiceShutdown  = 10
	appleStatusNone             = 255
)

// appleErrorMessages gives a human string for each Apple status.
var appleErrorMessages = map[uint8]string{
	appleStatusNoErrors:         "no errors",
	appleStatusProcessingError:  "processing error",
	appleStatusMissingToken:     "missing device token",
	appleStatusMissingTopic:     "missing topic",
	appleStatusMissingPayload:   "missing payload",
	appleStatusInvalidTokenSize: "invalid token size",
	appleStatusInvalidTopicSize: "invalid topic size",
	appleStatusInvalidPayload:   "invalid payload size",
	appleStatusInvalidToken:     "invalid token",
	appleStatusServiceShutdown:  "shutdown",
	appleStatusNone:             "none (unknown)",
}

// apnsErrorFrame is the parsed 6-byte error response from the gateway.
type apnsErrorFrame struct {
	Command uint8
	Status  uint8
	ID      uint32
}

// parseAPNSErrorFrame parses a 6-byte error response:
// [command(1)=8, status(1), id(4 big-endian)].
func parseAPNSErrorFrame(buf []byte) apnsErrorFrame {
	return apnsErrorFrame{
		Command: buf[0],
		Status:  buf[1],
		ID:      binary.BigEndian.Uint32(buf[2:6]),
	}
}

// classify maps an Apple error frame to the local error taxonomy. If
// Command isn't the error command, the frame is unrecognized and
// ErrUnknown is returned.
func (f apnsErrorFrame) classify() ErrorCode {
	if f.Command != apnsErrorCommand {
		return ErrUnknown
	}
	switch f.Status {
	case appleStatusProcessingError:
		return ErrProcessingError
	case appleStatusInvalidPayload:
		return ErrInvalidPayloadSize
	case appleStatusInvalidToken, appleStatusInvalidTokenSize:
		return ErrTokenInvalid
	case appleStatusServiceShutdown:
		return ErrServiceShutdown
	default:
		return ErrUnknown
	}
}
