// Package apnsmsg builds the enhanced binary notification frame: it turns
// a JSON payload into the item-framed wire format that capn.Client mutates
// in place per token (setting only the id and device token for each send).
package apnsmsg

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// MaxPayloadSize is the largest JSON payload Apple accepts in the legacy
// binary protocol.
const MaxPayloadSize = 2048

// Errors returned by Encode.
var (
	ErrPayloadEmpty    = errors.New("apnsmsg: payload is empty")
	ErrPayloadTooLarge = errors.New("apnsmsg: payload exceeds maximum size")
)

const (
	itemToken      = 1
	itemPayload    = 2
	itemID         = 3
	itemExpiration = 4
	itemPriority   = 5

	frameCommand = 2
)

// Message is a mutable binary frame: everything but the notification id
// and device token is fixed once Encode returns it, and SetID/SetToken
// mutate those two fields in place for reuse across an entire token batch.
type Message struct {
	payload    []byte
	expiration uint32
	priority   uint8

	id    uint32
	token [32]byte
}

// Encode builds a reusable Message from a JSON payload, an optional
// expiration (zero means "no expiry"), and an optional priority (0, 5, or
// 10; any other value is treated as unset).
func Encode(payload []byte, expiration uint32, priority uint8) (*Message, error) {
	if len(payload) == 0 {
		return nil, ErrPayloadEmpty
	}
	if len(payload) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}
	if priority != 5 && priority != 10 {
		priority = 0
	}
	return &Message{payload: payload, expiration: expiration, priority: priority}, nil
}

// SetID sets the 32-bit notification id field in place.
func (m *Message) SetID(id uint32) { m.id = id }

// SetToken sets the 32-byte device token field in place.
func (m *Message) SetToken(token [32]byte) { m.token = token }

// Bytes renders the current state of the frame to its wire
// representation: an item-framed "enhanced notification format" packet,
// command byte 2 followed by a 4-byte big-endian frame length and the
// TLV items.
func (m *Message) Bytes() []byte {
	items := new(bytes.Buffer)
	writeItem(items, itemToken, m.token[:])
	writeItem(items, itemPayload, m.payload)
	writeItem(items, itemID, be32(m.id))
	if m.expiration != 0 {
		writeItem(items, itemExpiration, be32(m.expiration))
	}
	if m.priority != 0 {
		writeItem(items, itemPriority, []byte{m.priority})
	}

	frame := new(bytes.Buffer)
	frame.WriteByte(frameCommand)
	binary.Write(frame, binary.BigEndian, uint32(items.Len()))
	frame.Write(items.Bytes())
	return frame.Bytes()
}

func writeItem(buf *bytes.Buffer, id uint8, data []byte) {
	buf.WriteByte(id)
	binary.Write(buf, binary.BigEndian, uint16(len(data)))
	buf.Write(data)
}

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
