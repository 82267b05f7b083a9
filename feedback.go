package capn

import (
	"encoding/binary"
	"time"

	"github.com/bryant1410/libcapn/apnstoken"
)

// FeedbackRecord is one row of the feedback response: the time Apple
// recorded the token as permanently undeliverable, and the token itself.
type FeedbackRecord struct {
	Timestamp time.Time
	Token     string
}

// Feedback reads 38-byte records off the feedback connection, one per
// pass, until none arrives within the idle timeout, then returns
// everything collected. A timeout or a clean close from the peer both end
// the drain successfully.
func (c *Client) Feedback() ([]FeedbackRecord, error) {
	if c.conn == nil || !c.feedbackFlag {
		return nil, newError(ErrNotConnectedFeedback, nil)
	}

	var records []FeedbackRecord
	buf := make([]byte, feedbackRecordSize)
	for {
		n, err := tlsRead(c.conn, time.Now().Add(feedbackIdleTimeout), buf)
		if err != nil {
			switch codeOf(err) {
			case ErrConnectionTimedOut, ErrConnectionClosed:
				return records, nil
			default:
				return records, err
			}
		}
		if n < feedbackRecordSize {
			return records, newError(ErrSSLReadFailed, nil)
		}

		// token_len is read as part of the record but not validated; the
		// encoder on the other end always sends 32.
		ts := binary.BigEndian.Uint32(buf[0:4])
		var tok [32]byte
		copy(tok[:], buf[6:6+tokenSize])

		records = append(records, FeedbackRecord{
			Timestamp: time.Unix(int64(ts), 0),
			Token:     apnstoken.ToHex(tok),
		})
	}
}
