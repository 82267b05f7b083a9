package capn

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/bryant1410/libcapn/apnstoken"
	"github.com/kr/pretty"
)

func writeFeedbackRecord(conn net.Conn, ts uint32, token [32]byte) {
	buf := make([]byte, feedbackRecordSize)
	binary.BigEndian.PutUint32(buf[0:4], ts)
	binary.BigEndian.PutUint16(buf[4:6], tokenSize)
	copy(buf[6:6+tokenSize], token[:])
	conn.Write(buf)
}

// TestFeedbackDrainsUntilIdle covers S5: two records arrive back-to-back,
// then the gateway stalls; Feedback must return both once the idle
// timeout elapses, per the drain-until-idle choice this package makes
// for the "single record vs drain" open question.
func TestFeedbackDrainsUntilIdle(t *testing.T) {
	tokX, _ := apnstoken.ToBinary(repeatHex("a"))
	tokY, _ := apnstoken.ToBinary(repeatHex("b"))

	addr, stop := newMockGateway(t, func(conn net.Conn) {
		defer conn.Close()
		writeFeedbackRecord(conn, 1000, tokX)
		writeFeedbackRecord(conn, 2000, tokY)
		time.Sleep(10 * time.Second)
	})
	defer stop()

	c := testClient(t, addr)
	if err := c.FeedbackConnect(); err != nil {
		t.Fatalf("feedback connect: %v", err)
	}
	defer c.Close()

	start := time.Now()
	records, err := c.Feedback()
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %v, want 2", records)
	}
	if records[0].Token != apnstoken.ToHex(tokX) || records[1].Token != apnstoken.ToHex(tokY) {
		t.Fatalf("unexpected tokens:\n%s", pretty.Sprint(records))
	}
	if elapsed < feedbackIdleTimeout {
		t.Fatalf("returned after %v, want at least the idle timeout", elapsed)
	}
}

// TestFeedbackEmptyReturnsAfterIdleTimeout covers the "no data arrives"
// boundary behavior: Feedback returns an empty list after ~3s, not an
// error.
func TestFeedbackEmptyReturnsAfterIdleTimeout(t *testing.T) {
	addr, stop := newMockGateway(t, func(conn net.Conn) {
		defer conn.Close()
		time.Sleep(10 * time.Second)
	})
	defer stop()

	c := testClient(t, addr)
	if err := c.FeedbackConnect(); err != nil {
		t.Fatalf("feedback connect: %v", err)
	}
	defer c.Close()

	records, err := c.Feedback()
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %v, want none", records)
	}
}

// TestFeedbackRequiresFeedbackConnection checks the precondition from
// spec.md §4.F.
func TestFeedbackRequiresFeedbackConnection(t *testing.T) {
	c := NewClient()
	if _, err := c.Feedback(); codeOf(err) != ErrNotConnectedFeedback {
		t.Fatalf("code = %v, want ErrNotConnectedFeedback", codeOf(err))
	}
}

func repeatHex(s string) string {
	out := make([]byte, 0, 64)
	for len(out) < 64 {
		out = append(out, s...)
	}
	return string(out[:64])
}
