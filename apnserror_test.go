package capn

import "testing"

// TestClassifyRoundTrip covers spec.md §8 universal property 6: for each
// status in {1,5,7,8,10}, classify(frame built from status) yields the
// §4.D mapping.
func TestClassifyRoundTrip(t *testing.T) {
	cases := []struct {
		status uint8
		want   ErrorCode
	}{
		{appleStatusProcessingError, ErrProcessingError},
		{appleStatusInvalidTokenSize, ErrTokenInvalid},
		{appleStatusInvalidPayload, ErrInvalidPayloadSize},
		{appleStatusInvalidToken, ErrTokenInvalid},
		{appleStatusServiceShutdown, ErrServiceShutdown},
	}
	for _, tc := range cases {
		buf := make([]byte, errorFrameSize)
		buf[0] = apnsErrorCommand
		buf[1] = tc.status
		buf[5] = 7 // arbitrary id, irrelevant to classification
		frame := parseAPNSErrorFrame(buf)
		if got := frame.classify(); got != tc.want {
			t.Errorf("status %d: classify() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestClassifyNonErrorCommandIsUnknown(t *testing.T) {
	frame := apnsErrorFrame{Command: 0, Status: appleStatusInvalidToken, ID: 3}
	if got := frame.classify(); got != ErrUnknown {
		t.Fatalf("classify() = %v, want ErrUnknown for a non-command-8 frame", got)
	}
}

func TestParseAPNSErrorFrame(t *testing.T) {
	buf := []byte{apnsErrorCommand, appleStatusServiceShutdown, 0, 0, 1, 44}
	frame := parseAPNSErrorFrame(buf)
	if frame.Command != apnsErrorCommand || frame.Status != appleStatusServiceShutdown || frame.ID != 300 {
		t.Fatalf("parsed %+v, want {Command:8 Status:10 ID:300}", frame)
	}
}
