package capn

import "testing"

func TestLibraryInitIdempotent(t *testing.T) {
	LibraryInit()
	LibraryInit()
	LibraryInit()
}

func TestCloseIsIdempotent(t *testing.T) {
	c := NewClient()
	if err := c.Close(); err != nil {
		t.Fatalf("close on a never-connected client: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if c.conn != nil || c.feedbackFlag {
		t.Fatal("observable state should be unchanged across repeat closes")
	}
}

func TestLogLevelBitsAreANDTested(t *testing.T) {
	c := NewClient()
	var got []string
	c.SetLogCallback(func(level LogLevel, msg string) {
		got = append(got, msg)
	})
	c.SetLogLevel(LogError)

	c.log(LogInfo, "info message")
	c.log(LogError, "error message")

	if len(got) != 1 || got[0] != "error message" {
		t.Fatalf("log callbacks = %v, want only the ERROR-level message", got)
	}
}

func TestFreeReleasesCallbacksAndCredentials(t *testing.T) {
	c := NewClient()
	c.SetLogCallback(func(LogLevel, string) {})
	c.SetInvalidTokenCallback(func(string, int) {})
	c.creds = Credentials{CertFile: "x.pem"}

	c.Free()

	if c.logFunc != nil || c.invalidTokenFunc != nil {
		t.Fatal("Free should clear both callbacks")
	}
	if c.creds != (Credentials{}) {
		t.Fatal("Free should release credentials")
	}
}
