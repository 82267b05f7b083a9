package capn

import (
	"encoding/json"
	"fmt"
	"os"
)

// fileConfig is the on-disk shape a Client can be built from: credentials
// and mode bundled into one JSON document, along with the bitset options
// and log level.
type fileConfig struct {
	Mode        string   `json:"mode"`
	Options     []string `json:"options"`
	LogLevel    []string `json:"log_level"`
	CertFile    string   `json:"cert_file"`
	KeyFile     string   `json:"key_file"`
	KeyPassword string   `json:"key_password"`
	P12File     string   `json:"p12_file"`
	P12Password string   `json:"p12_password"`
}

var modeByName = map[string]Mode{
	"production": ModeProduction,
	"sandbox":    ModeSandbox,
}

var optionByName = map[string]Options{
	"reconnect_on_error": OptReconnectOnError,
	"log_to_stderr":      OptLogToStderr,
}

var logLevelByName = map[string]LogLevel{
	"info":  LogInfo,
	"error": LogError,
	"debug": LogDebug,
}

// LoadConfig reads a JSON configuration file and returns a ready-to-use
// Client: mode, behavior options, log level, and either PEM or PKCS#12
// credentials, whichever the file names.
func LoadConfig(filename string) (*Client, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, newError(ErrFailedInit, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, newError(ErrFailedInit, err)
	}

	c := NewClient()

	if fc.Mode != "" {
		mode, ok := modeByName[fc.Mode]
		if !ok {
			return nil, newError(ErrFailedInit, fmt.Errorf("unknown mode %q", fc.Mode))
		}
		c.SetMode(mode)
	}

	var opts Options
	for _, name := range fc.Options {
		bit, ok := optionByName[name]
		if !ok {
			return nil, newError(ErrFailedInit, fmt.Errorf("unknown option %q", name))
		}
		opts |= bit
	}
	c.SetBehavior(opts)

	var level LogLevel
	for _, name := range fc.LogLevel {
		bit, ok := logLevelByName[name]
		if !ok {
			return nil, newError(ErrFailedInit, fmt.Errorf("unknown log level %q", name))
		}
		level |= bit
	}
	if level != 0 {
		c.SetLogLevel(level)
	}

	switch {
	case fc.P12File != "":
		if err := c.SetPKCS12(fc.P12File, fc.P12Password); err != nil {
			return nil, err
		}
	case fc.CertFile != "":
		if err := c.SetCertificate(fc.CertFile, fc.KeyFile, fc.KeyPassword); err != nil {
			return nil, err
		}
	default:
		return nil, newError(ErrCertificateNotSet, nil)
	}

	return c, nil
}
