package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func resetForTest(t *testing.T) {
	t.Helper()
	mu.Lock()
	base = nil
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		base = nil
		mu.Unlock()
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"loud":    zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestComponent_StampsServiceFields(t *testing.T) {
	resetForTest(t)
	var buf bytes.Buffer
	Init(Options{Level: "info", Output: &buf, Service: "dashboard-api", Env: "test"})

	l := Component("reactions")
	l.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON entry, got %q: %v", buf.String(), err)
	}
	for k, want := range map[string]string{"service": "dashboard-api", "env": "test", "component": "reactions", "message": "hello"} {
		if entry[k] != want {
			t.Errorf("%s = %v, want %q", k, entry[k], want)
		}
	}
}

func TestInit_FirstCallWins(t *testing.T) {
	resetForTest(t)
	var first, second bytes.Buffer
	Init(Options{Output: &first})
	l := Init(Options{Output: &second})
	l.Info().Msg("x")

	if first.Len() == 0 || second.Len() != 0 {
		t.Errorf("later Init must reuse the first logger")
	}
}

func TestComponent_BeforeInit(t *testing.T) {
	resetForTest(t)
	l := Component("x")
	l.Error().Msg("dropped")
}
