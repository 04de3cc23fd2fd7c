package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t)

	l := NewColoredLogger("TEST", ColorCyan)
	l.SetLevel(WARN)

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("disk at %d%%", 91)
	l.Error("failed: %s", "boom")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected messages below WARN to be dropped, got %q", out)
	}
	for _, want := range []string{"[TEST]", "[WARN]", "disk at 91%", "[ERROR]", "failed: boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got %q", want, out)
		}
	}
}

func TestShowCaller(t *testing.T) {
	buf := captureOutput(t)

	l := NewColoredLogger("TEST", ColorCyan)
	l.SetLevel(DEBUG)
	l.SetShowCaller(true)
	l.Info("with caller")

	if !strings.Contains(buf.String(), "colored_logger_test.go:") {
		t.Errorf("Expected caller file in output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		" warn ":  WARN,
		"warning": WARN,
		"error":   ERROR,
		"fatal":   FATAL,
		"":        INFO,
		"verbose": INFO,
	}

	for name, want := range tests {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestInitLoggers(t *testing.T) {
	defer InitLoggers(INFO, false)

	InitLoggers(ERROR, true)
	for _, l := range []*ColoredLogger{ServerLogger, APILogger, AnalyticsLogger, DBLogger, FeedLogger} {
		if l.level != ERROR || !l.showCaller {
			t.Errorf("Expected %s to be reconfigured", l.context)
		}
	}

	component := CreateComponentLogger("Repo", ColorBlue)
	if component.level != ERROR || component.context != "COMPONENT:Repo" {
		t.Errorf("Expected component logger to inherit defaults, got %+v", component)
	}
}
