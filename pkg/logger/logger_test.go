package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		l, err := New(level)
		if err != nil {
			t.Fatalf("level %q: unexpected error: %v", level, err)
		}
		_ = l.Sync()
	}

	if _, err := New("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	l := Must(New("warn"))
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug must be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn must be enabled at warn level")
	}
}

func TestNamed_NilBase(t *testing.T) {
	if Named(nil, "x") == nil {
		t.Fatal("expected a no-op logger")
	}
}
