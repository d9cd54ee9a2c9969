package logger

import "testing"

func TestLoggerBeforeInitIsNonNil(t *testing.T) {
	prev := global
	global = nil
	t.Cleanup(func() { global = prev })

	if Logger() == nil {
		t.Fatal("expected a no-op logger before Init, got nil")
	}
	// Sync must not panic without an installed logger.
	Sync()
}

func TestInitInstallsLogger(t *testing.T) {
	prev := global
	t.Cleanup(func() { global = prev })

	Init("debug")
	if global == nil {
		t.Fatal("Init did not install a logger")
	}
	if Logger() != global {
		t.Fatal("Logger did not return the installed logger")
	}
}

func TestInitFallsBackOnBadLevel(t *testing.T) {
	prev := global
	t.Cleanup(func() { global = prev })

	// Must not panic; the level falls back to warn.
	Init("not-a-level")
	if global == nil {
		t.Fatal("Init did not install a logger for a bad level")
	}
}
