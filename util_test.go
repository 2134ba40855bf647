package main

import (
	"context"
	"testing"
	"time"
)

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		dur      time.Duration
		expected string
	}{
		{time.Second * 5, "5 seconds"},
		{time.Second * 65, "1 minute, 5 seconds"},
		{time.Second * 3665, "1 hour, 1 minute, 5 seconds"},
		{time.Second * 3600, "1 hour, 0 minutes, 0 seconds"},
		{time.Second * 60, "1 minute, 0 seconds"},
		{time.Second * 1, "1 second"},
	}
	for _, c := range cases {
		got := formatUptime(c.dur)
		if got != c.expected {
			t.Errorf("formatUptime(%v) = %q, want %q", c.dur, got, c.expected)
		}
	}
}

func TestPlural(t *testing.T) {
	if plural(1) != "" {
		t.Errorf("plural(1) = %q, want \"\"", plural(1))
	}
	if plural(2) != "s" {
		t.Errorf("plural(2) = %q, want \"s\"", plural(2))
	}
	if plural(0) != "s" {
		t.Errorf("plural(0) = %q, want \"s\"", plural(0))
	}
}

func TestRequestLog(t *testing.T) {
	if requestLog(context.Background()) != appLog {
		t.Error("expected the app logger for a context without a request id")
	}
	ctx := context.WithValue(context.Background(), requestIDKey, "req-1")
	if requestLog(ctx) == appLog {
		t.Error("expected a tagged logger for a context with a request id")
	}
}

func TestSetupLogger(t *testing.T) {
	prev := appLog
	t.Cleanup(func() { appLog = prev })

	for _, production := range []bool{true, false} {
		l, err := setupLogger(production)
		if err != nil {
			t.Fatalf("setupLogger(%v): %v", production, err)
		}
		if l != appLog {
			t.Errorf("setupLogger(%v) did not install the logger", production)
		}
	}
}
