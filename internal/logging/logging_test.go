package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewHonorsLevel(t *testing.T) {
	t.Parallel()

	logger := New("warn")
	ctx := context.Background()

	if !logger.Enabled(ctx, slog.LevelWarn) {
		t.Fatal("warn must be enabled at warn level")
	}
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatal("info must be filtered at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{"error", slog.LevelError},
		{" WARNING ", slog.LevelWarn},
		{"info", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"garbage", slog.LevelDebug},
		{"", slog.LevelDebug},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestComponentToleratesNilParent(t *testing.T) {
	t.Parallel()

	if Component(nil, "pipeline") == nil {
		t.Fatal("expected a usable logger")
	}
}
