package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/agentstation/crossmap/pkg/logging"
)

func TestFromContextFallsBackToDefault(t *testing.T) {
	if logging.FromContext(context.Background()) != logging.Default() {
		t.Error("expected default logger for bare context")
	}
	if logging.FromContext(nil) != logging.Default() { //nolint:staticcheck // nil context fallback is the behavior under test
		t.Error("expected default logger for nil context")
	}
}

func TestWithLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf)

	ctx := logging.WithLogger(context.Background(), &logger)
	got := logging.FromContext(ctx)

	got.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected log output to contain message, got %q", buf.String())
	}
}

func TestWithDatasetAddsField(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf)

	ctx := logging.WithLogger(context.Background(), &logger)
	ctx = logging.WithDataset(ctx, "master")

	logging.FromContext(ctx).Info().Msg("loaded")
	out := buf.String()
	if !strings.Contains(out, `"dataset":"master"`) {
		t.Errorf("expected dataset field in output, got %q", out)
	}
}
